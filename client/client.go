// Package client is the transport shim: callers program against API and the
// constructor decides once, from configuration, whether operations go over
// HTTP to the lending service or run against the local simulation.
package client

import (
	"context"
	"time"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/sim"
	"school-equipment-lending-system/store"
)

// DefaultTimeout bounds every remote call; there are no retries.
const DefaultTimeout = 10 * time.Second

// API is the caller contract shared by both transports. Response shapes are
// identical on either path.
type API interface {
	SendOTP(ctx context.Context, userID int) (ttl time.Duration, err error)
	VerifyOTP(ctx context.Context, userID int, code string) (sim.Session, error)
	Logout(ctx context.Context) error

	GetUser(ctx context.Context, id int) (models.User, error)
	UpdateUser(ctx context.Context, id int, patch sim.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, id int) error

	ListEquipment(ctx context.Context) ([]models.Equipment, error)
	CreateEquipment(ctx context.Context, in sim.CreateEquipmentInput) (models.Equipment, error)
	UpdateEquipment(ctx context.Context, id int, patch sim.EquipmentPatch) (models.Equipment, error)
	DeleteEquipment(ctx context.Context, id int) error

	CreateRequest(ctx context.Context, in sim.CreateRequestInput) (models.Request, error)
	MyRequests(ctx context.Context, userID int) ([]models.Request, error)
	PendingRequests(ctx context.Context) ([]models.Request, error)
	ApproveRequest(ctx context.Context, requestID int) (models.Request, error)
	RejectRequest(ctx context.Context, requestID int) (models.Request, error)
	ReturnRequest(ctx context.Context, requestID int) (models.Request, error)
}

type Config struct {
	// RemoteEndpoint selects the HTTP transport when non-empty.
	RemoteEndpoint string
	// Timeout for remote calls; DefaultTimeout when zero.
	Timeout time.Duration
	// Store backs the local simulation when no endpoint is configured.
	Store store.KV
}

// New picks the transport once at startup.
func New(cfg Config) (API, error) {
	if cfg.RemoteEndpoint != "" {
		return NewRemote(cfg.RemoteEndpoint, cfg.Timeout), nil
	}
	kv := cfg.Store
	if kv == nil {
		kv = store.NewMemory()
	}
	return NewLocal(kv)
}
