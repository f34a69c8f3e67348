package client

import (
	"context"
	"time"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/sim"
	"school-equipment-lending-system/store"
)

// Local executes every operation against the simulation packages over one
// shared key-value store. Contexts are accepted for interface symmetry; all
// work is synchronous and in-process.
type Local struct {
	catalog  *sim.Catalog
	requests *sim.Requests
	users    *sim.Users
	auth     *sim.Auth
}

// NewLocal wires the simulation over kv, seeding the demo catalog and user
// directory on first use.
func NewLocal(kv store.KV) (*Local, error) {
	users := sim.NewUsers(kv)
	l := &Local{
		catalog:  sim.NewCatalog(kv),
		requests: sim.NewRequests(kv),
		users:    users,
		auth:     sim.NewAuth(kv, users),
	}
	if err := l.catalog.Seed(); err != nil {
		return nil, err
	}
	if err := l.users.Seed(); err != nil {
		return nil, err
	}
	return l, nil
}

// Session exposes the persisted login, used by callers that need the current
// user (ownership checks, request payload snapshots).
func (l *Local) Session() (sim.Session, bool, error) { return l.auth.Current() }

func (l *Local) SendOTP(_ context.Context, userID int) (time.Duration, error) {
	return l.auth.IssueCode(userID)
}

func (l *Local) VerifyOTP(_ context.Context, userID int, code string) (sim.Session, error) {
	return l.auth.VerifyCode(userID, code)
}

func (l *Local) Logout(_ context.Context) error { return l.auth.Logout() }

func (l *Local) GetUser(_ context.Context, id int) (models.User, error) {
	return l.users.Get(id)
}

func (l *Local) UpdateUser(_ context.Context, id int, patch sim.UserPatch) (models.User, error) {
	return l.users.Update(id, patch)
}

func (l *Local) DeleteUser(_ context.Context, id int) error { return l.users.Delete(id) }

func (l *Local) ListEquipment(_ context.Context) ([]models.Equipment, error) {
	return l.catalog.List()
}

func (l *Local) CreateEquipment(_ context.Context, in sim.CreateEquipmentInput) (models.Equipment, error) {
	return l.catalog.Create(in)
}

func (l *Local) UpdateEquipment(_ context.Context, id int, patch sim.EquipmentPatch) (models.Equipment, error) {
	return l.catalog.Update(id, patch)
}

func (l *Local) DeleteEquipment(_ context.Context, id int) error { return l.catalog.Delete(id) }

func (l *Local) CreateRequest(_ context.Context, in sim.CreateRequestInput) (models.Request, error) {
	if in.UserID == 0 {
		if sess, ok, _ := l.auth.Current(); ok {
			in.UserID = sess.User.ID
			in.Username = sess.User.Name
		}
	}
	return l.requests.Create(in)
}

func (l *Local) MyRequests(_ context.Context, userID int) ([]models.Request, error) {
	return l.requests.ListMine(userID)
}

func (l *Local) PendingRequests(_ context.Context) ([]models.Request, error) {
	return l.requests.ListPending()
}

func (l *Local) ApproveRequest(_ context.Context, requestID int) (models.Request, error) {
	return l.requests.Approve(requestID)
}

func (l *Local) RejectRequest(_ context.Context, requestID int) (models.Request, error) {
	return l.requests.Reject(requestID)
}

func (l *Local) ReturnRequest(_ context.Context, requestID int) (models.Request, error) {
	uid := 0
	if sess, ok, _ := l.auth.Current(); ok {
		uid = sess.User.ID
	}
	return l.requests.Return(requestID, uid)
}
