package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/sim"
)

// Remote talks to the lending service over its REST surface. A bearer token
// is attached to every call once a login succeeded; every call is attempted
// exactly once.
type Remote struct {
	base string
	http *http.Client

	mu    sync.Mutex
	token string
}

func NewRemote(endpoint string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Remote{
		base: strings.TrimRight(endpoint, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// SetToken installs a session token obtained out of band (e.g. restored from
// an earlier run).
func (r *Remote) SetToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

func (r *Remote) bearer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r *Remote) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", models.ErrStorage, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := r.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", models.ErrStorage, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var ae apiError
	_ = json.NewDecoder(resp.Body).Decode(&ae)
	msg := ae.Error
	if msg == "" {
		msg = ae.Message
	}
	if msg == "" {
		msg = resp.Status
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", models.ErrNotFound, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return fmt.Errorf("%w: %s", models.ErrValidation, msg)
	case http.StatusGone:
		return fmt.Errorf("%w: %s", models.ErrCodeExpired, msg)
	case http.StatusUnauthorized:
		if strings.Contains(msg, "code") {
			return fmt.Errorf("%w: %s", models.ErrCodeMismatch, msg)
		}
		return fmt.Errorf("unauthorized: %s", msg)
	default:
		return fmt.Errorf("server error: %s", msg)
	}
}

type sendOTPResp struct {
	TTL int `json:"ttl"`
}

func (r *Remote) SendOTP(ctx context.Context, userID int) (time.Duration, error) {
	var out sendOTPResp
	in := map[string]int{"userId": userID}
	if err := r.do(ctx, http.MethodPost, "/auth/otp/send", in, &out); err != nil {
		return 0, err
	}
	return time.Duration(out.TTL) * time.Second, nil
}

func (r *Remote) VerifyOTP(ctx context.Context, userID int, code string) (sim.Session, error) {
	var out sim.Session
	in := map[string]any{"userId": userID, "code": code}
	if err := r.do(ctx, http.MethodPost, "/auth/otp/verify", in, &out); err != nil {
		return sim.Session{}, err
	}
	r.SetToken(out.Token)
	return out, nil
}

func (r *Remote) Logout(ctx context.Context) error {
	err := r.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err == nil {
		r.SetToken("")
	}
	return err
}

func (r *Remote) GetUser(ctx context.Context, id int) (models.User, error) {
	var out models.User
	err := r.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &out)
	return out, err
}

func (r *Remote) UpdateUser(ctx context.Context, id int, patch sim.UserPatch) (models.User, error) {
	var out models.User
	err := r.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), patch, &out)
	return out, err
}

func (r *Remote) DeleteUser(ctx context.Context, id int) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

func (r *Remote) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	var out []models.Equipment
	err := r.do(ctx, http.MethodGet, "/equipments", nil, &out)
	return out, err
}

func (r *Remote) CreateEquipment(ctx context.Context, in sim.CreateEquipmentInput) (models.Equipment, error) {
	var out models.Equipment
	err := r.do(ctx, http.MethodPost, "/equipments", in, &out)
	return out, err
}

func (r *Remote) UpdateEquipment(ctx context.Context, id int, patch sim.EquipmentPatch) (models.Equipment, error) {
	var out models.Equipment
	err := r.do(ctx, http.MethodPut, fmt.Sprintf("/equipments/%d", id), patch, &out)
	return out, err
}

func (r *Remote) DeleteEquipment(ctx context.Context, id int) error {
	return r.do(ctx, http.MethodDelete, fmt.Sprintf("/equipments/%d", id), nil, nil)
}

func (r *Remote) CreateRequest(ctx context.Context, in sim.CreateRequestInput) (models.Request, error) {
	var out models.Request
	err := r.do(ctx, http.MethodPost, "/requests", in, &out)
	return out, err
}

func (r *Remote) MyRequests(ctx context.Context, userID int) ([]models.Request, error) {
	var out []models.Request
	q := url.Values{"userId": []string{fmt.Sprint(userID)}}
	err := r.do(ctx, http.MethodGet, "/requests/user?"+q.Encode(), nil, &out)
	return out, err
}

func (r *Remote) PendingRequests(ctx context.Context) ([]models.Request, error) {
	var out []models.Request
	err := r.do(ctx, http.MethodGet, "/requests/status/pending", nil, &out)
	return out, err
}

func (r *Remote) ApproveRequest(ctx context.Context, requestID int) (models.Request, error) {
	var out models.Request
	err := r.do(ctx, http.MethodPost, fmt.Sprintf("/requests/%d/approve", requestID), nil, &out)
	return out, err
}

func (r *Remote) RejectRequest(ctx context.Context, requestID int) (models.Request, error) {
	var out models.Request
	err := r.do(ctx, http.MethodPost, fmt.Sprintf("/requests/%d/reject", requestID), nil, &out)
	return out, err
}

func (r *Remote) ReturnRequest(ctx context.Context, requestID int) (models.Request, error) {
	var out models.Request
	err := r.do(ctx, http.MethodPost, fmt.Sprintf("/requests/%d/return", requestID), nil, &out)
	return out, err
}
