package client

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/sim"
	"school-equipment-lending-system/store"
)

func TestNew_PicksTransport(t *testing.T) {
	api, err := New(Config{RemoteEndpoint: "http://localhost:9"})
	if err != nil {
		t.Fatalf("New(remote) failed: %v", err)
	}
	if _, ok := api.(*Remote); !ok {
		t.Errorf("endpoint set: got %T, want *Remote", api)
	}

	api, err = New(Config{})
	if err != nil {
		t.Fatalf("New(local) failed: %v", err)
	}
	if _, ok := api.(*Local); !ok {
		t.Errorf("no endpoint: got %T, want *Local", api)
	}
}

func intp(n int) *int { return &n }

// codeFrom extracts the code from a persisted one-time-code record.
func codeFrom(t *testing.T, raw []byte) string {
	t.Helper()
	var rec struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decode otp record: %v", err)
	}
	return rec.Code
}

// login drives the OTP handshake against the shared store the way the CLI
// does: issue, read the record back, verify.
func login(t *testing.T, api API, kv store.KV, userID int) sim.Session {
	t.Helper()
	ctx := context.Background()
	if _, err := api.SendOTP(ctx, userID); err != nil {
		t.Fatalf("SendOTP() failed: %v", err)
	}
	raw, ok, err := kv.Get(store.OTPKey(userID))
	if err != nil || !ok {
		t.Fatalf("otp record missing: ok %v, err %v", ok, err)
	}
	sess, err := api.VerifyOTP(ctx, userID, codeFrom(t, raw))
	if err != nil {
		t.Fatalf("VerifyOTP() failed: %v", err)
	}
	return sess
}

func TestLocal_BorrowFlow(t *testing.T) {
	kv, err := store.OpenFile(filepath.Join(t.TempDir(), "lending.json"))
	if err != nil {
		t.Fatal(err)
	}
	api, err := New(Config{Store: kv})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	ctx := context.Background()

	sess := login(t, api, kv, 1)
	if sess.User.ID != 1 || sess.Token == "" {
		t.Fatalf("session = %+v", sess)
	}

	items, err := api.ListEquipment(ctx)
	if err != nil || len(items) == 0 {
		t.Fatalf("ListEquipment() = %d items, %v", len(items), err)
	}
	target := items[0]

	// Identity comes from the persisted session, not the input.
	req, err := api.CreateRequest(ctx, sim.CreateRequestInput{
		EquipmentID: target.ID,
		Quantity:    2,
	})
	if err != nil {
		t.Fatalf("CreateRequest() failed: %v", err)
	}
	if req.UserID != 1 || req.Username != sess.User.Name || req.Status != models.StatusPending {
		t.Errorf("request = %+v", req)
	}

	pending, err := api.PendingRequests(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("PendingRequests() = %d, %v", len(pending), err)
	}

	approved, err := api.ApproveRequest(ctx, req.RequestID)
	if err != nil || approved.Status != models.StatusApproved {
		t.Fatalf("ApproveRequest() = %+v, %v", approved, err)
	}
	after, _ := api.ListEquipment(ctx)
	if after[0].AvailableStock != target.AvailableStock-2 {
		t.Errorf("available after approve = %d, want %d", after[0].AvailableStock, target.AvailableStock-2)
	}

	done, err := api.ReturnRequest(ctx, req.RequestID)
	if err != nil || done.Status != models.StatusCompleted {
		t.Fatalf("ReturnRequest() = %+v, %v", done, err)
	}
	restored, _ := api.ListEquipment(ctx)
	if restored[0].AvailableStock != target.AvailableStock {
		t.Errorf("available after return = %d, want %d", restored[0].AvailableStock, target.AvailableStock)
	}

	mine, err := api.MyRequests(ctx, 1)
	if err != nil || len(mine) != 1 || mine[0].Status != models.StatusCompleted {
		t.Errorf("MyRequests() = %+v, %v", mine, err)
	}
}

func TestLocal_StatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lending.json")
	kv, err := store.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	api, err := New(Config{Store: kv})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	login(t, api, kv, 2)
	if _, err := api.CreateEquipment(ctx, sim.CreateEquipmentInput{
		Name: "Microphone", Category: "audio", TotalStock: intp(4),
	}); err != nil {
		t.Fatalf("CreateEquipment() failed: %v", err)
	}

	kv2, err := store.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	api2, err := New(Config{Store: kv2})
	if err != nil {
		t.Fatal(err)
	}
	items, err := api2.ListEquipment(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, it := range items {
		if it.Name == "Microphone" {
			found = true
		}
	}
	if !found {
		t.Error("created equipment lost across reopen")
	}
	if sess, ok, _ := api2.(*Local).Session(); !ok || sess.User.ID != 2 {
		t.Errorf("session lost across reopen: %+v ok=%v", sess, ok)
	}
}

func TestLocal_ReturnByStrangerRejected(t *testing.T) {
	kv := store.NewMemory()
	api, err := New(Config{Store: kv})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	login(t, api, kv, 1)
	req, err := api.CreateRequest(ctx, sim.CreateRequestInput{EquipmentID: 1, Quantity: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := api.ApproveRequest(ctx, req.RequestID); err != nil {
		t.Fatal(err)
	}

	login(t, api, kv, 2)
	if _, err := api.ReturnRequest(ctx, req.RequestID); !errors.Is(err, models.ErrValidation) {
		t.Errorf("stranger return err = %v, want ErrValidation", err)
	}
}
