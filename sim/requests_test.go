package sim

import (
	"errors"
	"testing"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/store"
)

func newLedger(t *testing.T) (*Catalog, *Requests) {
	t.Helper()
	kv := store.NewMemory()
	return NewCatalog(kv), NewRequests(kv)
}

func mustCreate(t *testing.T, c *Catalog, name string, total, avail int) models.Equipment {
	t.Helper()
	eq, err := c.Create(CreateEquipmentInput{Name: name, TotalStock: &total, AvailableStock: &avail})
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	return eq
}

func TestRequestLifecycle_TripodScenario(t *testing.T) {
	c, r := newLedger(t)
	tripod := mustCreate(t, c, "Tripod", 10, 10)

	req, err := r.Create(CreateRequestInput{UserID: 1, Username: "Demo User", EquipmentID: tripod.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if req.Status != models.StatusPending {
		t.Fatalf("new request status = %q, want pending", req.Status)
	}

	approved, err := r.Approve(req.RequestID)
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Errorf("status after approve = %q", approved.Status)
	}
	if got, _ := c.Get(tripod.ID); got.AvailableStock != 7 {
		t.Errorf("availableStock after approve = %d, want 7", got.AvailableStock)
	}

	// An otherwise identical request rejected: stock untouched.
	other, _ := r.Create(CreateRequestInput{UserID: 1, Username: "Demo User", EquipmentID: tripod.ID, Quantity: 3})
	rejected, err := r.Reject(other.RequestID)
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Errorf("status after reject = %q", rejected.Status)
	}
	if got, _ := c.Get(tripod.ID); got.AvailableStock != 7 {
		t.Errorf("availableStock after reject = %d, want 7", got.AvailableStock)
	}

	returned, err := r.Return(approved.RequestID, 1)
	if err != nil {
		t.Fatalf("Return() failed: %v", err)
	}
	if returned.Status != models.StatusCompleted {
		t.Errorf("status after return = %q", returned.Status)
	}
	if got, _ := c.Get(tripod.ID); got.AvailableStock != 10 {
		t.Errorf("availableStock after return = %d, want 10", got.AvailableStock)
	}
}

func TestCreateRequest_ValidatesAtManagerBoundary(t *testing.T) {
	c, r := newLedger(t)
	eq := mustCreate(t, c, "Camera", 5, 2)

	cases := []struct {
		name string
		in   CreateRequestInput
		want error
	}{
		{"zero quantity", CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 0}, models.ErrValidation},
		{"negative quantity", CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: -2}, models.ErrValidation},
		{"exceeds stock", CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 3}, models.ErrValidation},
		{"unknown equipment", CreateRequestInput{UserID: 1, EquipmentID: 99, Quantity: 1}, models.ErrNotFound},
	}
	for _, tc := range cases {
		if _, err := r.Create(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}

	if reqs, _ := r.List(); len(reqs) != 0 {
		t.Errorf("rejected creations persisted %d requests", len(reqs))
	}
}

func TestApprove_FloorsStockAtZero(t *testing.T) {
	c, r := newLedger(t)
	eq := mustCreate(t, c, "Projector", 3, 3)

	// Both fit the stock at creation time; approving both over-commits.
	first, _ := r.Create(CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 3})
	second, _ := r.Create(CreateRequestInput{UserID: 2, EquipmentID: eq.ID, Quantity: 3})

	if _, err := r.Approve(first.RequestID); err != nil {
		t.Fatalf("first Approve() failed: %v", err)
	}
	if _, err := r.Approve(second.RequestID); err != nil {
		t.Fatalf("second Approve() failed: %v", err)
	}
	if got, _ := c.Get(eq.ID); got.AvailableStock != 0 {
		t.Errorf("availableStock = %d, want floor at 0", got.AvailableStock)
	}
}

func TestReturn_ClampsAtTotalStock(t *testing.T) {
	c, r := newLedger(t)
	eq := mustCreate(t, c, "Tripod", 10, 10)

	req, _ := r.Create(CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 3})
	if _, err := r.Approve(req.RequestID); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	// Stock raised behind the lifecycle's back; the return must not overshoot.
	if _, err := c.Update(eq.ID, EquipmentPatch{AvailableStock: intp(9)}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if _, err := r.Return(req.RequestID, 1); err != nil {
		t.Fatalf("Return() failed: %v", err)
	}
	if got, _ := c.Get(eq.ID); got.AvailableStock != 10 {
		t.Errorf("availableStock = %d, want clamp at totalStock 10", got.AvailableStock)
	}
}

func TestInvalidTransitionsRejected(t *testing.T) {
	c, r := newLedger(t)
	eq := mustCreate(t, c, "Camera", 5, 5)

	req, _ := r.Create(CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 1})
	if _, err := r.Return(req.RequestID, 1); !errors.Is(err, models.ErrValidation) {
		t.Errorf("return of pending: err = %v, want ErrValidation", err)
	}
	if _, err := r.Approve(req.RequestID); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if _, err := r.Approve(req.RequestID); !errors.Is(err, models.ErrValidation) {
		t.Errorf("second approve: err = %v, want ErrValidation", err)
	}
	if _, err := r.Reject(req.RequestID); !errors.Is(err, models.ErrValidation) {
		t.Errorf("reject of approved: err = %v, want ErrValidation", err)
	}
	if _, err := r.Return(req.RequestID, 1); err != nil {
		t.Fatalf("Return() failed: %v", err)
	}
	if _, err := r.Return(req.RequestID, 1); !errors.Is(err, models.ErrValidation) {
		t.Errorf("second return: err = %v, want ErrValidation", err)
	}
	if got, _ := c.Get(eq.ID); got.AvailableStock != 5 {
		t.Errorf("availableStock after full cycle = %d, want 5", got.AvailableStock)
	}

	if _, err := r.Approve(999); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("approve unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestReturn_ChecksOwnership(t *testing.T) {
	c, r := newLedger(t)
	eq := mustCreate(t, c, "Camera", 5, 5)

	req, _ := r.Create(CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 1})
	if _, err := r.Approve(req.RequestID); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if _, err := r.Return(req.RequestID, 2); !errors.Is(err, models.ErrValidation) {
		t.Errorf("return by stranger: err = %v, want ErrValidation", err)
	}
	// Zero skips the check (admin path).
	if _, err := r.Return(req.RequestID, 0); err != nil {
		t.Errorf("admin return failed: %v", err)
	}
}

func TestLifecycleToleratesDeletedEquipment(t *testing.T) {
	c, r := newLedger(t)
	eq := mustCreate(t, c, "Camera", 5, 5)

	doomed, _ := r.Create(CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 1})
	approved, _ := r.Create(CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 2})
	if _, err := r.Approve(approved.RequestID); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if err := c.Delete(eq.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	// Approving against a vanished record is refused...
	if _, err := r.Approve(doomed.RequestID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("approve after delete: err = %v, want ErrNotFound", err)
	}
	// ...but an already-approved request can still be returned.
	got, err := r.Return(approved.RequestID, 1)
	if err != nil {
		t.Fatalf("Return() after delete failed: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
}

func TestListFilters(t *testing.T) {
	c, r := newLedger(t)
	eq := mustCreate(t, c, "Camera", 10, 10)

	a, _ := r.Create(CreateRequestInput{UserID: 1, EquipmentID: eq.ID, Quantity: 1})
	b, _ := r.Create(CreateRequestInput{UserID: 2, EquipmentID: eq.ID, Quantity: 1})
	if _, err := r.Approve(a.RequestID); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	pending, _ := r.ListPending()
	if len(pending) != 1 || pending[0].RequestID != b.RequestID {
		t.Errorf("ListPending() = %+v", pending)
	}
	mine, _ := r.ListMine(1)
	if len(mine) != 1 || mine[0].RequestID != a.RequestID {
		t.Errorf("ListMine(1) = %+v", mine)
	}
}
