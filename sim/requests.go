package sim

import (
	"fmt"
	"sort"
	"time"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/store"
)

// Requests manages the borrow-request lifecycle. Stock moves at approval
// time only: create never touches the equipment collection, approve
// decrements, return increments clamped at totalStock.
type Requests struct {
	kv  store.KV
	now func() time.Time
}

func NewRequests(kv store.KV) *Requests {
	return &Requests{kv: kv, now: time.Now}
}

type CreateRequestInput struct {
	UserID      int    `json:"userId"`
	Username    string `json:"username"`
	EquipmentID int    `json:"equipmentId"`
	Quantity    int    `json:"quantity"`
	BorrowDate  string `json:"borrowDate,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

// Create validates quantity against current available stock at the manager
// boundary, regardless of what the caller already checked.
func (r *Requests) Create(in CreateRequestInput) (models.Request, error) {
	if in.Quantity <= 0 {
		return models.Request{}, fmt.Errorf("%w: quantity must be a positive integer", models.ErrValidation)
	}
	var eqs []models.Equipment
	if _, err := readBlob(r.kv, store.KeyEquipments, &eqs); err != nil {
		return models.Request{}, err
	}
	var target *models.Equipment
	for i := range eqs {
		if eqs[i].ID == in.EquipmentID {
			target = &eqs[i]
			break
		}
	}
	if target == nil {
		return models.Request{}, fmt.Errorf("equipment %d: %w", in.EquipmentID, models.ErrNotFound)
	}
	if in.Quantity > target.AvailableStock {
		return models.Request{}, fmt.Errorf("%w: quantity %d exceeds available stock %d",
			models.ErrValidation, in.Quantity, target.AvailableStock)
	}

	reqs, err := loadRequests(r.kv)
	if err != nil {
		return models.Request{}, err
	}
	nextID := 1
	for _, rq := range reqs {
		if rq.RequestID >= nextID {
			nextID = rq.RequestID + 1
		}
	}
	now := r.now()
	rec := models.Request{
		RequestID:   nextID,
		UserID:      in.UserID,
		Username:    in.Username,
		EquipmentID: in.EquipmentID,
		Quantity:    in.Quantity,
		BorrowDate:  in.BorrowDate,
		Remarks:     in.Remarks,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	reqs = append(reqs, rec)
	if err := writeBlob(r.kv, store.KeyRequests, reqs); err != nil {
		return models.Request{}, err
	}
	return rec, nil
}

func (r *Requests) List() ([]models.Request, error) {
	reqs, err := loadRequests(r.kv)
	if err != nil {
		return nil, err
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].RequestID < reqs[j].RequestID })
	return reqs, nil
}

func (r *Requests) ListPending() ([]models.Request, error) {
	return r.filtered(func(rq models.Request) bool { return rq.Status == models.StatusPending })
}

func (r *Requests) ListMine(userID int) ([]models.Request, error) {
	return r.filtered(func(rq models.Request) bool { return rq.UserID == userID })
}

func (r *Requests) filtered(keep func(models.Request) bool) ([]models.Request, error) {
	reqs, err := r.List()
	if err != nil {
		return nil, err
	}
	out := make([]models.Request, 0, len(reqs))
	for _, rq := range reqs {
		if keep(rq) {
			out = append(out, rq)
		}
	}
	return out, nil
}

// Approve transitions pending -> approved and decrements the equipment's
// available stock by the request quantity, floored at zero. The stock write
// lands before the status write so a failure midway leaves the request
// pending rather than approved without a matching decrement.
func (r *Requests) Approve(id int) (models.Request, error) {
	return r.transition(id, models.StatusPending, models.StatusApproved, func(eq *models.Equipment, rq models.Request) {
		eq.AvailableStock -= rq.Quantity
		if eq.AvailableStock < 0 {
			eq.AvailableStock = 0
		}
	}, false)
}

// Reject transitions pending -> rejected with no stock effect.
func (r *Requests) Reject(id int) (models.Request, error) {
	return r.transition(id, models.StatusPending, models.StatusRejected, nil, true)
}

// Return transitions approved -> completed by the requesting user and gives
// the stock back, clamped at totalStock. A userID of zero skips the
// ownership check (admin-driven return).
func (r *Requests) Return(id, userID int) (models.Request, error) {
	reqs, err := loadRequests(r.kv)
	if err != nil {
		return models.Request{}, err
	}
	idx := indexOf(reqs, id)
	if idx < 0 {
		return models.Request{}, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	if userID != 0 && reqs[idx].UserID != userID {
		return models.Request{}, fmt.Errorf("%w: request %d belongs to another user", models.ErrValidation, id)
	}
	return r.apply(reqs, idx, models.StatusApproved, models.StatusCompleted, func(eq *models.Equipment, rq models.Request) {
		eq.AvailableStock += rq.Quantity
		if eq.AvailableStock > eq.TotalStock {
			eq.AvailableStock = eq.TotalStock
		}
	}, true)
}

func (r *Requests) transition(id int, from, to string, adjust func(*models.Equipment, models.Request), tolerateMissing bool) (models.Request, error) {
	reqs, err := loadRequests(r.kv)
	if err != nil {
		return models.Request{}, err
	}
	idx := indexOf(reqs, id)
	if idx < 0 {
		return models.Request{}, fmt.Errorf("request %d: %w", id, models.ErrNotFound)
	}
	return r.apply(reqs, idx, from, to, adjust, tolerateMissing)
}

func (r *Requests) apply(reqs []models.Request, idx int, from, to string, adjust func(*models.Equipment, models.Request), tolerateMissing bool) (models.Request, error) {
	rq := reqs[idx]
	if rq.Status != from {
		return models.Request{}, fmt.Errorf("%w: request %d is %s, not %s", models.ErrValidation, rq.RequestID, rq.Status, from)
	}

	if adjust != nil {
		var eqs []models.Equipment
		if _, err := readBlob(r.kv, store.KeyEquipments, &eqs); err != nil {
			return models.Request{}, err
		}
		found := false
		for i := range eqs {
			if eqs[i].ID == rq.EquipmentID {
				adjust(&eqs[i], rq)
				eqs[i].Version++
				eqs[i].UpdatedAt = r.now()
				found = true
				break
			}
		}
		if found {
			if err := writeBlob(r.kv, store.KeyEquipments, eqs); err != nil {
				return models.Request{}, err
			}
		} else if !tolerateMissing {
			// The catalog deletes unconditionally; an approval against a
			// vanished record is refused, a return still completes.
			return models.Request{}, fmt.Errorf("equipment %d: %w", rq.EquipmentID, models.ErrNotFound)
		}
	}

	rq.Status = to
	rq.UpdatedAt = r.now()
	reqs[idx] = rq
	if err := writeBlob(r.kv, store.KeyRequests, reqs); err != nil {
		return models.Request{}, err
	}
	return rq, nil
}

func indexOf(reqs []models.Request, id int) int {
	for i := range reqs {
		if reqs[i].RequestID == id {
			return i
		}
	}
	return -1
}
