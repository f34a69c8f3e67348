package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-equipment-lending-system/models"
)

var (
	ErrInsufficientStock = errors.New("insufficient available stock")
	ErrBadTransition     = errors.New("invalid status transition")
	ErrNotOwner          = errors.New("request belongs to another user")
)

// Actor identifies who performed a lifecycle action, for the audit trail.
type Actor struct {
	ID   int
	Name string
}

// CreateRequest validates quantity against live stock under a row lock and
// persists the request as pending. Stock is untouched until approval.
func (r *Repo) CreateRequest(ctx context.Context, req *models.Request) error {
	if req.Quantity <= 0 {
		return ErrInsufficientStock
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq models.Equipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&eq, "id = ?", req.EquipmentID).Error; err != nil {
			return err
		}
		if req.Quantity > eq.AvailableStock {
			return ErrInsufficientStock
		}
		req.Status = models.StatusPending
		return tx.Create(req).Error
	})
}

func (r *Repo) FindRequestByID(ctx context.Context, id int) (*models.Request, error) {
	var req models.Request
	if err := r.DB.WithContext(ctx).First(&req, "request_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Repo) ListPendingRequests(ctx context.Context) ([]models.Request, error) {
	var reqs []models.Request
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("request_id ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *Repo) ListRequestsByUser(ctx context.Context, userID int) ([]models.Request, error) {
	var reqs []models.Request
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("request_id ASC").
		Find(&reqs).Error
	return reqs, err
}

// ApproveRequest moves pending -> approved and decrements available stock by
// the request quantity, floored at zero. Status, stock and audit row commit
// in one transaction; the version stamp guards against writers outside it.
func (r *Repo) ApproveRequest(ctx context.Context, id int, actor Actor) (*models.Request, error) {
	return r.decide(ctx, id, actor, "approve", models.StatusApproved, func(eq *models.Equipment, req *models.Request) {
		eq.AvailableStock -= req.Quantity
		if eq.AvailableStock < 0 {
			eq.AvailableStock = 0
		}
	})
}

// RejectRequest moves pending -> rejected with no stock effect.
func (r *Repo) RejectRequest(ctx context.Context, id int, actor Actor) (*models.Request, error) {
	return r.decide(ctx, id, actor, "reject", models.StatusRejected, nil)
}

func (r *Repo) decide(ctx context.Context, id int, actor Actor, action, to string, adjust func(*models.Equipment, *models.Request)) (*models.Request, error) {
	var req models.Request
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "request_id = ?", id).Error; err != nil {
			return err
		}
		if req.Status != models.StatusPending {
			return ErrBadTransition
		}
		if adjust != nil {
			if err := adjustStock(tx, &req, adjust); err != nil {
				return err
			}
		}
		req.Status = to
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, action, &req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ReturnRequest moves approved -> completed by the requesting user and gives
// stock back, clamped at totalStock. byUserID of zero skips the ownership
// check (admin-driven return).
func (r *Repo) ReturnRequest(ctx context.Context, id, byUserID int, actor Actor) (*models.Request, error) {
	var req models.Request
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "request_id = ?", id).Error; err != nil {
			return err
		}
		if req.Status != models.StatusApproved {
			return ErrBadTransition
		}
		if byUserID != 0 && req.UserID != byUserID {
			return ErrNotOwner
		}
		err := adjustStock(tx, &req, func(eq *models.Equipment, req *models.Request) {
			eq.AvailableStock += req.Quantity
			if eq.AvailableStock > eq.TotalStock {
				eq.AvailableStock = eq.TotalStock
			}
		})
		// Catalog deletes are unguarded in the simulation the clients may
		// have run against; a missing row does not block the return.
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		req.Status = models.StatusCompleted
		if err := tx.Save(&req).Error; err != nil {
			return err
		}
		return writeAudit(tx, actor, "return", &req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func adjustStock(tx *gorm.DB, req *models.Request, adjust func(*models.Equipment, *models.Request)) error {
	var eq models.Equipment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&eq, "id = ?", req.EquipmentID).Error; err != nil {
		return err
	}
	oldVersion := eq.Version
	adjust(&eq, req)
	res := tx.Model(&models.Equipment{}).
		Where("id = ? AND version = ?", eq.ID, oldVersion).
		Updates(map[string]any{
			"available_stock": eq.AvailableStock,
			"version":         oldVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func writeAudit(tx *gorm.DB, actor Actor, action string, req *models.Request) error {
	return tx.Create(&models.ActionLog{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		Action:      action,
		RequestID:   req.RequestID,
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
	}).Error
}
