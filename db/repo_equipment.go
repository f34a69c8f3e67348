package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-equipment-lending-system/models"
)

var (
	// ErrHasOpenRequests refuses catalog deletes that would strand pending
	// or approved requests.
	ErrHasOpenRequests = errors.New("equipment has open requests")
	// ErrVersionConflict signals a lost race on an equipment row.
	ErrVersionConflict = errors.New("equipment modified concurrently")
)

func (r *Repo) CreateEquipment(ctx context.Context, eq *models.Equipment) error {
	if eq.Version == 0 {
		eq.Version = 1
	}
	if err := models.CheckStock(eq.AvailableStock, eq.TotalStock); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(eq).Error
}

func (r *Repo) FindEquipmentByID(ctx context.Context, id int) (*models.Equipment, error) {
	var eq models.Equipment
	if err := r.DB.WithContext(ctx).First(&eq, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *Repo) ListEquipments(ctx context.Context) ([]models.Equipment, error) {
	var eqs []models.Equipment
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&eqs).Error
	return eqs, err
}

// UpdateEquipment merges the given columns under a row lock, re-checks the
// stock invariant on the merged row and bumps the version stamp.
func (r *Repo) UpdateEquipment(ctx context.Context, id int, updates map[string]any) (*models.Equipment, error) {
	var eq models.Equipment
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&eq, "id = ?", id).Error; err != nil {
			return err
		}
		if v, ok := intField(updates, "total_stock"); ok {
			eq.TotalStock = v
		}
		if v, ok := intField(updates, "available_stock"); ok {
			eq.AvailableStock = v
		}
		if err := models.CheckStock(eq.AvailableStock, eq.TotalStock); err != nil {
			return err
		}
		updates["version"] = eq.Version + 1
		if err := tx.Model(&models.Equipment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&eq, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

// DeleteEquipment removes the record unless requests still reference it in a
// non-terminal state.
func (r *Repo) DeleteEquipment(ctx context.Context, id int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq models.Equipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&eq, "id = ?", id).Error; err != nil {
			return err
		}
		var open int64
		if err := tx.Model(&models.Request{}).
			Where("equipment_id = ? AND status IN ?", id,
				[]string{models.StatusPending, models.StatusApproved}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrHasOpenRequests
		}
		return tx.Delete(&models.Equipment{}, "id = ?", id).Error
	})
}

func intField(m map[string]any, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}
