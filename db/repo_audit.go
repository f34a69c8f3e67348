package db

import (
	"context"

	"school-equipment-lending-system/models"
)

func (r *Repo) ListActionLog(ctx context.Context, limit int) ([]models.ActionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.ActionLog
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
