package models

import (
	"fmt"
	"time"
)

const EquipmentTable = "lend_equipments"
const RequestTable = "lend_requests"

// Equipment is a catalog entry with a stock ledger: TotalStock is the number
// of units owned, AvailableStock the number not currently lent out.
// Invariant: 0 <= AvailableStock <= TotalStock.
type Equipment struct {
	ID             int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string `gorm:"size:200;not null" json:"name"`
	Category       string `gorm:"size:100" json:"category"`
	Description    string `gorm:"type:text" json:"description"`
	TotalStock     int    `gorm:"not null;default:0" json:"totalStock"`
	AvailableStock int    `gorm:"not null;default:0" json:"availableStock"`

	// Version is bumped on every stock mutation; approvals racing on the
	// same row lose with a version conflict instead of a lost update.
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Equipment) TableName() string { return EquipmentTable }

// CheckStock validates the stock invariant.
func CheckStock(available, total int) error {
	if total < 0 || available < 0 {
		return fmt.Errorf("%w: stock counts must be non-negative", ErrValidation)
	}
	if available > total {
		return fmt.Errorf("%w: availableStock %d exceeds totalStock %d", ErrValidation, available, total)
	}
	return nil
}
