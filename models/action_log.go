package models

import "time"

// ActionLog records who decided what on a request, written in the same
// transaction as the decision itself.
type ActionLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     int       `gorm:"index" json:"actorId"`
	ActorName   string    `gorm:"size:255" json:"actorName"`
	Action      string    `gorm:"size:32;not null" json:"action"` // approve, reject, return
	RequestID   int       `gorm:"index" json:"requestId"`
	EquipmentID int       `json:"equipmentId"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (ActionLog) TableName() string { return "lend_action_log" }
