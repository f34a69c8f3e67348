package models

import "time"

// Request lifecycle: pending -> approved or rejected; approved -> completed.
// rejected and completed are terminal.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

type Request struct {
	RequestID int `gorm:"primaryKey;autoIncrement;column:request_id" json:"requestId"`
	UserID    int `gorm:"index;not null" json:"userId"`
	// Snapshot of the requester's name at creation time.
	Username    string `gorm:"size:255" json:"username"`
	EquipmentID int    `gorm:"index;not null" json:"equipmentId"`
	Quantity    int    `gorm:"not null" json:"quantity"`
	BorrowDate  string `gorm:"size:32" json:"borrowDate,omitempty"`
	Remarks     string `gorm:"size:500" json:"remarks,omitempty"`
	Status      string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Request) TableName() string { return RequestTable }
