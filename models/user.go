package models

import "time"

// Roles determine who may mutate the catalog and decide on requests.
const (
	RoleBorrower  = "borrower"
	RoleAdmin     = "admin"
	RoleInventory = "inventory"
)

type User struct {
	ID    int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	// Optional; stored as a bcrypt hash, never serialized.
	Password string `gorm:"size:255" json:"-"`
	Role     string `gorm:"size:20;not null;default:'borrower'" json:"role"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "lend_users" }
