package models

import (
	"time"

	"gorm.io/gorm"
)

// User covers every party the engine attributes money to: patients,
// affiliates, doctors and brand staff. Roles live in the authz layer.
type User struct {
	ID          uint           `gorm:"primarykey" json:"id"`              // primary key
	Email       string         `gorm:"uniqueIndex;not null" json:"email"` // email
	DisplayName string         `gorm:"default:''" json:"display_name"`    // display name
	Website     string         `gorm:"index;default:''" json:"website"`   // affiliate storefront slug (host label)
	BrandID     *uint          `gorm:"index" json:"brand_id,omitempty"`   // owning brand for staff accounts
	Status      string         `gorm:"default:'active'" json:"status"`    // account status
	LastLoginAt *time.Time     `json:"last_login_at"`                     // last login time
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`           // created time
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`           // updated time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                    // soft delete time
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}
