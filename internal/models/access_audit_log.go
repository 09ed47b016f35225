package models

import "time"

// AccessAuditLog records reads and writes against the payout ledgers
// and the fee schedule, keyed by actor and request.
type AccessAuditLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	ActorUserID  uint      `gorm:"index;not null" json:"actor_user_id"`
	ActorEmail   string    `gorm:"type:varchar(255);index;not null;default:''" json:"actor_email"`
	Action       string    `gorm:"type:varchar(100);index;not null" json:"action"`
	ResourceType string    `gorm:"type:varchar(100);index;not null" json:"resource_type"`
	ResourceID   string    `gorm:"type:varchar(100);index;not null;default:''" json:"resource_id"`
	RequestID    string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON   JSON      `gorm:"type:json" json:"detail"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (AccessAuditLog) TableName() string {
	return "access_audit_logs"
}
