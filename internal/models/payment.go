package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment records one charge attempt against the gateway. GoesTo tags
// which recipient class the settled funds belong to and
// DestinationAccount records the connected account the transfer was
// routed to.
type Payment struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                            // primary key
	OrderID            uint           `gorm:"index;not null" json:"order_id"`                  // owning order
	Amount             Money          `gorm:"type:decimal(20,2);not null" json:"amount"`       // charge amount
	Currency           string         `gorm:"not null" json:"currency"`                        // currency code
	Status             string         `gorm:"index;not null" json:"status"`                    // payment status
	GoesTo             string         `gorm:"index;not null;default:''" json:"payment_goes_to"`   // recipient class tag (brand/doctor/pharmacy)
	DestinationAccount string         `gorm:"index;default:''" json:"destination_account"`     // gateway connected account (acct_...)
	ProviderRef        string         `gorm:"index" json:"provider_ref"`                       // gateway charge id (ch_...)
	ClientSecret       string         `gorm:"type:text" json:"-"`                              // gateway client secret, never serialized
	ProviderPayload    JSON           `gorm:"type:json" json:"provider_payload"`               // raw gateway response
	FailureReason      string         `gorm:"type:text" json:"failure_reason,omitempty"`       // gateway failure detail
	PaidAt             *time.Time     `gorm:"index" json:"paid_at"`                            // settled time
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                         // created time
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                         // updated time
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                  // soft delete time
}

// TableName sets the table name.
func (Payment) TableName() string {
	return "payments"
}
