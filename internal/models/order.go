package models

import (
	"time"

	"gorm.io/gorm"
)

// Order carries the five-way split persisted at pricing time. The split
// amounts are snapshots; payout reconciliation reads them back instead
// of repricing, except the affiliate commission which is always
// recomputed against the current rate.
type Order struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                              // primary key
	OrderNo            string         `gorm:"uniqueIndex;not null" json:"order_no"`                              // order number
	UserID             uint           `gorm:"index;not null" json:"user_id"`                                     // purchasing patient
	ProgramID          *uint          `gorm:"index" json:"program_id,omitempty"`                                 // treatment program the order belongs to
	BrandID            uint           `gorm:"index;not null" json:"brand_id"`                                    // clinic/brand the order belongs to
	AffiliateID        *uint          `gorm:"index" json:"affiliate_id,omitempty"`                               // attributed affiliate, nil when none
	ReferralHost       string         `gorm:"type:varchar(255);default:''" json:"referral_host,omitempty"`       // hostname the attribution was derived from
	ApprovedByDoctorID *uint          `gorm:"index" json:"approved_by_doctor_id,omitempty"`                      // doctor who approved the script
	PhysicianID        *uint          `gorm:"index" json:"physician_id,omitempty"`                               // fallback assigned physician
	Status             string         `gorm:"index;not null" json:"status"`                                      // order status
	Currency           string         `gorm:"not null" json:"currency"`                                          // currency code
	TotalAmount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`         // amount charged to the patient
	PlatformFeePercent Money          `gorm:"type:decimal(6,2);not null;default:0" json:"platform_fee_percent"`  // platform percent used at pricing time
	PlatformFeeAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"platform_fee_amount"`  // platform share
	ProcessorFeeAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"processor_fee_amount"` // processor share
	DoctorFeeAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"doctor_fee_amount"`    // doctor consult share
	PharmacyCostAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"pharmacy_cost_amount"` // pharmacy wholesale share
	BrandAmount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"brand_amount"`         // brand remainder, floored at zero
	ShortfallAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shortfall_amount"`     // amount the deductions exceeded the total by
	ClientIP           string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                       // client IP at order time
	PaidAt             *time.Time     `gorm:"index" json:"paid_at"`                                              // paid time
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                           // created time
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                           // updated time
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                    // soft delete time

	Items    []OrderLineItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`    // line items
	Payments []Payment       `gorm:"foreignKey:OrderID" json:"payments,omitempty"` // payment attempts
	Brand    Brand           `gorm:"foreignKey:BrandID" json:"brand,omitempty"`    // brand association
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
