package models

import "time"

// FeeSchedule is the single global fee configuration row. Exactly one
// row must exist; the engine refuses to price an order without it.
type FeeSchedule struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                                          // primary key
	AffiliatePercent    Money     `gorm:"type:decimal(6,2);not null;default:0" json:"affiliate_percent"` // affiliate commission (percent of order total)
	PlatformFeePercent  Money     `gorm:"type:decimal(6,2);not null;default:0" json:"platform_fee_percent"` // platform fee (percent of order total)
	ProcessorFeePercent Money     `gorm:"type:decimal(6,2);not null;default:0" json:"processor_fee_percent"` // processor fee (percent of order total)
	DoctorConsultFee    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"doctor_consult_fee"` // flat consult fee per order
	RefundDelayDays     int       `gorm:"not null;default:0" json:"refund_delay_days"`                   // refund processing delay in days
	CreatedAt           time.Time `gorm:"index" json:"created_at"`                                       // created time
	UpdatedAt           time.Time `json:"updated_at"`                                                    // updated time
}

// TableName sets the table name.
func (FeeSchedule) TableName() string {
	return "fee_schedules"
}
