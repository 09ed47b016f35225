package models

import (
	"time"

	"gorm.io/gorm"
)

// Brand is a clinic/brand tenant. ConnectedAccountID is the gateway
// connected account that receives the brand remainder on each charge.
type Brand struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                          // primary key
	Slug               string         `gorm:"uniqueIndex;not null" json:"slug"`              // unique identifier
	Name               string         `gorm:"not null" json:"name"`                          // display name
	ConnectedAccountID string         `gorm:"index;default:''" json:"connected_account_id"`  // gateway connected account (acct_...)
	TierID             *uint          `gorm:"index" json:"tier_id,omitempty"`                // fee tier override
	IsActive           bool           `gorm:"default:true;index" json:"is_active"`           // whether the brand can take orders
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                       // created time
	UpdatedAt          time.Time      `json:"updated_at"`                                    // updated time
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                // soft delete time

	Tier *BrandTier `gorm:"foreignKey:TierID" json:"tier,omitempty"` // tier association
}

// TableName sets the table name.
func (Brand) TableName() string {
	return "brands"
}

// BrandTier overrides the global platform fee percentage for the brands
// assigned to it. A nil PlatformFeePercent falls through to the global row.
type BrandTier struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                             // primary key
	Name               string         `gorm:"uniqueIndex;not null" json:"name"`                 // tier name
	PlatformFeePercent *Money         `gorm:"type:decimal(6,2)" json:"platform_fee_percent"`    // platform fee override (percent)
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                          // created time
	UpdatedAt          time.Time      `json:"updated_at"`                                       // updated time
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                   // soft delete time
}

// TableName sets the table name.
func (BrandTier) TableName() string {
	return "brand_tiers"
}
