package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a sellable treatment. WholesaleCost is what the pharmacy
// charges the platform per unit; it is snapshotted onto line items at
// order time so later price edits never change a settled split.
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                        // primary key
	BrandID       uint           `gorm:"not null;index" json:"brand_id"`                              // owning brand
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`                            // unique identifier
	Name          string         `gorm:"not null" json:"name"`                                        // display name
	PriceAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`   // retail price per unit
	WholesaleCost Money          `gorm:"type:decimal(20,2);not null;default:0" json:"wholesale_cost"` // pharmacy cost per unit
	Tags          StringArray    `gorm:"type:json" json:"tags"`                                       // tag list
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`                         // whether the product is orderable
	SortOrder     int            `gorm:"default:0;index" json:"sort_order"`                           // sort weight
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                     // created time
	UpdatedAt     time.Time      `json:"updated_at"`                                                  // updated time
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                              // soft delete time

	Brand Brand `gorm:"foreignKey:BrandID" json:"brand,omitempty"` // brand association
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}
