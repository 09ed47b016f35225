package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderLineItem snapshots the product price and wholesale cost at order
// time.
type OrderLineItem struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                        // primary key
	OrderID       uint           `gorm:"index;not null" json:"order_id"`                              // owning order
	ProductID     uint           `gorm:"index;not null" json:"product_id"`                            // product
	ProductName   string         `gorm:"not null" json:"product_name"`                                // product name snapshot
	Tags          StringArray    `gorm:"type:json" json:"tags"`                                       // tag snapshot
	UnitPrice     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`     // retail price snapshot
	WholesaleCost Money          `gorm:"type:decimal(20,2);not null;default:0" json:"wholesale_cost"` // pharmacy cost snapshot per unit
	Quantity      int            `gorm:"not null" json:"quantity"`                                    // quantity
	TotalPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`    // line subtotal
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                     // created time
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                     // updated time
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                              // soft delete time
}

// TableName sets the table name.
func (OrderLineItem) TableName() string {
	return "order_line_items"
}
