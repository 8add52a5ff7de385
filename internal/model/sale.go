package model

import (
	"time"

	"github.com/google/uuid"
)

// Sale records a marketplace sale notification received via webhook.
type Sale struct {
	BaseModel
	SellerID  uuid.UUID `gorm:"type:uuid;index;not null" json:"seller_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`

	OrderID   string    `gorm:"type:varchar(100)" json:"order_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	SalePrice float64   `json:"sale_price"`
	SoldAt    time.Time `json:"sold_at"`
}
