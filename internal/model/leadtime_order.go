package model

import "github.com/google/uuid"

// LeadtimeOrder is the audit row persisted for every leadtime order item
// notification, whether or not warehouse-level stock detail was tracked.
type LeadtimeOrder struct {
	BaseModel
	SellerID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"seller_id"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`

	OrderID     string  `gorm:"type:varchar(100)" json:"order_id"`
	OrderItemID string  `gorm:"type:varchar(100)" json:"order_item_id"`
	OfferID     *string `gorm:"type:varchar(50)" json:"offer_id,omitempty"`
	SKU         string  `gorm:"type:varchar(100)" json:"sku"`
	Quantity    int     `gorm:"not null;default:1" json:"quantity"`
	Warehouse   string  `gorm:"type:varchar(100)" json:"warehouse"`
	Payload     JSONMap `gorm:"type:text" json:"payload,omitempty"`
}
