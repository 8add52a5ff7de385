package model

import "github.com/google/uuid"

// Competitor is a rival offer observed on the same listing as one of the
// seller's products. Many competitors may exist per product.
type Competitor struct {
	BaseModel
	SellerID  uuid.UUID `gorm:"type:uuid;index;not null" json:"seller_id" validate:"uuid_required"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id" validate:"uuid_required"`
	Product   *Product  `json:"product,omitempty" validate:"-"`

	CompetitorName  string  `gorm:"type:varchar(255)" json:"competitor_name"`
	CompetitorPrice float64 `gorm:"not null" json:"competitor_price" validate:"required,gt=0"`
	HasBuyBox       bool    `gorm:"default:false" json:"has_buy_box"`
}
