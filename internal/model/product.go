package model

import (
	"time"

	"github.com/google/uuid"
)

type BuyBoxStatus string

const (
	BuyBoxWon     BuyBoxStatus = "won"
	BuyBoxLost    BuyBoxStatus = "lost"
	BuyBoxUnknown BuyBoxStatus = "unknown"
)

// Product is one marketplace offer tracked for a seller. MinPrice/MaxPrice
// are hard repricing bounds; when both are set, min <= max must hold.
type Product struct {
	BaseModel
	SellerID uuid.UUID `gorm:"type:uuid;index;not null" json:"seller_id" validate:"uuid_required"`
	Seller   *Seller   `gorm:"foreignKey:SellerID" json:"seller,omitempty" validate:"-"`

	SKU      string `gorm:"type:varchar(100);index;not null" json:"sku" validate:"required"`
	Title    string `gorm:"type:varchar(255)" json:"title"`
	ImageURL string `gorm:"type:varchar(512)" json:"image_url"`

	CurrentPrice float64  `gorm:"not null;default:0" json:"current_price"`
	CostPrice    *float64 `json:"cost_price,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`

	StockQuantity        int          `gorm:"default:0" json:"stock_quantity"`
	LeadtimeStockDetails JSONMap      `gorm:"type:text" json:"leadtime_stock_details,omitempty"` // warehouse name -> quantity
	BuyBoxStatus         BuyBoxStatus `gorm:"type:varchar(10);default:'unknown'" json:"buy_box_status"`
	CompetitorCount      int          `gorm:"default:0" json:"competitor_count"`
	IsActive             bool         `gorm:"default:true" json:"is_active"`

	TakealotOfferID *string    `gorm:"type:varchar(50);index" json:"takealot_offer_id,omitempty"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
	LastRepricedAt  *time.Time `json:"last_repriced_at,omitempty"`

	Competitors []Competitor `json:"competitors,omitempty"`
}
