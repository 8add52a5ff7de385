package model

import "github.com/google/uuid"

// Price change reason tags. Free text beyond these is allowed (rule names,
// "AI Repricer: <explanation>").
const (
	ReasonManualUpdate  = "Manual update"
	ReasonTakealotSync  = "Takealot sync"
	ReasonWebhookUpdate = "Takealot webhook update"
	ReasonAIPrefix      = "AI Repricer: "
)

// PriceHistory is an immutable, append-only record of a price change.
// Rows are never updated after insert.
type PriceHistory struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id" validate:"uuid_required"`
	Product   *Product  `json:"product,omitempty" validate:"-"`

	OldPrice float64 `gorm:"not null" json:"old_price"`
	NewPrice float64 `gorm:"not null" json:"new_price"`
	Reason   string  `gorm:"type:varchar(512)" json:"reason"`
}
