package model

import "github.com/google/uuid"

type RuleType string

const (
	RuleBeatLowest      RuleType = "beat_lowest"
	RuleMatchBuyBox     RuleType = "match_buy_box"
	RuleBeatBuyBox      RuleType = "beat_buy_box"
	RuleMatchLowest     RuleType = "match_lowest"
	RuleMaintainMargin  RuleType = "maintain_margin"
	RuleStayCompetitive RuleType = "stay_competitive"
)

type AdjustmentType string

const (
	AdjustmentAbsolute   AdjustmentType = "absolute"
	AdjustmentPercentage AdjustmentType = "percentage"
)

// RepricingRule is a seller-owned pricing strategy. Rules are evaluated in
// ascending priority order against whichever product is being repriced;
// deactivating a rule stops it from firing on the next cycle.
type RepricingRule struct {
	BaseModel
	SellerID uuid.UUID `gorm:"type:uuid;index;not null" json:"seller_id" validate:"uuid_required"`

	Name            string         `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	RuleType        RuleType       `gorm:"type:varchar(30);not null" json:"rule_type" validate:"required,oneof=beat_lowest match_buy_box beat_buy_box match_lowest maintain_margin stay_competitive"`
	PriceAdjustment float64        `gorm:"default:0" json:"price_adjustment"`
	AdjustmentType  AdjustmentType `gorm:"type:varchar(20);default:'absolute'" json:"adjustment_type" validate:"omitempty,oneof=absolute percentage"`
	MinMargin       *float64       `json:"min_margin,omitempty"` // percentage floor
	Priority        int            `gorm:"default:100" json:"priority"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
}
