package ai

import (
	"encoding/json"
	"fmt"
)

// ProductAnalysis is the per-product snapshot handed to the model.
type ProductAnalysis struct {
	ID                    string               `json:"id"`
	SKU                   string               `json:"sku"`
	Title                 string               `json:"title"`
	CurrentPrice          float64              `json:"current_price"`
	CostPrice             *float64             `json:"cost_price"`
	MinPrice              *float64             `json:"min_price"`
	MaxPrice              *float64             `json:"max_price"`
	BuyBoxStatus          string               `json:"buy_box_status"`
	StockQuantity         int                  `json:"stock_quantity"`
	Competitors           []CompetitorSnapshot `json:"competitors"`
	LowestCompetitorPrice *float64             `json:"lowest_competitor_price"`
}

type CompetitorSnapshot struct {
	CompetitorPrice float64 `json:"competitor_price"`
	HasBuyBox       bool    `json:"has_buy_box"`
}

const promptTemplate = `You are an AI pricing strategist for e-commerce on Takealot marketplace.

Analyze these products and provide optimal pricing recommendations:

PRODUCTS DATA:
%s

ACTIVE REPRICING RULES:
%s

INSTRUCTIONS:
1. For each product, recommend an optimal price considering:
   - Current price vs competitor prices
   - Cost price and minimum margin requirements
   - Buy box status (if lost, may need to lower price)
   - Stock levels (low stock might allow higher pricing)
   - Min/max price constraints if set

2. Apply the repricing rules in priority order:
   - beat_lowest: Beat the lowest competitor by the adjustment amount
   - match_lowest: Match the lowest competitor price
   - maintain_margin: Ensure minimum profit margin is maintained
   - stay_competitive: Stay within a competitive range

3. Return ONLY a valid JSON array with recommendations:
[
  {
    "product_id": "uuid",
    "current_price": number,
    "recommended_price": number,
    "reason": "explanation",
    "confidence": "high|medium|low"
  }
]

Only include products that need price changes. Return empty array if no changes needed.`

// BuildPrompt renders the analysis prompt. Rules are passed as-is so the
// model sees the seller's configured strategies verbatim.
func BuildPrompt(products []ProductAnalysis, rules interface{}) (string, error) {
	productsJSON, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return "", err
	}
	rulesJSON, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, productsJSON, rulesJSON), nil
}
