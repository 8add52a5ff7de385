// Package pricing holds the repricing decision engine: bounds clamping,
// per-rule candidate evaluation, and priority resolution. Everything here is
// pure computation; persistence and marketplace pushes live in the service
// layer.
package pricing

import (
	"math"

	"go-repricer-ws/internal/model"
)

// ChurnEpsilon is the currency-unit dead zone: a candidate within this
// distance of the current price is treated as no change to avoid churn and
// history spam.
const ChurnEpsilon = 0.01

// ClampResult is the outcome of enforcing a product's hard price constraints.
type ClampResult struct {
	Price    float64
	Clamped  bool // whether any bound changed the candidate (for audit reason annotation)
	Feasible bool // false when the margin floor exceeds max_price, so no price works
}

// Clamp forces candidate into the product's [min,max] range and, when a
// margin floor is supplied by the firing rule and the cost price is known,
// raises the price to the minimum satisfying the floor. The raised price is
// re-checked against max_price; if the floor itself exceeds max_price the
// result is infeasible.
func Clamp(candidate float64, product *model.Product, minMargin *float64) ClampResult {
	price := candidate
	clamped := false

	if product.MinPrice != nil && price < *product.MinPrice {
		price = *product.MinPrice
		clamped = true
	}
	if product.MaxPrice != nil && price > *product.MaxPrice {
		price = *product.MaxPrice
		clamped = true
	}

	if minMargin != nil && product.CostPrice != nil && *minMargin > 0 && *minMargin < 100 {
		floor := marginFloor(*product.CostPrice, *minMargin)
		if price < floor {
			if product.MaxPrice != nil && floor > *product.MaxPrice {
				return ClampResult{Price: price, Clamped: clamped, Feasible: false}
			}
			price = floor
			clamped = true
		}
	}

	return ClampResult{Price: price, Clamped: clamped, Feasible: true}
}

// marginFloor is the minimum price at which (price-cost)/price*100 >= margin.
func marginFloor(costPrice, marginPct float64) float64 {
	return costPrice / (1 - marginPct/100)
}

// Evaluate produces a candidate price for one rule against one product and
// its competitor snapshot. The second return is false when the rule does not
// apply (no competitors, no buy-box holder, margin already satisfied).
//
// Percentage adjustments are relative to the reference price (competitor or
// buy-box price), never the current price; maintain_margin works off the
// cost-derived floor instead.
func Evaluate(rule model.RepricingRule, product *model.Product, competitors []model.Competitor) (float64, bool) {
	switch rule.RuleType {
	case model.RuleBeatLowest:
		lowest, ok := lowestPrice(competitors)
		if !ok {
			return 0, false
		}
		return applyAdjustment(lowest, rule), true

	case model.RuleMatchLowest:
		lowest, ok := lowestPrice(competitors)
		if !ok {
			return 0, false
		}
		return lowest, true

	case model.RuleMatchBuyBox:
		holder, ok := buyBoxHolder(competitors)
		if !ok {
			return 0, false
		}
		return holder.CompetitorPrice, true

	case model.RuleBeatBuyBox:
		holder, ok := buyBoxHolder(competitors)
		if !ok {
			return 0, false
		}
		return applyAdjustment(holder.CompetitorPrice, rule), true

	case model.RuleMaintainMargin:
		if rule.MinMargin == nil || product.CostPrice == nil || *rule.MinMargin <= 0 || *rule.MinMargin >= 100 {
			return 0, false
		}
		floor := marginFloor(*product.CostPrice, *rule.MinMargin)
		if product.CurrentPrice >= floor-ChurnEpsilon {
			return 0, false // current price already satisfies the floor
		}
		return floor, true

	case model.RuleStayCompetitive:
		avg, ok := averagePrice(competitors)
		if !ok {
			return 0, false
		}
		band := rule.PriceAdjustment
		if rule.AdjustmentType == model.AdjustmentPercentage {
			band = avg * rule.PriceAdjustment / 100
		}
		if math.Abs(product.CurrentPrice-avg) <= band {
			return 0, false // already inside the competitive band
		}
		return avg, true
	}

	return 0, false
}

// applyAdjustment undercuts a reference price by the rule's adjustment.
func applyAdjustment(reference float64, rule model.RepricingRule) float64 {
	if rule.AdjustmentType == model.AdjustmentPercentage {
		return reference * (1 - rule.PriceAdjustment/100)
	}
	return reference - rule.PriceAdjustment
}

func lowestPrice(competitors []model.Competitor) (float64, bool) {
	if len(competitors) == 0 {
		return 0, false
	}
	lowest := competitors[0].CompetitorPrice
	for _, c := range competitors[1:] {
		if c.CompetitorPrice < lowest {
			lowest = c.CompetitorPrice
		}
	}
	return lowest, true
}

func buyBoxHolder(competitors []model.Competitor) (*model.Competitor, bool) {
	for i := range competitors {
		if competitors[i].HasBuyBox {
			return &competitors[i], true
		}
	}
	return nil, false
}

func averagePrice(competitors []model.Competitor) (float64, bool) {
	if len(competitors) == 0 {
		return 0, false
	}
	var sum float64
	for _, c := range competitors {
		sum += c.CompetitorPrice
	}
	return sum / float64(len(competitors)), true
}
