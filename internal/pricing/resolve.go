package pricing

import (
	"math"

	"go-repricer-ws/internal/model"
)

// Decision is the price the engine settled on and the rule that produced it.
type Decision struct {
	Price   float64
	Rule    *model.RepricingRule
	Clamped bool
}

// Resolve walks the rules in the order given (callers load them sorted by
// priority ascending, creation order breaking ties) and applies the first
// rule that produces a candidate. First match wins; later rules are never
// evaluated once one fires. The engine never invents a price without an
// applicable rule.
//
// Returns false when no rule fires, when the fired rule's clamp is
// infeasible, or when the final price lands inside the churn dead zone.
func Resolve(product *model.Product, competitors []model.Competitor, rules []model.RepricingRule) (Decision, bool) {
	for i := range rules {
		rule := &rules[i]
		if !rule.IsActive {
			continue
		}

		candidate, ok := Evaluate(*rule, product, competitors)
		if !ok {
			continue
		}

		res := Clamp(candidate, product, rule.MinMargin)
		if !res.Feasible {
			return Decision{}, false
		}
		if math.Abs(res.Price-product.CurrentPrice) < ChurnEpsilon {
			return Decision{}, false
		}
		return Decision{Price: res.Price, Rule: rule, Clamped: res.Clamped}, true
	}

	return Decision{}, false
}
