package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-repricer-ws/internal/model"
)

func f(v float64) *float64 { return &v }

func product(current float64, min, max *float64) *model.Product {
	return &model.Product{CurrentPrice: current, MinPrice: min, MaxPrice: max}
}

func competitors(prices ...float64) []model.Competitor {
	out := make([]model.Competitor, 0, len(prices))
	for _, p := range prices {
		out = append(out, model.Competitor{CompetitorPrice: p})
	}
	return out
}

func TestClamp_WithinBounds(t *testing.T) {
	p := product(100, f(70), f(150))

	res := Clamp(94.5, p, nil)
	assert.True(t, res.Feasible)
	assert.False(t, res.Clamped)
	assert.Equal(t, 94.5, res.Price)
}

func TestClamp_RaisesToMin(t *testing.T) {
	p := product(100, f(70), f(150))

	res := Clamp(55, p, nil)
	assert.True(t, res.Clamped)
	assert.Equal(t, 70.0, res.Price)
}

func TestClamp_LowersToMax(t *testing.T) {
	p := product(100, f(70), f(150))

	res := Clamp(200, p, nil)
	assert.True(t, res.Clamped)
	assert.Equal(t, 150.0, res.Price)
}

func TestClamp_AlwaysInsideBounds(t *testing.T) {
	p := product(100, f(70), f(150))
	for _, candidate := range []float64{-10, 0, 69.99, 70, 100, 150, 150.01, 9999} {
		res := Clamp(candidate, p, nil)
		require.True(t, res.Feasible)
		assert.GreaterOrEqual(t, res.Price, 70.0)
		assert.LessOrEqual(t, res.Price, 150.0)
	}
}

func TestClamp_MarginFloorRaisesPrice(t *testing.T) {
	p := product(100, nil, nil)
	p.CostPrice = f(80)

	// 20% margin over cost 80 needs price >= 100
	res := Clamp(90, p, f(20))
	assert.True(t, res.Feasible)
	assert.True(t, res.Clamped)
	assert.InDelta(t, 100.0, res.Price, 0.0001)
}

func TestClamp_MarginFloorAboveMaxIsInfeasible(t *testing.T) {
	p := product(100, nil, f(95))
	p.CostPrice = f(80)

	res := Clamp(90, p, f(20))
	assert.False(t, res.Feasible)
}

func TestEvaluate_BeatLowestNoCompetitors(t *testing.T) {
	rule := model.RepricingRule{RuleType: model.RuleBeatLowest, PriceAdjustment: 0.5, AdjustmentType: model.AdjustmentAbsolute}

	_, ok := Evaluate(rule, product(100, nil, nil), nil)
	assert.False(t, ok)
}

func TestEvaluate_BeatLowestAbsolute(t *testing.T) {
	rule := model.RepricingRule{RuleType: model.RuleBeatLowest, PriceAdjustment: 0.5, AdjustmentType: model.AdjustmentAbsolute}

	candidate, ok := Evaluate(rule, product(100, nil, nil), competitors(95, 120))
	require.True(t, ok)
	assert.InDelta(t, 94.5, candidate, 0.0001)
}

func TestEvaluate_BeatLowestPercentage(t *testing.T) {
	// percentage applies to the reference (competitor) price, not the current price
	rule := model.RepricingRule{RuleType: model.RuleBeatLowest, PriceAdjustment: 10, AdjustmentType: model.AdjustmentPercentage}

	candidate, ok := Evaluate(rule, product(200, nil, nil), competitors(100))
	require.True(t, ok)
	assert.InDelta(t, 90.0, candidate, 0.0001)
}

func TestEvaluate_MatchLowest(t *testing.T) {
	rule := model.RepricingRule{RuleType: model.RuleMatchLowest}

	candidate, ok := Evaluate(rule, product(100, nil, nil), competitors(95, 92, 120))
	require.True(t, ok)
	assert.Equal(t, 92.0, candidate)
}

func TestEvaluate_MatchBuyBox(t *testing.T) {
	rule := model.RepricingRule{RuleType: model.RuleMatchBuyBox}
	comps := []model.Competitor{
		{CompetitorPrice: 95},
		{CompetitorPrice: 110, HasBuyBox: true},
	}

	candidate, ok := Evaluate(rule, product(100, nil, nil), comps)
	require.True(t, ok)
	assert.Equal(t, 110.0, candidate)

	// no buy-box holder means no change
	_, ok = Evaluate(rule, product(100, nil, nil), competitors(95, 110))
	assert.False(t, ok)
}

func TestEvaluate_BeatBuyBox(t *testing.T) {
	rule := model.RepricingRule{RuleType: model.RuleBeatBuyBox, PriceAdjustment: 1, AdjustmentType: model.AdjustmentAbsolute}
	comps := []model.Competitor{{CompetitorPrice: 110, HasBuyBox: true}}

	candidate, ok := Evaluate(rule, product(100, nil, nil), comps)
	require.True(t, ok)
	assert.Equal(t, 109.0, candidate)
}

func TestEvaluate_MaintainMargin(t *testing.T) {
	p := product(100, nil, nil)
	p.CostPrice = f(90)
	rule := model.RepricingRule{RuleType: model.RuleMaintainMargin, MinMargin: f(20)}

	// cost 90 at 20% margin needs price >= 112.5
	candidate, ok := Evaluate(rule, p, nil)
	require.True(t, ok)
	assert.InDelta(t, 112.5, candidate, 0.0001)

	// already above the floor: no change
	p.CurrentPrice = 120
	_, ok = Evaluate(rule, p, nil)
	assert.False(t, ok)
}

func TestEvaluate_StayCompetitive(t *testing.T) {
	rule := model.RepricingRule{RuleType: model.RuleStayCompetitive, PriceAdjustment: 5, AdjustmentType: model.AdjustmentAbsolute}

	// avg 100, band 5: current 103 is inside, no change
	_, ok := Evaluate(rule, product(103, nil, nil), competitors(90, 110))
	assert.False(t, ok)

	// current 120 is outside the band: pull back to the average
	candidate, ok := Evaluate(rule, product(120, nil, nil), competitors(90, 110))
	require.True(t, ok)
	assert.Equal(t, 100.0, candidate)
}

func TestResolve_FirstMatchWins(t *testing.T) {
	p := product(100, f(70), f(150))
	comps := []model.Competitor{
		{CompetitorPrice: 95},
		{CompetitorPrice: 110, HasBuyBox: true},
	}
	rules := []model.RepricingRule{
		{RuleType: model.RuleBeatLowest, PriceAdjustment: 0.5, AdjustmentType: model.AdjustmentAbsolute, Priority: 1, IsActive: true},
		{RuleType: model.RuleMatchBuyBox, Priority: 2, IsActive: true},
	}

	decision, ok := Resolve(p, comps, rules)
	require.True(t, ok)
	assert.InDelta(t, 94.5, decision.Price, 0.0001)
	assert.Equal(t, model.RuleBeatLowest, decision.Rule.RuleType)
}

func TestResolve_SkipsNonApplicableRules(t *testing.T) {
	p := product(100, f(70), f(150))
	// no buy-box holder, so the first rule cannot fire
	comps := competitors(95)
	rules := []model.RepricingRule{
		{RuleType: model.RuleMatchBuyBox, Priority: 1, IsActive: true},
		{RuleType: model.RuleMatchLowest, Priority: 2, IsActive: true},
	}

	decision, ok := Resolve(p, comps, rules)
	require.True(t, ok)
	assert.Equal(t, 95.0, decision.Price)
	assert.Equal(t, model.RuleMatchLowest, decision.Rule.RuleType)
}

func TestResolve_SkipsInactiveRules(t *testing.T) {
	p := product(100, nil, nil)
	rules := []model.RepricingRule{
		{RuleType: model.RuleMatchLowest, Priority: 1, IsActive: false},
	}

	_, ok := Resolve(p, competitors(95), rules)
	assert.False(t, ok)
}

func TestResolve_ClampsToMin(t *testing.T) {
	p := product(100, f(70), f(150))
	rules := []model.RepricingRule{
		{RuleType: model.RuleBeatLowest, PriceAdjustment: 40, AdjustmentType: model.AdjustmentAbsolute, Priority: 1, IsActive: true},
	}

	// candidate 95-40=55 is below min_price, clamp raises to 70
	decision, ok := Resolve(p, competitors(95), rules)
	require.True(t, ok)
	assert.Equal(t, 70.0, decision.Price)
	assert.True(t, decision.Clamped)
}

func TestResolve_DeadZoneIsNoChange(t *testing.T) {
	p := product(95, nil, nil)
	rules := []model.RepricingRule{
		{RuleType: model.RuleMatchLowest, Priority: 1, IsActive: true},
	}

	// matching the lowest lands on the current price: churn guard kicks in
	_, ok := Resolve(p, competitors(95.005), rules)
	assert.False(t, ok)
}

func TestResolve_NoRuleFires(t *testing.T) {
	p := product(100, nil, nil)

	_, ok := Resolve(p, nil, []model.RepricingRule{
		{RuleType: model.RuleBeatLowest, IsActive: true},
	})
	assert.False(t, ok)
}
