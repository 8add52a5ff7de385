package service

import (
	"context"
	"testing"

	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/internal/takealot"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRepricingService(db *gorm.DB) RepricingService {
	client := takealot.NewClient(takealot.Config{}, zap.NewNop())
	applier := newApplier(db, client)
	return NewRepricingService(
		repository.NewProductRepo(db),
		repository.NewRuleRepo(db),
		repository.NewCompetitorRepo(db),
		applier,
		nil,
		zap.NewNop(),
	)
}

func seedCompetitor(t *testing.T, db *gorm.DB, sellerID, productID uuid.UUID, price float64, hasBuyBox bool) {
	t.Helper()
	require.NoError(t, db.Create(&model.Competitor{
		SellerID:        sellerID,
		ProductID:       productID,
		CompetitorName:  "Rival",
		CompetitorPrice: price,
		HasBuyBox:       hasBuyBox,
	}).Error)
}

func seedRule(t *testing.T, db *gorm.DB, rule *model.RepricingRule) {
	t.Helper()
	require.NoError(t, db.Create(rule).Error)
}

func TestRunRulesBeatsLowestCompetitor(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "SKU-RUN", 100, 5)
	require.NoError(t, db.Model(product).Updates(map[string]interface{}{
		"min_price": 50.0, "max_price": 200.0,
	}).Error)
	seedCompetitor(t, db, seller.ID, product.ID, 95, false)
	seedRule(t, db, &model.RepricingRule{
		SellerID:        seller.ID,
		Name:            "Undercut by 50c",
		RuleType:        model.RuleBeatLowest,
		PriceAdjustment: 0.50,
		AdjustmentType:  model.AdjustmentAbsolute,
		Priority:        1,
	})

	svc := newRepricingService(db)
	result, err := svc.RunRules(context.Background(), seller.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Analyzed)
	assert.Equal(t, 1, result.Applied)
	assert.Zero(t, result.Failed)
	assert.False(t, result.Aborted)

	var updated model.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.InDelta(t, 94.50, updated.CurrentPrice, 0.001)

	var history model.PriceHistory
	require.NoError(t, db.First(&history, "product_id = ?", product.ID).Error)
	assert.Equal(t, "Undercut by 50c", history.Reason)
}

func TestRunRulesClampAnnotatesReason(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "SKU-CLAMP", 100, 5)
	require.NoError(t, db.Model(product).Updates(map[string]interface{}{
		"min_price": 70.0, "max_price": 200.0,
	}).Error)
	seedCompetitor(t, db, seller.ID, product.ID, 60, false)
	seedRule(t, db, &model.RepricingRule{
		SellerID:        seller.ID,
		Name:            "Undercut",
		RuleType:        model.RuleBeatLowest,
		PriceAdjustment: 1,
		AdjustmentType:  model.AdjustmentAbsolute,
		Priority:        1,
	})

	result, err := newRepricingService(db).RunRules(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)

	var updated model.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, 70.0, updated.CurrentPrice)

	var history model.PriceHistory
	require.NoError(t, db.First(&history, "product_id = ?", product.ID).Error)
	assert.Contains(t, history.Reason, "clamped to bounds")
}

func TestRunRulesSkipsWithinDeadZone(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "SKU-DEAD", 94.505, 5)
	seedCompetitor(t, db, seller.ID, product.ID, 95, false)
	seedRule(t, db, &model.RepricingRule{
		SellerID:        seller.ID,
		Name:            "Undercut",
		RuleType:        model.RuleBeatLowest,
		PriceAdjustment: 0.50,
		AdjustmentType:  model.AdjustmentAbsolute,
		Priority:        1,
	})

	result, err := newRepricingService(db).RunRules(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Analyzed)
	assert.Zero(t, result.Applied)

	var historyCount int64
	require.NoError(t, db.Model(&model.PriceHistory{}).Count(&historyCount).Error)
	assert.Zero(t, historyCount)
}

func TestRunRulesStopsOnCancelledContext(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db)
	for _, sku := range []string{"SKU-A", "SKU-B", "SKU-C"} {
		seedProduct(t, db, seller.ID, sku, 100, 5)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newRepricingService(db).RunRules(ctx, seller.ID)
	require.NoError(t, err)
	assert.True(t, result.Aborted)
	assert.Zero(t, result.Analyzed)
}

func TestRunAIRequiresConfiguredClient(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db)

	_, err := newRepricingService(db).RunAI(context.Background(), seller.ID)
	assert.ErrorIs(t, err, ErrAINotConfigured)
}

func TestUpdatePricesEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db)
	other := &model.Seller{Email: "other@example.com", FullName: "Other", IsActive: true}
	require.NoError(t, other.SetPassword("secret123"))
	require.NoError(t, db.Create(other).Error)

	mine := seedProduct(t, db, seller.ID, "SKU-MINE", 100, 5)
	theirs := seedProduct(t, db, other.ID, "SKU-THEIRS", 100, 5)

	svc := newRepricingService(db)
	result, err := svc.UpdatePrices(context.Background(), seller.ID, []PriceUpdate{
		{ProductID: mine.ID, NewPrice: 90},
		{ProductID: theirs.ID, NewPrice: 90},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, result.Failed)

	var updatedMine, updatedTheirs model.Product
	require.NoError(t, db.First(&updatedMine, "id = ?", mine.ID).Error)
	require.NoError(t, db.First(&updatedTheirs, "id = ?", theirs.ID).Error)
	assert.Equal(t, 90.0, updatedMine.CurrentPrice)
	assert.Equal(t, 100.0, updatedTheirs.CurrentPrice)

	var history model.PriceHistory
	require.NoError(t, db.First(&history, "product_id = ?", mine.ID).Error)
	assert.Equal(t, model.ReasonManualUpdate, history.Reason)
}
