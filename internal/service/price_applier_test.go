package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/internal/takealot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newApplier(db *gorm.DB, client *takealot.Client) PriceApplier {
	return NewPriceApplier(
		db,
		repository.NewPriceHistoryRepo(db),
		repository.NewProductRepo(db),
		client,
		nil,
		zap.NewNop(),
	)
}

func TestApplyCommitsHistoryAndLocalPrice(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "SKU-APPLY", 100, 5)
	product.TakealotOfferID = nil

	result := newApplier(db, takealot.NewClient(takealot.Config{}, zap.NewNop())).
		Apply(context.Background(), product, 95, "Match lowest price")

	assert.True(t, result.Success)
	assert.Equal(t, 100.0, result.OldPrice)
	assert.Equal(t, 95.0, result.NewPrice)
	assert.False(t, result.RemotePush)
	assert.Empty(t, result.RemoteError)

	var updated model.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, 95.0, updated.CurrentPrice)
	assert.NotNil(t, updated.LastRepricedAt)

	var history model.PriceHistory
	require.NoError(t, db.First(&history, "product_id = ?", product.ID).Error)
	assert.Equal(t, 100.0, history.OldPrice)
	assert.Equal(t, 95.0, history.NewPrice)
	assert.Equal(t, "Match lowest price", history.Reason)

	// Caller-visible product state is mutated in step.
	assert.Equal(t, 95.0, product.CurrentPrice)
}

func TestApplyPushesToMarketplace(t *testing.T) {
	var gotPath string
	var gotBody map[string]float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	db := newTestDB(t)
	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "SKU-REMOTE", 200, 5)

	client := takealot.NewClient(takealot.Config{APIKey: "key", BaseURL: server.URL}, zap.NewNop())
	result := newApplier(db, client).Apply(context.Background(), product, 190, "Beat buy box")

	assert.True(t, result.Success)
	assert.True(t, result.RemotePush)
	assert.Equal(t, "/v2/offers/offer/12345", gotPath)
	assert.Equal(t, 190.0, gotBody["selling_price"])
}

func TestApplyLocalCommitSurvivesRemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	db := newTestDB(t)
	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "SKU-FAIL", 200, 5)

	client := takealot.NewClient(takealot.Config{APIKey: "key", BaseURL: server.URL}, zap.NewNop())
	result := newApplier(db, client).Apply(context.Background(), product, 190, "Beat buy box")

	// Local state is the source of truth; the failed push is reported but
	// nothing is rolled back.
	assert.True(t, result.Success)
	assert.False(t, result.RemotePush)
	assert.NotEmpty(t, result.RemoteError)

	var updated model.Product
	require.NoError(t, db.First(&updated, "id = ?", product.ID).Error)
	assert.Equal(t, 190.0, updated.CurrentPrice)

	var historyCount int64
	require.NoError(t, db.Model(&model.PriceHistory{}).
		Where("product_id = ?", product.ID).Count(&historyCount).Error)
	assert.Equal(t, int64(1), historyCount)
}

func TestApplyTwiceWritesTwoHistoryRows(t *testing.T) {
	db := newTestDB(t)
	seller := seedSeller(t, db)
	product := seedProduct(t, db, seller.ID, "SKU-TWICE", 100, 5)
	product.TakealotOfferID = nil

	applier := newApplier(db, takealot.NewClient(takealot.Config{}, zap.NewNop()))
	applier.Apply(context.Background(), product, 95, model.ReasonManualUpdate)
	applier.Apply(context.Background(), product, 90, model.ReasonManualUpdate)

	var history []model.PriceHistory
	require.NoError(t, db.Where("product_id = ?", product.ID).
		Order("created_at ASC").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, 100.0, history[0].OldPrice)
	assert.Equal(t, 95.0, history[0].NewPrice)
	assert.Equal(t, 95.0, history[1].OldPrice)
	assert.Equal(t, 90.0, history[1].NewPrice)
}
