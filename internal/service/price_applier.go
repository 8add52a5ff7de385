package service

import (
	"context"
	"time"

	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/internal/takealot"
	"go-repricer-ws/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApplyResult is the per-product outcome of one accepted price change.
// Success reflects the local commit; a failed marketplace push is surfaced
// in RemoteError without rolling anything back.
type ApplyResult struct {
	ProductID   uuid.UUID `json:"product_id"`
	SKU         string    `json:"sku"`
	Success     bool      `json:"success"`
	OldPrice    float64   `json:"old_price"`
	NewPrice    float64   `json:"new_price"`
	Reason      string    `json:"reason"`
	RemotePush  bool      `json:"remote_push"`
	RemoteError string    `json:"remote_error,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// PriceApplier commits an accepted price: history row, local price update,
// then a best-effort marketplace push. Applying the same pair twice writes
// two history rows; dedupe (the churn dead zone) belongs to the callers.
type PriceApplier interface {
	Apply(ctx context.Context, product *model.Product, finalPrice float64, reason string) ApplyResult
}

type priceApplier struct {
	db          *gorm.DB
	historyRepo repository.PriceHistoryRepository
	productRepo repository.ProductRepository
	takealot    *takealot.Client
	wsHub       *ws.Hub
	log         *zap.Logger
}

func NewPriceApplier(
	db *gorm.DB,
	historyRepo repository.PriceHistoryRepository,
	productRepo repository.ProductRepository,
	takealotClient *takealot.Client,
	hub *ws.Hub,
	log *zap.Logger,
) PriceApplier {
	return &priceApplier{
		db:          db,
		historyRepo: historyRepo,
		productRepo: productRepo,
		takealot:    takealotClient,
		wsHub:       hub,
		log:         log,
	}
}

func (a *priceApplier) Apply(ctx context.Context, product *model.Product, finalPrice float64, reason string) ApplyResult {
	result := ApplyResult{
		ProductID: product.ID,
		SKU:       product.SKU,
		OldPrice:  product.CurrentPrice,
		NewPrice:  finalPrice,
		Reason:    reason,
	}

	now := time.Now()

	// History and the local price move together; both commit before the
	// remote push is even attempted. Local state is the source of truth,
	// remote is best-effort.
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := a.historyRepo.Create(tx, &model.PriceHistory{
			ProductID: product.ID,
			OldPrice:  product.CurrentPrice,
			NewPrice:  finalPrice,
			Reason:    reason,
		}); err != nil {
			return err
		}
		return a.productRepo.UpdatePrice(tx, product.ID, finalPrice, now)
	})
	if err != nil {
		result.Error = err.Error()
		a.log.Error("price apply failed",
			zap.String("sku", product.SKU),
			zap.Error(err))
		return result
	}

	result.Success = true
	oldPrice := product.CurrentPrice
	product.CurrentPrice = finalPrice
	product.LastRepricedAt = &now

	// Best-effort remote propagation. Failure is reported, never rolled
	// back, and never aborts the rest of the batch.
	if product.TakealotOfferID != nil && a.takealot != nil && a.takealot.Configured() {
		if err := a.takealot.UpdateOfferPrice(ctx, *product.TakealotOfferID, finalPrice); err != nil {
			result.RemoteError = err.Error()
			a.log.Warn("takealot price push failed",
				zap.String("sku", product.SKU),
				zap.String("offer_id", *product.TakealotOfferID),
				zap.Error(err))
		} else {
			result.RemotePush = true
		}
	}

	if a.wsHub != nil {
		a.wsHub.BroadcastPriceChange(ws.PriceChangeEvent{
			ProductID: product.ID.String(),
			SKU:       product.SKU,
			OldPrice:  oldPrice,
			NewPrice:  finalPrice,
			Reason:    reason,
		})
	}

	return result
}
