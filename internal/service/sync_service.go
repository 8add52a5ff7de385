package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/internal/takealot"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrTakealotNotConfigured = errors.New("takealot API key is not configured")

type SyncResult struct {
	Synced         int `json:"synced"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	TotalAvailable int `json:"total_available"`
}

// SyncService pulls the seller's offer catalogue from the marketplace and
// reconciles it into the local product table.
type SyncService interface {
	SyncProducts(ctx context.Context, sellerID uuid.UUID) (*SyncResult, error)
}

type syncService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	historyRepo repository.PriceHistoryRepository
	takealot    *takealot.Client
	log         *zap.Logger
}

func NewSyncService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	historyRepo repository.PriceHistoryRepository,
	takealotClient *takealot.Client,
	log *zap.Logger,
) SyncService {
	return &syncService{
		db:          db,
		productRepo: productRepo,
		historyRepo: historyRepo,
		takealot:    takealotClient,
		log:         log,
	}
}

func (s *syncService) SyncProducts(ctx context.Context, sellerID uuid.UUID) (*SyncResult, error) {
	if !s.takealot.Configured() {
		return nil, ErrTakealotNotConfigured
	}

	page, err := s.takealot.Offers(ctx, 1, 100)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{TotalAvailable: page.TotalResults}

	for i := range page.Offers {
		offer := &page.Offers[i]
		created, err := s.upsertOffer(sellerID, offer)
		if err != nil {
			s.log.Error("failed to sync offer",
				zap.String("sku", offer.SKU),
				zap.Error(err))
			continue
		}
		result.Synced++
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.log.Info("product sync complete",
		zap.Int("synced", result.Synced),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("total_available", result.TotalAvailable))

	return result, nil
}

// upsertOffer reconciles one marketplace offer into the product table.
// Matching is by SKU first, then by offer id, so a relisted SKU with a new
// offer id keeps its history.
func (s *syncService) upsertOffer(sellerID uuid.UUID, offer *takealot.Offer) (created bool, err error) {
	offerID := strconv.FormatInt(offer.OfferID, 10)
	now := time.Now()
	stock := offer.TotalStock()
	leadtimeDetails := leadtimeByWarehouse(offer.LeadtimeStock)

	existing, findErr := s.productRepo.FindBySKUOrOfferID(sellerID, offer.SKU, offerID)
	if findErr != nil {
		product := &model.Product{
			SellerID:        sellerID,
			SKU:             offer.SKU,
			Title:           offer.Title,
			ImageURL:        offer.ImageURL,
			CurrentPrice:    offer.SellingPrice,
			CostPrice:       offer.CostPrice,
			StockQuantity:   stock,
			BuyBoxStatus:    buyBoxStatus(offer),
			IsActive:        offer.Status == "Buyable",
			TakealotOfferID: &offerID,
			LastSyncedAt:    &now,
		}
		if leadtimeDetails != nil {
			product.LeadtimeStockDetails = leadtimeDetails
		}
		if err := s.productRepo.Create(product); err != nil {
			return false, err
		}
		return true, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if offer.SellingPrice != existing.CurrentPrice {
			if err := s.historyRepo.Create(tx, &model.PriceHistory{
				ProductID: existing.ID,
				OldPrice:  existing.CurrentPrice,
				NewPrice:  offer.SellingPrice,
				Reason:    model.ReasonTakealotSync,
			}); err != nil {
				return err
			}
		}

		fields := map[string]interface{}{
			"title":             offer.Title,
			"current_price":     offer.SellingPrice,
			"stock_quantity":    stock,
			"buy_box_status":    buyBoxStatus(offer),
			"takealot_offer_id": offerID,
			"last_synced_at":    now,
		}
		if offer.ImageURL != "" {
			fields["image_url"] = offer.ImageURL
		}
		if offer.CostPrice != nil && existing.CostPrice == nil {
			fields["cost_price"] = *offer.CostPrice
		}
		if leadtimeDetails != nil {
			fields["leadtime_stock_details"] = leadtimeDetails
		}
		return s.productRepo.UpdateFields(tx, existing.ID, fields)
	})
	return false, err
}

// buyBoxStatus maps the offer flags onto the local tri-state. A buyable
// offer without the winner flag is unknown rather than lost, since the
// offers listing does not carry competitor data.
func buyBoxStatus(offer *takealot.Offer) model.BuyBoxStatus {
	if offer.BuyBoxWinner {
		return model.BuyBoxWon
	}
	if offer.Status == "Buyable" {
		return model.BuyBoxUnknown
	}
	return model.BuyBoxLost
}

func leadtimeByWarehouse(stocks []takealot.LeadtimeStock) model.JSONMap {
	if len(stocks) == 0 {
		return nil
	}
	details := model.JSONMap{}
	for _, ls := range stocks {
		name := ls.MerchantWarehouse.Name
		if name == "" {
			name = strconv.Itoa(ls.MerchantWarehouse.WarehouseID)
		}
		details[name] = ls.QuantityAvailable
	}
	return details
}
