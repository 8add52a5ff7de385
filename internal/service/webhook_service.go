package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrMalformedPayload = errors.New("invalid JSON payload")
	ErrMissingEventType = errors.New("event_type is required")
	ErrMissingSellerID  = errors.New("user_id is required in webhook payload")
)

// WebhookResponse is the success-shaped reply for an accepted event. An
// unresolved target product is still a success: the event itself was valid
// and has been logged.
type WebhookResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	SKU      string `json:"sku,omitempty"`
	NewStock *int   `json:"new_stock,omitempty"`
	Updated  string `json:"updated,omitempty"`
}

type WebhookService interface {
	Process(ctx context.Context, raw []byte) (*WebhookResponse, error)
}

// flexString tolerates marketplace payloads that send identifiers as either
// JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(strings.TrimSpace(string(b)))
	return nil
}

func (f flexString) String() string { return string(f) }

type wireSale struct {
	OrderID      flexString `json:"order_id"`
	OrderItemID  flexString `json:"order_item_id"`
	OfferID      flexString `json:"offer_id"`
	SKU          string     `json:"sku"`
	Quantity     int        `json:"quantity"`
	SellingPrice float64    `json:"selling_price"`
	OrderDate    string     `json:"order_date"`
}

type wireOffer struct {
	OfferID      flexString `json:"offer_id"`
	SKU          string     `json:"sku"`
	Title        string     `json:"title"`
	SellingPrice *float64   `json:"selling_price"`
	ImageURL     string     `json:"image_url"`
}

// wirePayload is the superset of fields the marketplace sends. Which
// optional fields are present decides the event variant.
type wirePayload struct {
	EventType    string     `json:"event_type"`
	UserID       string     `json:"user_id"`
	OfferID      flexString `json:"offer_id"`
	SKU          string     `json:"sku"`
	Price        *float64   `json:"price"`
	Stock        *int       `json:"stock"`
	BuyBoxWinner *bool      `json:"buy_box_winner"`
	BuyBoxStatus *string    `json:"buy_box_status"`
	Title        string     `json:"title"`
	ImageURL     string     `json:"image_url"`

	OrderID     flexString `json:"order_id"`
	OrderItemID flexString `json:"order_item_id"`
	Quantity    *int       `json:"quantity"`
	Warehouse   string     `json:"warehouse"`

	Sale  *wireSale  `json:"sale"`
	Offer *wireOffer `json:"offer"`
}

type eventKind int

const (
	eventUpdate eventKind = iota // price/stock/buy-box update
	eventSale
	eventLeadtimeOrder
	eventOfferUpsert
)

// classify discriminates the variant by which optional fields are present,
// before any dispatch happens.
func classify(w *wirePayload) eventKind {
	switch {
	case w.Sale != nil:
		return eventSale
	case w.OrderItemID != "":
		return eventLeadtimeOrder
	case isOfferEventType(w.EventType):
		return eventOfferUpsert
	default:
		return eventUpdate
	}
}

func isOfferEventType(eventType string) bool {
	switch eventType {
	case "offer.created", "offer.updated", "offer.update":
		return true
	}
	return false
}

type webhookService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	eventRepo    repository.WebhookEventRepository
	saleRepo     repository.SaleRepository
	leadtimeRepo repository.LeadtimeOrderRepository
	historyRepo  repository.PriceHistoryRepository
	log          *zap.Logger
}

func NewWebhookService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	eventRepo repository.WebhookEventRepository,
	saleRepo repository.SaleRepository,
	leadtimeRepo repository.LeadtimeOrderRepository,
	historyRepo repository.PriceHistoryRepository,
	log *zap.Logger,
) WebhookService {
	return &webhookService{
		db:           db,
		productRepo:  productRepo,
		eventRepo:    eventRepo,
		saleRepo:     saleRepo,
		leadtimeRepo: leadtimeRepo,
		historyRepo:  historyRepo,
		log:          log,
	}
}

// Process validates, logs, and dispatches one marketplace event. Every
// valid event is stored before any further processing, including when its
// target product cannot be found.
func (s *webhookService) Process(ctx context.Context, raw []byte) (*WebhookResponse, error) {
	var payload wirePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrMalformedPayload
	}

	if payload.EventType == "" {
		return nil, ErrMissingEventType
	}
	sellerID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return nil, ErrMissingSellerID
	}

	// Log-first: the event is recorded even if everything after fails.
	var rawMap model.JSONMap
	_ = json.Unmarshal(raw, &rawMap)
	event := &model.WebhookEvent{
		SellerID:  sellerID,
		EventType: payload.EventType,
		Payload:   rawMap,
		Processed: false,
	}
	if err := s.eventRepo.Create(event); err != nil {
		s.log.Error("failed to store webhook event", zap.Error(err))
	}

	switch classify(&payload) {
	case eventSale:
		return s.processSale(sellerID, event.ID, &payload)
	case eventLeadtimeOrder:
		return s.processLeadtimeOrder(sellerID, event.ID, &payload, raw)
	case eventOfferUpsert:
		return s.processOfferUpsert(sellerID, event.ID, &payload)
	default:
		return s.processUpdate(sellerID, event.ID, &payload)
	}
}

// resolveProduct looks up the target product by external offer id first,
// then SKU, scoped to the owning seller.
func (s *webhookService) resolveProduct(sellerID uuid.UUID, offerID, sku string) *model.Product {
	if offerID != "" {
		if product, err := s.productRepo.FindByOfferID(sellerID, offerID); err == nil {
			return product
		}
	}
	if sku != "" {
		if product, err := s.productRepo.FindBySKU(sellerID, sku); err == nil {
			return product
		}
	}
	return nil
}

func (s *webhookService) processSale(sellerID, eventID uuid.UUID, payload *wirePayload) (*WebhookResponse, error) {
	sale := payload.Sale

	product := s.resolveProduct(sellerID, payload.OfferID.String(), payload.SKU)
	if product == nil {
		product = s.resolveProduct(sellerID, sale.OfferID.String(), sale.SKU)
	}
	if product == nil {
		s.log.Info("sale webhook for unknown product, event logged")
		return &WebhookResponse{Success: true, Message: "Product not found, sale logged"}, nil
	}

	quantity := sale.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	soldAt := time.Now()
	if t, err := time.Parse(time.RFC3339, sale.OrderDate); err == nil {
		soldAt = t
	}

	newStock := product.StockQuantity - quantity
	if newStock < 0 {
		newStock = 0
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.saleRepo.Create(tx, &model.Sale{
			SellerID:  sellerID,
			ProductID: product.ID,
			OrderID:   sale.OrderID.String(),
			Quantity:  quantity,
			SalePrice: sale.SellingPrice,
			SoldAt:    soldAt,
		}); err != nil {
			return err
		}
		return s.productRepo.UpdateStock(tx, product.ID, newStock)
	})
	if err != nil {
		return nil, err
	}

	if err := s.eventRepo.MarkProcessed(eventID); err != nil {
		s.log.Warn("failed to mark webhook event processed", zap.Error(err))
	}

	s.log.Info("processed sale",
		zap.String("sku", product.SKU),
		zap.Int("quantity", quantity),
		zap.Int("new_stock", newStock))

	return &WebhookResponse{Success: true, Message: "Sale processed", SKU: product.SKU, NewStock: &newStock}, nil
}

func (s *webhookService) processLeadtimeOrder(sellerID, eventID uuid.UUID, payload *wirePayload, raw []byte) (*WebhookResponse, error) {
	offerID := payload.OfferID.String()
	sku := payload.SKU
	if payload.Offer != nil {
		if offerID == "" {
			offerID = payload.Offer.OfferID.String()
		}
		if sku == "" {
			sku = payload.Offer.SKU
		}
	}

	product := s.resolveProduct(sellerID, offerID, sku)
	if product == nil {
		s.log.Info("leadtime order for unknown product, event logged")
		return &WebhookResponse{Success: true, Message: "Product not found, leadtime order logged"}, nil
	}

	quantity := 1
	if payload.Quantity != nil && *payload.Quantity > 0 {
		quantity = *payload.Quantity
	}

	var rawMap model.JSONMap
	_ = json.Unmarshal(raw, &rawMap)

	var newStock int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var offerIDPtr *string
		if offerID != "" {
			offerIDPtr = &offerID
		}
		if err := s.leadtimeRepo.Create(tx, &model.LeadtimeOrder{
			SellerID:    sellerID,
			ProductID:   &product.ID,
			OrderID:     payload.OrderID.String(),
			OrderItemID: payload.OrderItemID.String(),
			OfferID:     offerIDPtr,
			SKU:         product.SKU,
			Quantity:    quantity,
			Warehouse:   payload.Warehouse,
			Payload:     rawMap,
		}); err != nil {
			return err
		}

		// With warehouse-level detail the aggregate is recomputed as the
		// sum across warehouses; otherwise the aggregate is decremented
		// directly. Floored at zero either way.
		details := product.LeadtimeStockDetails
		if payload.Warehouse != "" && details != nil {
			prev := 0
			if v, ok := details[payload.Warehouse]; ok {
				if fv, ok := v.(float64); ok {
					prev = int(fv)
				}
			}
			updated := prev - quantity
			if updated < 0 {
				updated = 0
			}
			details[payload.Warehouse] = updated

			aggregate := 0
			for _, v := range details {
				switch n := v.(type) {
				case float64:
					aggregate += int(n)
				case int:
					aggregate += n
				}
			}
			newStock = aggregate
			return s.productRepo.UpdateFields(tx, product.ID, map[string]interface{}{
				"leadtime_stock_details": details,
				"stock_quantity":         aggregate,
				"last_synced_at":         time.Now(),
			})
		}

		newStock = product.StockQuantity - quantity
		if newStock < 0 {
			newStock = 0
		}
		return s.productRepo.UpdateStock(tx, product.ID, newStock)
	})
	if err != nil {
		return nil, err
	}

	if err := s.eventRepo.MarkProcessed(eventID); err != nil {
		s.log.Warn("failed to mark webhook event processed", zap.Error(err))
	}

	s.log.Info("leadtime order processed",
		zap.String("sku", product.SKU),
		zap.Int("quantity", quantity),
		zap.Int("new_stock", newStock))

	return &WebhookResponse{Success: true, Message: "Leadtime order applied", SKU: product.SKU, NewStock: &newStock}, nil
}

func (s *webhookService) processOfferUpsert(sellerID, eventID uuid.UUID, payload *wirePayload) (*WebhookResponse, error) {
	offer := payload.Offer
	offerID := payload.OfferID.String()
	sku := payload.SKU
	title := payload.Title
	price := payload.Price
	imageURL := payload.ImageURL
	if offer != nil {
		if offerID == "" {
			offerID = offer.OfferID.String()
		}
		if sku == "" {
			sku = offer.SKU
		}
		if title == "" {
			title = offer.Title
		}
		if price == nil {
			price = offer.SellingPrice
		}
		if imageURL == "" {
			imageURL = offer.ImageURL
		}
	}

	if sku == "" && offerID == "" {
		s.log.Info("offer webhook missing identifiers, skipping upsert")
		return &WebhookResponse{Success: true, Message: "Offer webhook handled"}, nil
	}

	// Upsert by SKU when present, falling back to offer id.
	var existing *model.Product
	if sku != "" {
		existing = s.resolveProduct(sellerID, "", sku)
	}
	if existing == nil && offerID != "" {
		existing = s.resolveProduct(sellerID, offerID, "")
	}

	now := time.Now()
	if existing != nil {
		fields := map[string]interface{}{"last_synced_at": now}
		if title != "" {
			fields["title"] = title
		}
		if price != nil {
			fields["current_price"] = *price
		}
		if imageURL != "" {
			fields["image_url"] = imageURL
		}
		if offerID != "" {
			fields["takealot_offer_id"] = offerID
		}
		if err := s.productRepo.UpdateFields(s.db, existing.ID, fields); err != nil {
			return nil, err
		}
		s.log.Info("updated product from offer webhook", zap.String("sku", existing.SKU))
	} else {
		product := &model.Product{
			SellerID:     sellerID,
			SKU:          sku,
			Title:        title,
			ImageURL:     imageURL,
			BuyBoxStatus: model.BuyBoxUnknown,
			IsActive:     true,
			LastSyncedAt: &now,
		}
		if price != nil {
			product.CurrentPrice = *price
		}
		if offerID != "" {
			product.TakealotOfferID = &offerID
		}
		if err := s.productRepo.Create(product); err != nil {
			return nil, err
		}
		s.log.Info("inserted new product from offer webhook", zap.String("sku", sku))
	}

	if err := s.eventRepo.MarkProcessed(eventID); err != nil {
		s.log.Warn("failed to mark webhook event processed", zap.Error(err))
	}

	return &WebhookResponse{Success: true, Message: "Offer webhook handled"}, nil
}

func (s *webhookService) processUpdate(sellerID, eventID uuid.UUID, payload *wirePayload) (*WebhookResponse, error) {
	product := s.resolveProduct(sellerID, payload.OfferID.String(), payload.SKU)
	if product == nil {
		s.log.Info("webhook for unknown product, event logged")
		return &WebhookResponse{Success: true, Message: "Product not found, event logged"}, nil
	}

	fields := map[string]interface{}{"last_synced_at": time.Now()}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Price changes get a history row before the update; stock and
		// buy-box status are written directly.
		if payload.Price != nil && *payload.Price != product.CurrentPrice {
			if err := s.historyRepo.Create(tx, &model.PriceHistory{
				ProductID: product.ID,
				OldPrice:  product.CurrentPrice,
				NewPrice:  *payload.Price,
				Reason:    model.ReasonWebhookUpdate,
			}); err != nil {
				return err
			}
			fields["current_price"] = *payload.Price
		}

		if payload.Stock != nil {
			fields["stock_quantity"] = *payload.Stock
		}

		if payload.BuyBoxWinner != nil {
			if *payload.BuyBoxWinner {
				fields["buy_box_status"] = model.BuyBoxWon
			} else {
				fields["buy_box_status"] = model.BuyBoxLost
			}
		} else if payload.BuyBoxStatus != nil {
			fields["buy_box_status"] = *payload.BuyBoxStatus
		}

		if len(fields) == 1 {
			return nil // nothing beyond the sync timestamp: skip the write
		}
		return s.productRepo.UpdateFields(tx, product.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	if err := s.eventRepo.MarkProcessed(eventID); err != nil {
		s.log.Warn("failed to mark webhook event processed", zap.Error(err))
	}

	return &WebhookResponse{Success: true, Updated: product.SKU}, nil
}
