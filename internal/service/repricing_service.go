package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go-repricer-ws/internal/ai"
	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/pricing"
	"go-repricer-ws/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrAINotConfigured = errors.New("AI repricer is not configured (missing Gemini API key)")

// RunResult aggregates one repricing batch. When the deadline fires
// mid-batch the counts cover the products processed so far and Aborted is
// set; partial progress is never thrown away.
type RunResult struct {
	Analyzed        int           `json:"analyzed"`
	Recommendations int           `json:"recommendations"`
	Applied         int           `json:"applied"`
	Failed          int           `json:"failed"`
	Aborted         bool          `json:"aborted,omitempty"`
	Details         []ApplyResult `json:"details,omitempty"`
}

// PriceUpdate is one entry of a manual batch price update.
type PriceUpdate struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	NewPrice  float64   `json:"new_price" validate:"required,gt=0"`
	Reason    string    `json:"reason"`
}

type RepricingService interface {
	RunRules(ctx context.Context, sellerID uuid.UUID) (*RunResult, error)
	RunAI(ctx context.Context, sellerID uuid.UUID) (*RunResult, error)
	UpdatePrices(ctx context.Context, sellerID uuid.UUID, updates []PriceUpdate) (*RunResult, error)
}

type repricingService struct {
	productRepo    repository.ProductRepository
	ruleRepo       repository.RuleRepository
	competitorRepo repository.CompetitorRepository
	applier        PriceApplier
	aiClient       *ai.Client
	log            *zap.Logger
}

func NewRepricingService(
	productRepo repository.ProductRepository,
	ruleRepo repository.RuleRepository,
	competitorRepo repository.CompetitorRepository,
	applier PriceApplier,
	aiClient *ai.Client,
	log *zap.Logger,
) RepricingService {
	return &repricingService{
		productRepo:    productRepo,
		ruleRepo:       ruleRepo,
		competitorRepo: competitorRepo,
		applier:        applier,
		aiClient:       aiClient,
		log:            log,
	}
}

// RunRules reprices every active product against the seller's active rules,
// one product at a time. A single product's failure never stops the batch.
func (s *repricingService) RunRules(ctx context.Context, sellerID uuid.UUID) (*RunResult, error) {
	products, err := s.productRepo.FindActiveBySeller(sellerID)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}

	rules, err := s.ruleRepo.FindActiveBySeller(sellerID)
	if err != nil {
		return nil, fmt.Errorf("fetching rules: %w", err)
	}

	competitorsByProduct, err := s.groupCompetitors(sellerID)
	if err != nil {
		return nil, fmt.Errorf("fetching competitors: %w", err)
	}

	s.log.Info("starting rule-based repricing run",
		zap.String("seller_id", sellerID.String()),
		zap.Int("products", len(products)),
		zap.Int("rules", len(rules)))

	result := &RunResult{}
	for i := range products {
		// Cooperative abort between product iterations.
		select {
		case <-ctx.Done():
			result.Aborted = true
			return result, nil
		default:
		}

		product := &products[i]
		result.Analyzed++

		decision, ok := pricing.Resolve(product, competitorsByProduct[product.ID], rules)
		if !ok {
			continue
		}

		reason := decision.Rule.Name
		if decision.Clamped {
			reason += " (clamped to bounds)"
		}

		applied := s.applier.Apply(ctx, product, decision.Price, reason)
		result.Details = append(result.Details, applied)
		if applied.Success {
			result.Applied++
		} else {
			result.Failed++
		}
	}

	s.log.Info("rule-based repricing run complete",
		zap.Int("analyzed", result.Analyzed),
		zap.Int("applied", result.Applied),
		zap.Int("failed", result.Failed))

	return result, nil
}

// RunAI asks the inference endpoint for recommendations and reconciles each
// against local bounds before applying. Malformed model output is treated as
// zero recommendations.
func (s *repricingService) RunAI(ctx context.Context, sellerID uuid.UUID) (*RunResult, error) {
	if s.aiClient == nil || !s.aiClient.Configured() {
		return nil, ErrAINotConfigured
	}

	products, err := s.productRepo.FindActiveBySeller(sellerID)
	if err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}

	result := &RunResult{Analyzed: len(products)}
	if len(products) == 0 {
		return result, nil
	}

	rules, err := s.ruleRepo.FindActiveBySeller(sellerID)
	if err != nil {
		return nil, fmt.Errorf("fetching rules: %w", err)
	}

	competitorsByProduct, err := s.groupCompetitors(sellerID)
	if err != nil {
		return nil, fmt.Errorf("fetching competitors: %w", err)
	}

	prompt, err := ai.BuildPrompt(buildAnalysis(products, competitorsByProduct), rules)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	recommendations, err := s.aiClient.RecommendPrices(ctx, prompt)
	if err != nil {
		return nil, err
	}
	result.Recommendations = len(recommendations)

	s.log.Info("AI recommended price changes",
		zap.String("seller_id", sellerID.String()),
		zap.Int("recommendations", len(recommendations)))

	productsByID := make(map[string]*model.Product, len(products))
	for i := range products {
		productsByID[products[i].ID.String()] = &products[i]
	}

	for _, rec := range recommendations {
		select {
		case <-ctx.Done():
			result.Aborted = true
			return result, nil
		default:
		}

		product, finalPrice, ok := reconcile(rec, productsByID)
		if !ok {
			continue
		}

		applied := s.applier.Apply(ctx, product, finalPrice, model.ReasonAIPrefix+rec.Reason)
		result.Details = append(result.Details, applied)
		if applied.Success {
			result.Applied++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

// reconcile merges an externally supplied recommendation with local
// constraints. It skips recommendations for unknown products, clamps into
// the product's bounds, and rejects changes inside the churn dead zone.
func reconcile(rec ai.Recommendation, productsByID map[string]*model.Product) (*model.Product, float64, bool) {
	if rec.ProductID == "" || rec.RecommendedPrice <= 0 {
		return nil, 0, false
	}

	product, ok := productsByID[rec.ProductID]
	if !ok {
		return nil, 0, false
	}

	res := pricing.Clamp(rec.RecommendedPrice, product, nil)
	if !res.Feasible {
		return nil, 0, false
	}

	if math.Abs(res.Price-product.CurrentPrice) < pricing.ChurnEpsilon {
		return nil, 0, false
	}

	return product, res.Price, true
}

// UpdatePrices applies a manual batch of price changes, one result per
// entry. Unknown products fail individually without stopping the batch.
func (s *repricingService) UpdatePrices(ctx context.Context, sellerID uuid.UUID, updates []PriceUpdate) (*RunResult, error) {
	result := &RunResult{}

	for _, update := range updates {
		select {
		case <-ctx.Done():
			result.Aborted = true
			return result, nil
		default:
		}

		result.Analyzed++

		product, err := s.productRepo.FindBySellerAndID(sellerID, update.ProductID)
		if err != nil {
			result.Failed++
			result.Details = append(result.Details, ApplyResult{
				ProductID: update.ProductID,
				Error:     "Product not found or access denied",
			})
			continue
		}

		reason := update.Reason
		if reason == "" {
			reason = model.ReasonManualUpdate
		}

		applied := s.applier.Apply(ctx, product, update.NewPrice, reason)
		result.Details = append(result.Details, applied)
		if applied.Success {
			result.Applied++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

func (s *repricingService) groupCompetitors(sellerID uuid.UUID) (map[uuid.UUID][]model.Competitor, error) {
	competitors, err := s.competitorRepo.FindBySeller(sellerID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]model.Competitor)
	for _, c := range competitors {
		grouped[c.ProductID] = append(grouped[c.ProductID], c)
	}
	return grouped, nil
}

func buildAnalysis(products []model.Product, competitorsByProduct map[uuid.UUID][]model.Competitor) []ai.ProductAnalysis {
	analysis := make([]ai.ProductAnalysis, 0, len(products))
	for _, p := range products {
		entry := ai.ProductAnalysis{
			ID:            p.ID.String(),
			SKU:           p.SKU,
			Title:         p.Title,
			CurrentPrice:  p.CurrentPrice,
			CostPrice:     p.CostPrice,
			MinPrice:      p.MinPrice,
			MaxPrice:      p.MaxPrice,
			BuyBoxStatus:  string(p.BuyBoxStatus),
			StockQuantity: p.StockQuantity,
		}
		for _, c := range competitorsByProduct[p.ID] {
			entry.Competitors = append(entry.Competitors, ai.CompetitorSnapshot{
				CompetitorPrice: c.CompetitorPrice,
				HasBuyBox:       c.HasBuyBox,
			})
			if entry.LowestCompetitorPrice == nil || c.CompetitorPrice < *entry.LowestCompetitorPrice {
				price := c.CompetitorPrice
				entry.LowestCompetitorPrice = &price
			}
		}
		analysis = append(analysis, entry)
	}
	return analysis
}
