package handler

import (
	"context"
	"errors"
	"time"

	"go-repricer-ws/internal/service"
	"go-repricer-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type RepricingHandler struct {
	repricingService service.RepricingService
	syncService      service.SyncService
	batchTimeout     time.Duration
}

func NewRepricingHandler(
	repricingService service.RepricingService,
	syncService service.SyncService,
	batchTimeout time.Duration,
) *RepricingHandler {
	if batchTimeout <= 0 {
		batchTimeout = 2 * time.Minute
	}
	return &RepricingHandler{
		repricingService: repricingService,
		syncService:      syncService,
		batchTimeout:     batchTimeout,
	}
}

// RunRules triggers a rule-based repricing batch for the seller
// POST /api/v1/repricing/run
func (h *RepricingHandler) RunRules(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.batchTimeout)
	defer cancel()

	result, err := h.repricingService.RunRules(ctx, sellerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// RunAI triggers an AI-recommended repricing batch for the seller
// POST /api/v1/repricing/ai-run
func (h *RepricingHandler) RunAI(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.batchTimeout)
	defer cancel()

	result, err := h.repricingService.RunAI(ctx, sellerID)
	if err != nil {
		if errors.Is(err, service.ErrAINotConfigured) {
			return c.Status(503).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// UpdatePricesRequest is a manual batch of price changes.
type UpdatePricesRequest struct {
	Updates []service.PriceUpdate `json:"updates" validate:"required,min=1,dive"`
}

// UpdatePrices applies a manual batch of price changes
// POST /api/v1/repricing/update-prices
func (h *RepricingHandler) UpdatePrices(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	var req UpdatePricesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.batchTimeout)
	defer cancel()

	result, err := h.repricingService.UpdatePrices(ctx, sellerID, req.Updates)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

// SyncProducts pulls the seller's offer catalogue from the marketplace
// POST /api/v1/products/sync
func (h *RepricingHandler) SyncProducts(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.batchTimeout)
	defer cancel()

	result, err := h.syncService.SyncProducts(ctx, sellerID)
	if err != nil {
		if errors.Is(err, service.ErrTakealotNotConfigured) {
			return c.Status(503).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}
