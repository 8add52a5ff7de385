package handler

import (
	"go-repricer-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats returns headline counts for the seller's dashboard
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	stats, err := h.dashboardService.GetStats(sellerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(stats)
}

// GetDailyChanges returns the price-movement chart series
// GET /api/v1/dashboard/daily-changes?days=30
func (h *DashboardHandler) GetDailyChanges(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	days := c.QueryInt("days", 30)
	changes, err := h.dashboardService.GetDailyChanges(sellerID, days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(changes)
}

// GetRecentChanges returns the latest price changes across all products
// GET /api/v1/dashboard/recent-changes?limit=20
func (h *DashboardHandler) GetRecentChanges(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	limit := c.QueryInt("limit", 20)
	history, err := h.dashboardService.GetRecentChanges(sellerID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(history)
}
