package handler

import (
	"go-repricer-ws/internal/ai"
	"go-repricer-ws/internal/takealot"

	"github.com/gofiber/fiber/v2"
)

type IntegrationHandler struct {
	takealotClient *takealot.Client
	aiClient       *ai.Client
	webhookSecret  string
}

func NewIntegrationHandler(takealotClient *takealot.Client, aiClient *ai.Client, webhookSecret string) *IntegrationHandler {
	return &IntegrationHandler{
		takealotClient: takealotClient,
		aiClient:       aiClient,
		webhookSecret:  webhookSecret,
	}
}

// Status reports which external integrations are configured
// GET /api/v1/integration/status
func (h *IntegrationHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"takealot_configured":       h.takealotClient.Configured(),
		"ai_configured":             h.aiClient != nil && h.aiClient.Configured(),
		"webhook_secret_configured": h.webhookSecret != "",
	})
}

// SecretCheck reports whether webhook signature verification is active
// GET /api/v1/integration/secret-check
func (h *IntegrationHandler) SecretCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"configured": h.webhookSecret != ""})
}

// TakealotHealth probes the Seller API with the configured credentials
// GET /api/v1/integration/health
func (h *IntegrationHandler) TakealotHealth(c *fiber.Ctx) error {
	if !h.takealotClient.Configured() {
		return c.Status(503).JSON(fiber.Map{"error": "Takealot API key is not configured"})
	}

	status, err := h.takealotClient.Health(c.UserContext())
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(status)
}
