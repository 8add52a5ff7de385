package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"go-repricer-ws/internal/ratelimit"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	webhookService service.WebhookService
	eventRepo      repository.WebhookEventRepository
	limiter        *ratelimit.Limiter
	secret         string
}

func NewWebhookHandler(
	webhookService service.WebhookService,
	eventRepo repository.WebhookEventRepository,
	limiter *ratelimit.Limiter,
	secret string,
) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		eventRepo:      eventRepo,
		limiter:        limiter,
		secret:         secret,
	}
}

// clientIP prefers the forwarded address since the service normally sits
// behind a reverse proxy. Only the first entry counts: later entries are
// proxy hops and would split one source across rate-limit keys.
func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	return c.IP()
}

// verifySignature checks the HMAC-SHA256 hex signature over the raw body.
// An unset secret leaves verification off, matching the marketplace
// onboarding flow where the secret is configured later.
func (h *WebhookHandler) verifySignature(c *fiber.Ctx, body []byte) bool {
	if h.secret == "" {
		return true
	}
	provided := c.Get("X-Takealot-Signature")
	if provided == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(provided), []byte(expected))
}

// HandleTakealot ingests one marketplace webhook event
// POST /api/v1/webhooks/takealot
func (h *WebhookHandler) HandleTakealot(c *fiber.Ctx) error {
	if !h.limiter.Allow(clientIP(c)) {
		return c.Status(429).JSON(fiber.Map{"error": "Too many requests"})
	}

	body := c.Body()

	if !h.verifySignature(c, body) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid webhook signature"})
	}

	resp, err := h.webhookService.Process(c.UserContext(), body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedPayload),
			errors.Is(err, service.ErrMissingEventType),
			errors.Is(err, service.ErrMissingSellerID):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
		}
	}
	return c.JSON(resp)
}

// GetEvents lists the seller's recently received webhook events
// GET /api/v1/webhooks/events
func (h *WebhookHandler) GetEvents(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	limit := c.QueryInt("limit", 50)
	events, err := h.eventRepo.FindBySeller(sellerID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(events)
}
