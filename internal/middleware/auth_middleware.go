package middleware

import (
	"strings"

	"go-repricer-ws/internal/repository"
	"go-repricer-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth is middleware that validates the JWT and sets seller info in context
func RequireAuth(sellerRepo repository.SellerRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		seller, err := sellerRepo.FindByID(claims.SellerID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Seller not found"})
		}
		if !seller.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "Seller account is deactivated"})
		}

		// Set seller info in context for downstream handlers
		c.Locals("seller_id", claims.SellerID.String())
		c.Locals("seller_email", claims.Email)
		c.Locals("seller_name", claims.Name)

		return c.Next()
	}
}

// RequireAPIKey gates automation endpoints (cron, n8n) behind a shared key.
// An empty configured key leaves the endpoint open, for local development.
func RequireAPIKey(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}
		provided := c.Get("X-API-Key")
		if provided == "" {
			provided = c.Query("api_key")
		}
		if provided != apiKey {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid API key"})
		}
		return c.Next()
	}
}
