package handler

import (
	"go-repricer-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles seller authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// Return 401 for authentication errors
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// ValidateTokenRequest represents the token validation request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateToken checks a JWT and returns its claims
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Token == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Token is required"})
	}

	claims, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"valid": false, "error": "Invalid or expired token"})
	}

	return c.JSON(fiber.Map{
		"valid":     true,
		"seller_id": claims.SellerID,
		"email":     claims.Email,
		"name":      claims.Name,
	})
}

// Me returns the authenticated seller from the JWT context
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"seller_id": getSellerIDString(c),
		"email":     c.Locals("seller_email"),
		"name":      c.Locals("seller_name"),
	})
}

// Helper untuk ambil seller info dari JWT context (set by auth middleware)
func getSellerIDString(c *fiber.Ctx) string {
	sellerID := c.Locals("seller_id")
	if sellerID == nil {
		return ""
	}
	return sellerID.(string)
}

func getSellerID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(getSellerIDString(c))
}

func getSellerEmail(c *fiber.Ctx) string {
	email := c.Locals("seller_email")
	if email == nil {
		return ""
	}
	return email.(string)
}

// Helper untuk parse UUID dari string
func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
