package handler

import (
	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type RuleHandler struct {
	ruleRepo repository.RuleRepository
}

func NewRuleHandler(ruleRepo repository.RuleRepository) *RuleHandler {
	return &RuleHandler{ruleRepo: ruleRepo}
}

// GetRules lists all of the seller's rules in evaluation order
// GET /api/v1/repricing-rules
func (h *RuleHandler) GetRules(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	rules, err := h.ruleRepo.FindBySeller(sellerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(rules)
}

// CreateRule adds a repricing rule for the seller
// POST /api/v1/repricing-rules
func (h *RuleHandler) CreateRule(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	var rule model.RepricingRule
	if err := c.BodyParser(&rule); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	rule.SellerID = sellerID
	rule.CreatedBy = getSellerEmail(c)
	if rule.AdjustmentType == "" {
		rule.AdjustmentType = model.AdjustmentAbsolute
	}

	if errs := validator.ValidateStruct(&rule); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	if err := h.ruleRepo.Create(&rule); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Rule created", "data": rule})
}

// UpdateRule replaces a rule's editable fields
// PUT /api/v1/repricing-rules/:id
func (h *RuleHandler) UpdateRule(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	ruleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid rule ID"})
	}

	rule, err := h.ruleRepo.FindBySellerAndID(sellerID, ruleID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Rule not found"})
	}

	var req model.RepricingRule
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	rule.Name = req.Name
	rule.RuleType = req.RuleType
	rule.PriceAdjustment = req.PriceAdjustment
	if req.AdjustmentType != "" {
		rule.AdjustmentType = req.AdjustmentType
	}
	rule.MinMargin = req.MinMargin
	rule.Priority = req.Priority
	rule.IsActive = req.IsActive
	rule.UpdatedBy = getSellerEmail(c)

	if errs := validator.ValidateStruct(rule); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	if err := h.ruleRepo.Update(rule); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Rule updated", "data": rule})
}

// DeleteRule soft-deletes a rule
// DELETE /api/v1/repricing-rules/:id
func (h *RuleHandler) DeleteRule(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	ruleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid rule ID"})
	}

	if err := h.ruleRepo.Delete(sellerID, ruleID, getSellerEmail(c)); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Rule not found"})
	}
	return c.JSON(fiber.Map{"message": "Rule deleted"})
}
