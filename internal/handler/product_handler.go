package handler

import (
	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	productRepo    repository.ProductRepository
	competitorRepo repository.CompetitorRepository
	historyRepo    repository.PriceHistoryRepository
	saleRepo       repository.SaleRepository
}

func NewProductHandler(
	productRepo repository.ProductRepository,
	competitorRepo repository.CompetitorRepository,
	historyRepo repository.PriceHistoryRepository,
	saleRepo repository.SaleRepository,
) *ProductHandler {
	return &ProductHandler{
		productRepo:    productRepo,
		competitorRepo: competitorRepo,
		historyRepo:    historyRepo,
		saleRepo:       saleRepo,
	}
}

// GetProducts lists the seller's active products
// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	products, err := h.productRepo.FindActiveBySeller(sellerID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

// CreateProduct manually adds a product, for sellers without sync access
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	product.SellerID = sellerID
	product.CreatedBy = getSellerEmail(c)
	if product.SKU == "" {
		return c.Status(400).JSON(fiber.Map{"error": "SKU is required"})
	}
	if product.BuyBoxStatus == "" {
		product.BuyBoxStatus = model.BuyBoxUnknown
	}

	if _, err := h.productRepo.FindBySKU(sellerID, product.SKU); err == nil {
		return c.Status(409).JSON(fiber.Map{"error": "A product with this SKU already exists"})
	}

	if err := h.productRepo.Create(&product); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// GetProduct returns a single product, scoped to the seller
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.productRepo.FindBySellerAndID(sellerID, productID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	return c.JSON(product)
}

// UpdateBoundsRequest carries the editable pricing constraints of a product.
type UpdateBoundsRequest struct {
	CostPrice *float64 `json:"cost_price" validate:"omitempty,gte=0"`
	MinPrice  *float64 `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `json:"max_price" validate:"omitempty,gte=0"`
	IsActive  *bool    `json:"is_active"`
}

// UpdateProduct updates a product's pricing bounds and active flag
// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req UpdateBoundsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return c.Status(400).JSON(fiber.Map{"error": "min_price cannot exceed max_price"})
	}

	product, err := h.productRepo.FindBySellerAndID(sellerID, productID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}

	fields := map[string]interface{}{"updated_by": getSellerEmail(c)}
	if req.CostPrice != nil {
		fields["cost_price"] = *req.CostPrice
	}
	if req.MinPrice != nil {
		fields["min_price"] = *req.MinPrice
	}
	if req.MaxPrice != nil {
		fields["max_price"] = *req.MaxPrice
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if err := h.productRepo.UpdateFields(nil, product.ID, fields); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	updated, err := h.productRepo.FindByID(product.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// GetPriceHistory lists recent price changes for one product
// GET /api/v1/products/:id/history
func (h *ProductHandler) GetPriceHistory(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if _, err := h.productRepo.FindBySellerAndID(sellerID, productID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}

	limit := c.QueryInt("limit", 50)
	history, err := h.historyRepo.FindByProduct(productID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(history)
}

// GetCompetitors lists competitors for one product, cheapest first
// GET /api/v1/products/:id/competitors
func (h *ProductHandler) GetCompetitors(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if _, err := h.productRepo.FindBySellerAndID(sellerID, productID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}

	competitors, err := h.competitorRepo.FindByProduct(productID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(competitors)
}

// AddCompetitor records a rival offer against one of the seller's products
// POST /api/v1/products/:id/competitors
func (h *ProductHandler) AddCompetitor(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if _, err := h.productRepo.FindBySellerAndID(sellerID, productID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}

	var competitor model.Competitor
	if err := c.BodyParser(&competitor); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	competitor.SellerID = sellerID
	competitor.ProductID = productID
	competitor.CreatedBy = getSellerEmail(c)

	if errs := validator.ValidateStruct(&competitor); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	if err := h.competitorRepo.Create(&competitor); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Competitor added", "data": competitor})
}

// CreateCompetitor records a rival offer with the product id in the body
// POST /api/v1/competitors
func (h *ProductHandler) CreateCompetitor(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	var competitor model.Competitor
	if err := c.BodyParser(&competitor); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if _, err := h.productRepo.FindBySellerAndID(sellerID, competitor.ProductID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	competitor.SellerID = sellerID
	competitor.CreatedBy = getSellerEmail(c)

	if errs := validator.ValidateStruct(&competitor); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	if err := h.competitorRepo.Create(&competitor); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Competitor added", "data": competitor})
}

// GetRecentHistory lists the seller's most recent price changes
// GET /api/v1/price-history
func (h *ProductHandler) GetRecentHistory(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	limit := c.QueryInt("limit", 50)
	history, err := h.historyRepo.FindRecentBySeller(sellerID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(history)
}

// DeleteCompetitor soft-deletes a competitor entry
// DELETE /api/v1/competitors/:id
func (h *ProductHandler) DeleteCompetitor(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	competitorID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid competitor ID"})
	}

	if err := h.competitorRepo.Delete(sellerID, competitorID, getSellerEmail(c)); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Competitor not found"})
	}
	return c.JSON(fiber.Map{"message": "Competitor deleted"})
}

// GetSales lists the seller's recent sales
// GET /api/v1/sales
func (h *ProductHandler) GetSales(c *fiber.Ctx) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid session"})
	}

	limit := c.QueryInt("limit", 50)
	sales, err := h.saleRepo.FindBySeller(sellerID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(sales)
}
