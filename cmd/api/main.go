package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-repricer-ws/internal/ai"
	"go-repricer-ws/internal/handler"
	"go-repricer-ws/internal/middleware"
	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/ratelimit"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/internal/service"
	"go-repricer-ws/internal/takealot"
	"go-repricer-ws/internal/ws"
	"go-repricer-ws/pkg/config"
	"go-repricer-ws/pkg/database"
	"go-repricer-ws/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Config
	cfg := config.MustLoad()

	appLog := logger.New(cfg.Env)
	defer appLog.Sync()

	// 2. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL)
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.Seller{},
		&model.Product{},
		&model.Competitor{},
		&model.RepricingRule{},
		&model.PriceHistory{},
		&model.Sale{},
		&model.LeadtimeOrder{},
		&model.WebhookEvent{},
	)

	// 3. Seed default seller
	seedDefaultSeller(db, appLog)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. External clients
	takealotClient := takealot.NewClient(takealot.Config{
		APIKey:       cfg.Takealot.APIKey,
		BaseURL:      cfg.Takealot.BaseURL,
		HealthURL:    cfg.Takealot.HealthURL,
		MaxRetries:   cfg.Takealot.MaxRetries,
		RetryBackoff: cfg.Takealot.RetryBackoff,
	}, appLog)
	aiClient := ai.NewClient(cfg.AI.GeminiAPIKey, cfg.AI.GeminiURL, appLog)

	// 6. Dependency Injection (Wiring Layers)
	sellerRepo := repository.NewSellerRepo(db)
	productRepo := repository.NewProductRepo(db)
	competitorRepo := repository.NewCompetitorRepo(db)
	ruleRepo := repository.NewRuleRepo(db)
	historyRepo := repository.NewPriceHistoryRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	leadtimeRepo := repository.NewLeadtimeOrderRepo(db)
	eventRepo := repository.NewWebhookEventRepo(db)

	applier := service.NewPriceApplier(db, historyRepo, productRepo, takealotClient, wsHub, appLog)
	repricingService := service.NewRepricingService(productRepo, ruleRepo, competitorRepo, applier, aiClient, appLog)
	syncService := service.NewSyncService(db, productRepo, historyRepo, takealotClient, appLog)
	webhookService := service.NewWebhookService(db, productRepo, eventRepo, saleRepo, leadtimeRepo, historyRepo, appLog)
	dashboardService := service.NewDashboardService(db, historyRepo)
	authService := service.NewAuthService(sellerRepo, appLog)

	webhookLimiter := ratelimit.New(cfg.Webhook.RateLimit, cfg.Webhook.RateWindow)

	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productRepo, competitorRepo, historyRepo, saleRepo)
	ruleHandler := handler.NewRuleHandler(ruleRepo)
	repricingHandler := handler.NewRepricingHandler(repricingService, syncService, cfg.Repricing.BatchTimeout)
	webhookHandler := handler.NewWebhookHandler(webhookService, eventRepo, webhookLimiter, cfg.Webhook.Secret)
	integrationHandler := handler.NewIntegrationHandler(takealotClient, aiClient, cfg.Webhook.Secret)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Takealot Repricer v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// Marketplace webhook ingress (signature-verified, rate limited)
	api.Post("/webhooks/takealot", webhookHandler.HandleTakealot)

	// Automation endpoints (cron / n8n) behind the shared API key
	automation := api.Group("/automation", middleware.RequireAPIKey(cfg.AutomationAPIKey))
	automation.Post("/repricing/run", withSellerFromQuery(sellerRepo, repricingHandler.RunRules))
	automation.Post("/repricing/ai-run", withSellerFromQuery(sellerRepo, repricingHandler.RunAI))
	automation.Post("/products/sync", withSellerFromQuery(sellerRepo, repricingHandler.SyncProducts))
	automation.Post("/prices/update", withSellerFromQuery(sellerRepo, repricingHandler.UpdatePrices))

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(sellerRepo))

	protected.Get("/auth/me", authHandler.Me)

	// Dashboard Routes
	protected.Get("/dashboard/stats", dashboardHandler.GetStats)
	protected.Get("/dashboard/daily-changes", dashboardHandler.GetDailyChanges)
	protected.Get("/dashboard/recent-changes", dashboardHandler.GetRecentChanges)

	// Product Routes
	protected.Get("/products", productHandler.GetProducts)
	protected.Post("/products", productHandler.CreateProduct)
	protected.Post("/products/sync", repricingHandler.SyncProducts)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Put("/products/:id", productHandler.UpdateProduct)
	protected.Get("/products/:id/history", productHandler.GetPriceHistory)
	protected.Get("/products/:id/competitors", productHandler.GetCompetitors)
	protected.Post("/products/:id/competitors", productHandler.AddCompetitor)
	protected.Post("/competitors", productHandler.CreateCompetitor)
	protected.Delete("/competitors/:id", productHandler.DeleteCompetitor)

	// Price history + sales
	protected.Get("/price-history", productHandler.GetRecentHistory)
	protected.Get("/sales", productHandler.GetSales)

	// Repricing Rule Routes
	protected.Get("/repricing-rules", ruleHandler.GetRules)
	protected.Post("/repricing-rules", ruleHandler.CreateRule)
	protected.Put("/repricing-rules/:id", ruleHandler.UpdateRule)
	protected.Delete("/repricing-rules/:id", ruleHandler.DeleteRule)

	// Repricing Routes
	protected.Post("/repricing/run", repricingHandler.RunRules)
	protected.Post("/repricing/ai-run", repricingHandler.RunAI)
	protected.Post("/repricing/update-prices", repricingHandler.UpdatePrices)

	// Webhook event log
	protected.Get("/webhooks/events", webhookHandler.GetEvents)

	// Integration Routes
	protected.Get("/integration/status", integrationHandler.Status)
	protected.Get("/integration/health", integrationHandler.TakealotHealth)
	protected.Get("/integration/secret-check", integrationHandler.SecretCheck)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		appLog.Fatal("server forced to shutdown", zap.Error(err))
	}
	appLog.Info("server exited")
}

// withSellerFromQuery resolves the target seller for automation callers,
// which authenticate with the shared API key instead of a JWT. The seller
// is looked up by the email query param and placed in context the same way
// RequireAuth does.
func withSellerFromQuery(sellerRepo repository.SellerRepository, next fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Query("seller")
		if email == "" {
			return c.Status(400).JSON(fiber.Map{"error": "seller query param is required"})
		}
		seller, err := sellerRepo.FindByEmail(email)
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Seller not found"})
		}
		c.Locals("seller_id", seller.ID.String())
		c.Locals("seller_email", seller.Email)
		c.Locals("seller_name", seller.FullName)
		return next(c)
	}
}

// seedDefaultSeller creates the initial seller account if the table is empty
func seedDefaultSeller(db *gorm.DB, appLog *zap.Logger) {
	var count int64
	db.Model(&model.Seller{}).Count(&count)
	if count > 0 {
		return
	}

	email := os.Getenv("SEED_SELLER_EMAIL")
	if email == "" {
		email = "seller@example.com"
	}
	password := os.Getenv("SEED_SELLER_PASSWORD")
	if password == "" {
		password = "changeme123"
	}

	seller := &model.Seller{
		Email:    email,
		FullName: "Default Seller",
		IsActive: true,
	}
	if err := seller.SetPassword(password); err != nil {
		appLog.Warn("failed to hash seed password", zap.Error(err))
		return
	}
	if err := db.Create(seller).Error; err != nil {
		appLog.Warn("failed to seed default seller", zap.Error(err))
		return
	}
	appLog.Info("seeded default seller", zap.String("email", email))
}
