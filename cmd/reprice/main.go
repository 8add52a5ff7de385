package main

import (
	"context"
	"flag"
	"log"

	"go-repricer-ws/internal/ai"
	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/internal/service"
	"go-repricer-ws/internal/takealot"
	"go-repricer-ws/pkg/config"
	"go-repricer-ws/pkg/database"
	"go-repricer-ws/pkg/logger"
)

// One-shot repricing run for cron usage, without going through the HTTP API.
func main() {
	sellerEmail := flag.String("seller", "", "email of the seller to reprice")
	useAI := flag.Bool("ai", false, "use AI recommendations instead of rules")
	flag.Parse()

	if *sellerEmail == "" {
		log.Fatal("❌ -seller flag is required")
	}

	// 1. Load Config
	cfg := config.MustLoad()
	appLog := logger.New(cfg.Env)
	defer appLog.Sync()

	// 2. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL)

	// 3. Find Seller
	var seller model.Seller
	if err := db.Where("email = ?", *sellerEmail).First(&seller).Error; err != nil {
		log.Fatalf("❌ Seller %s not found in database: %v", *sellerEmail, err)
	}

	// 4. Wire the repricing pipeline
	takealotClient := takealot.NewClient(takealot.Config{
		APIKey:       cfg.Takealot.APIKey,
		BaseURL:      cfg.Takealot.BaseURL,
		HealthURL:    cfg.Takealot.HealthURL,
		MaxRetries:   cfg.Takealot.MaxRetries,
		RetryBackoff: cfg.Takealot.RetryBackoff,
	}, appLog)
	aiClient := ai.NewClient(cfg.AI.GeminiAPIKey, cfg.AI.GeminiURL, appLog)

	productRepo := repository.NewProductRepo(db)
	historyRepo := repository.NewPriceHistoryRepo(db)
	applier := service.NewPriceApplier(db, historyRepo, productRepo, takealotClient, nil, appLog)
	repricingService := service.NewRepricingService(
		productRepo,
		repository.NewRuleRepo(db),
		repository.NewCompetitorRepo(db),
		applier,
		aiClient,
		appLog,
	)

	// 5. Run
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Repricing.BatchTimeout)
	defer cancel()

	var result *service.RunResult
	var err error
	if *useAI {
		result, err = repricingService.RunAI(ctx, seller.ID)
	} else {
		result, err = repricingService.RunRules(ctx, seller.ID)
	}
	if err != nil {
		log.Fatalf("❌ Repricing run failed: %v", err)
	}

	log.Printf("✅ Done: analyzed=%d recommendations=%d applied=%d failed=%d aborted=%v",
		result.Analyzed, result.Recommendations, result.Applied, result.Failed, result.Aborted)
}
