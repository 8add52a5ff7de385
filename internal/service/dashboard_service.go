package service

import (
	"time"

	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalProducts    int64 `json:"total_products"`
	ActiveProducts   int64 `json:"active_products"`
	BuyBoxWins       int64 `json:"buy_box_wins"`
	TotalCompetitors int64 `json:"total_competitors"`
	ActiveRules      int64 `json:"active_rules"`
	ChangesToday     int64 `json:"changes_today"`
}

type DashboardService interface {
	GetStats(sellerID uuid.UUID) (*DashboardStats, error)
	GetDailyChanges(sellerID uuid.UUID, days int) ([]repository.DailyPriceChanges, error)
	GetRecentChanges(sellerID uuid.UUID, limit int) ([]model.PriceHistory, error)
}

type dashboardService struct {
	db          *gorm.DB
	historyRepo repository.PriceHistoryRepository
}

func NewDashboardService(db *gorm.DB, historyRepo repository.PriceHistoryRepository) DashboardService {
	return &dashboardService{db: db, historyRepo: historyRepo}
}

func (s *dashboardService) GetStats(sellerID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.Model(&model.Product{}).
		Where("seller_id = ?", sellerID).
		Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Product{}).
		Where("seller_id = ? AND is_active = ?", sellerID, true).
		Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Product{}).
		Where("seller_id = ? AND buy_box_status = ?", sellerID, model.BuyBoxWon).
		Count(&stats.BuyBoxWins).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Competitor{}).
		Where("seller_id = ?", sellerID).
		Count(&stats.TotalCompetitors).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.RepricingRule{}).
		Where("seller_id = ? AND is_active = ?", sellerID, true).
		Count(&stats.ActiveRules).Error; err != nil {
		return nil, err
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	if err := s.db.Model(&model.PriceHistory{}).
		Joins("JOIN products ON products.id = price_histories.product_id").
		Where("products.seller_id = ? AND price_histories.created_at >= ?", sellerID, startOfDay).
		Count(&stats.ChangesToday).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *dashboardService) GetDailyChanges(sellerID uuid.UUID, days int) ([]repository.DailyPriceChanges, error) {
	if days <= 0 || days > 90 {
		days = 30
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.historyRepo.GetDailyChanges(sellerID, start, end)
}

func (s *dashboardService) GetRecentChanges(sellerID uuid.UUID, limit int) ([]model.PriceHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.historyRepo.FindRecentBySeller(sellerID, limit)
}
