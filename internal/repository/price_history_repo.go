package repository

import (
	"time"

	"go-repricer-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PriceHistoryRepository interface {
	Create(tx *gorm.DB, history *model.PriceHistory) error
	FindByProduct(productID uuid.UUID, limit int) ([]model.PriceHistory, error)
	FindRecentBySeller(sellerID uuid.UUID, limit int) ([]model.PriceHistory, error)
	GetDailyChanges(sellerID uuid.UUID, startDate, endDate time.Time) ([]DailyPriceChanges, error)
}

// DailyPriceChanges feeds the dashboard's price-movement chart.
type DailyPriceChanges struct {
	Date     string  `json:"date"`
	Changes  int     `json:"changes"`
	AvgDelta float64 `json:"avg_delta"`
}

type priceHistoryRepo struct {
	db *gorm.DB
}

func NewPriceHistoryRepo(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db}
}

// Create accepts a *gorm.DB so inserts join the applier's transaction.
// Rows are append-only; there is no update path.
func (r *priceHistoryRepo) Create(tx *gorm.DB, history *model.PriceHistory) error {
	return tx.Create(history).Error
}

func (r *priceHistoryRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.PriceHistory, error) {
	var history []model.PriceHistory
	err := r.db.
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&history).Error
	return history, err
}

func (r *priceHistoryRepo) FindRecentBySeller(sellerID uuid.UUID, limit int) ([]model.PriceHistory, error) {
	var history []model.PriceHistory
	err := r.db.
		Joins("JOIN products ON products.id = price_histories.product_id").
		Where("products.seller_id = ?", sellerID).
		Order("price_histories.created_at DESC").
		Limit(limit).
		Preload("Product").
		Find(&history).Error
	return history, err
}

func (r *priceHistoryRepo) GetDailyChanges(sellerID uuid.UUID, startDate, endDate time.Time) ([]DailyPriceChanges, error) {
	var results []DailyPriceChanges

	rows, err := r.db.Model(&model.PriceHistory{}).
		Select(`
			DATE(price_histories.created_at) as date,
			COUNT(*) as changes,
			COALESCE(AVG(price_histories.new_price - price_histories.old_price), 0) as avg_delta
		`).
		Joins("JOIN products ON products.id = price_histories.product_id").
		Where("products.seller_id = ? AND price_histories.created_at BETWEEN ? AND ?", sellerID, startDate, endDate).
		Group("DATE(price_histories.created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data DailyPriceChanges
		if err := rows.Scan(&data.Date, &data.Changes, &data.AvgDelta); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
