package repository

import (
	"go-repricer-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeadtimeOrderRepository interface {
	Create(tx *gorm.DB, order *model.LeadtimeOrder) error
	FindBySeller(sellerID uuid.UUID, limit int) ([]model.LeadtimeOrder, error)
}

type leadtimeOrderRepo struct {
	db *gorm.DB
}

func NewLeadtimeOrderRepo(db *gorm.DB) LeadtimeOrderRepository {
	return &leadtimeOrderRepo{db}
}

func (r *leadtimeOrderRepo) Create(tx *gorm.DB, order *model.LeadtimeOrder) error {
	return tx.Create(order).Error
}

func (r *leadtimeOrderRepo) FindBySeller(sellerID uuid.UUID, limit int) ([]model.LeadtimeOrder, error) {
	var orders []model.LeadtimeOrder
	err := r.db.
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
