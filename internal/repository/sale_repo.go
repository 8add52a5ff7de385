package repository

import (
	"go-repricer-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindBySeller(sellerID uuid.UUID, limit int) ([]model.Sale, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) FindBySeller(sellerID uuid.UUID, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.
		Where("seller_id = ?", sellerID).
		Order("sold_at DESC").
		Limit(limit).
		Preload("Product").
		Find(&sales).Error
	return sales, err
}
