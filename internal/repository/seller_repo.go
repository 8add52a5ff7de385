package repository

import (
	"time"

	"go-repricer-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SellerRepository interface {
	Create(seller *model.Seller) error
	FindByID(id uuid.UUID) (*model.Seller, error)
	FindByEmail(email string) (*model.Seller, error)
	UpdateLastSeen(id uuid.UUID) error
}

type sellerRepo struct {
	db *gorm.DB
}

func NewSellerRepo(db *gorm.DB) SellerRepository {
	return &sellerRepo{db}
}

func (r *sellerRepo) Create(seller *model.Seller) error {
	return r.db.Create(seller).Error
}

func (r *sellerRepo) FindByID(id uuid.UUID) (*model.Seller, error) {
	var seller model.Seller
	err := r.db.First(&seller, "id = ?", id).Error
	return &seller, err
}

func (r *sellerRepo) FindByEmail(email string) (*model.Seller, error) {
	var seller model.Seller
	err := r.db.First(&seller, "email = ?", email).Error
	return &seller, err
}

func (r *sellerRepo) UpdateLastSeen(id uuid.UUID) error {
	return r.db.Model(&model.Seller{}).
		Where("id = ?", id).
		Update("last_seen_at", time.Now()).Error
}
