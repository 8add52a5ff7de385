package repository

import (
	"time"

	"go-repricer-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySellerAndID(sellerID, id uuid.UUID) (*model.Product, error)
	FindActiveBySeller(sellerID uuid.UUID) ([]model.Product, error)
	FindByOfferID(sellerID uuid.UUID, offerID string) (*model.Product, error)
	FindBySKU(sellerID uuid.UUID, sku string) (*model.Product, error)
	FindBySKUOrOfferID(sellerID uuid.UUID, sku, offerID string) (*model.Product, error)
	UpdatePrice(tx *gorm.DB, id uuid.UUID, newPrice float64, repricedAt time.Time) error
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int) error
	UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySellerAndID(sellerID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ? AND seller_id = ?", id, sellerID).Error
	return &product, err
}

func (r *productRepo) FindActiveBySeller(sellerID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.
		Where("seller_id = ? AND is_active = ?", sellerID, true).
		Order("created_at ASC").
		Find(&products).Error
	return products, err
}

// FindByOfferID returns the first match by creation time; multiple matches
// are not expected but must resolve deterministically.
func (r *productRepo) FindByOfferID(sellerID uuid.UUID, offerID string) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Where("seller_id = ? AND takealot_offer_id = ?", sellerID, offerID).
		Order("created_at ASC").
		First(&product).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sellerID uuid.UUID, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Where("seller_id = ? AND sku = ?", sellerID, sku).
		Order("created_at ASC").
		First(&product).Error
	return &product, err
}

// FindBySKUOrOfferID serves the sync upsert: either identifier may match an
// existing row.
func (r *productRepo) FindBySKUOrOfferID(sellerID uuid.UUID, sku, offerID string) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Where("seller_id = ? AND (sku = ? OR takealot_offer_id = ?)", sellerID, sku, offerID).
		Order("created_at ASC").
		First(&product).Error
	return &product, err
}

// UpdatePrice accepts a *gorm.DB so it can run inside a transaction
func (r *productRepo) UpdatePrice(tx *gorm.DB, id uuid.UUID, newPrice float64, repricedAt time.Time) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_price":    newPrice,
			"last_repriced_at": repricedAt,
		}).Error
}

func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": newStock,
			"last_synced_at": time.Now(),
		}).Error
}

func (r *productRepo) UpdateFields(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}
