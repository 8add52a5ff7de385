package repository

import (
	"go-repricer-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompetitorRepository interface {
	Create(competitor *model.Competitor) error
	Delete(sellerID, id uuid.UUID, deletedBy string) error
	FindBySeller(sellerID uuid.UUID) ([]model.Competitor, error)
	FindByProduct(productID uuid.UUID) ([]model.Competitor, error)
}

type competitorRepo struct {
	db *gorm.DB
}

func NewCompetitorRepo(db *gorm.DB) CompetitorRepository {
	return &competitorRepo{db}
}

func (r *competitorRepo) Create(competitor *model.Competitor) error {
	return r.db.Create(competitor).Error
}

// Delete is scoped to the owning seller so one seller cannot remove
// another's competitor entries.
func (r *competitorRepo) Delete(sellerID, id uuid.UUID, deletedBy string) error {
	result := r.db.Model(&model.Competitor{}).
		Where("id = ? AND seller_id = ?", id, sellerID).
		Update("deleted_by", deletedBy)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.db.Delete(&model.Competitor{}, "id = ? AND seller_id = ?", id, sellerID).Error
}

func (r *competitorRepo) FindBySeller(sellerID uuid.UUID) ([]model.Competitor, error) {
	var competitors []model.Competitor
	err := r.db.Where("seller_id = ?", sellerID).Find(&competitors).Error
	return competitors, err
}

func (r *competitorRepo) FindByProduct(productID uuid.UUID) ([]model.Competitor, error) {
	var competitors []model.Competitor
	err := r.db.Where("product_id = ?", productID).Order("competitor_price ASC").Find(&competitors).Error
	return competitors, err
}
