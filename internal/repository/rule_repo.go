package repository

import (
	"go-repricer-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RuleRepository interface {
	Create(rule *model.RepricingRule) error
	Update(rule *model.RepricingRule) error
	Delete(sellerID, id uuid.UUID, deletedBy string) error
	FindBySellerAndID(sellerID, id uuid.UUID) (*model.RepricingRule, error)
	FindBySeller(sellerID uuid.UUID) ([]model.RepricingRule, error)

	// FindActiveBySeller returns active rules in evaluation order: priority
	// ascending, creation order breaking ties (first created wins).
	FindActiveBySeller(sellerID uuid.UUID) ([]model.RepricingRule, error)
}

type ruleRepo struct {
	db *gorm.DB
}

func NewRuleRepo(db *gorm.DB) RuleRepository {
	return &ruleRepo{db}
}

func (r *ruleRepo) Create(rule *model.RepricingRule) error {
	return r.db.Create(rule).Error
}

func (r *ruleRepo) Update(rule *model.RepricingRule) error {
	return r.db.Save(rule).Error
}

func (r *ruleRepo) Delete(sellerID, id uuid.UUID, deletedBy string) error {
	result := r.db.Model(&model.RepricingRule{}).
		Where("id = ? AND seller_id = ?", id, sellerID).
		Update("deleted_by", deletedBy)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.db.Delete(&model.RepricingRule{}, "id = ? AND seller_id = ?", id, sellerID).Error
}

func (r *ruleRepo) FindBySellerAndID(sellerID, id uuid.UUID) (*model.RepricingRule, error) {
	var rule model.RepricingRule
	err := r.db.First(&rule, "id = ? AND seller_id = ?", id, sellerID).Error
	return &rule, err
}

func (r *ruleRepo) FindBySeller(sellerID uuid.UUID) ([]model.RepricingRule, error) {
	var rules []model.RepricingRule
	err := r.db.
		Where("seller_id = ?", sellerID).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) FindActiveBySeller(sellerID uuid.UUID) ([]model.RepricingRule, error) {
	var rules []model.RepricingRule
	err := r.db.
		Where("seller_id = ? AND is_active = ?", sellerID, true).
		Order("priority ASC, created_at ASC").
		Find(&rules).Error
	return rules, err
}
