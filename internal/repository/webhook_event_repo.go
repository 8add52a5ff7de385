package repository

import (
	"go-repricer-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	Create(event *model.WebhookEvent) error
	MarkProcessed(id uuid.UUID) error
	FindBySeller(sellerID uuid.UUID, limit int) ([]model.WebhookEvent, error)
}

type webhookEventRepo struct {
	db *gorm.DB
}

func NewWebhookEventRepo(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepo{db}
}

func (r *webhookEventRepo) Create(event *model.WebhookEvent) error {
	return r.db.Create(event).Error
}

func (r *webhookEventRepo) MarkProcessed(id uuid.UUID) error {
	return r.db.Model(&model.WebhookEvent{}).
		Where("id = ?", id).
		Update("processed", true).Error
}

func (r *webhookEventRepo) FindBySeller(sellerID uuid.UUID, limit int) ([]model.WebhookEvent, error) {
	var events []model.WebhookEvent
	err := r.db.
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
