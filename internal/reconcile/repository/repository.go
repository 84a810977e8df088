package repository

import (
	"errors"

	"github.com/tair/membership-platform/internal/reconcile/domain"
	"gorm.io/gorm"
)

type GormWebhookEventRepository struct {
	db *gorm.DB
}

func NewGormWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

func (r *GormWebhookEventRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.WebhookEvent{})
}

func (r *GormWebhookEventRepository) Create(event *domain.WebhookEvent) error {
	return r.db.Create(event).Error
}

func (r *GormWebhookEventRepository) FindByProviderEventID(provider, providerEventID string) (*domain.WebhookEvent, error) {
	var event domain.WebhookEvent
	err := r.db.Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *GormWebhookEventRepository) Update(event *domain.WebhookEvent) error {
	return r.db.Save(event).Error
}

func (r *GormWebhookEventRepository) FindFlagged(limit, offset int) ([]domain.WebhookEvent, error) {
	var events []domain.WebhookEvent
	err := r.db.Where("status = ?", domain.StatusFlagged).
		Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}
