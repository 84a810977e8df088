package repository

import (
	"errors"

	"github.com/tair/membership-platform/internal/registration/domain"
	"gorm.io/gorm"
)

type GormRegistrationRepository struct {
	db *gorm.DB
}

func NewGormRegistrationRepository(db *gorm.DB) *GormRegistrationRepository {
	return &GormRegistrationRepository{db: db}
}

func (r *GormRegistrationRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Registration{})
}

var activeStatuses = []string{domain.StatusPending, domain.StatusPaid, domain.StatusAttended}

func (r *GormRegistrationRepository) Create(reg *domain.Registration, capacity int) error {
	if capacity <= 0 {
		return r.db.Create(reg).Error
	}

	// Count and insert inside one transaction so two attempts racing for the
	// last slot are serialized by the database.
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Registration{}).
			Where("event_id = ? AND status IN ?", reg.EventID, activeStatuses).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(capacity) {
			return domain.ErrCapacityExhausted{EventID: reg.EventID}
		}
		return tx.Create(reg).Error
	})
}

func (r *GormRegistrationRepository) FindByID(id uint) (*domain.Registration, error) {
	var reg domain.Registration
	err := r.db.First(&reg, id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *GormRegistrationRepository) FindByPublicID(publicID string) (*domain.Registration, error) {
	var reg domain.Registration
	err := r.db.Where("public_id = ?", publicID).First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *GormRegistrationRepository) FindActiveByEventAndUser(eventID, userID uint) (*domain.Registration, error) {
	var reg domain.Registration
	err := r.db.Where("event_id = ? AND user_id = ? AND status IN ?", eventID, userID, activeStatuses).
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

func (r *GormRegistrationRepository) FindByUserID(userID uint, limit, offset int) ([]domain.Registration, error) {
	var regs []domain.Registration
	err := r.db.Where("user_id = ?", userID).
		Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&regs).Error
	return regs, err
}

func (r *GormRegistrationRepository) CountActiveByEvent(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Registration{}).
		Where("event_id = ? AND status IN ?", eventID, activeStatuses).
		Count(&count).Error
	return count, err
}

func (r *GormRegistrationRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&domain.Registration{}).
		Where("id = ?", id).
		Update("status", status).Error
}
