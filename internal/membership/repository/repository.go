package repository

import (
	"errors"
	"time"

	"github.com/tair/membership-platform/internal/membership/domain"
	"gorm.io/gorm"
)

type GormMembershipRepository struct {
	db *gorm.DB
}

func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

func (r *GormMembershipRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Membership{})
}

func (r *GormMembershipRepository) Create(membership *domain.Membership) error {
	return r.db.Create(membership).Error
}

func (r *GormMembershipRepository) FindByID(id uint) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.First(&membership, id).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *GormMembershipRepository) FindByPublicID(publicID string) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.Where("public_id = ?", publicID).First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *GormMembershipRepository) FindActiveByUser(userID uint) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.db.Where("user_id = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
		userID, domain.StatusActive, time.Now()).
		Order("expires_at DESC").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *GormMembershipRepository) FindByUserID(userID uint, limit, offset int) ([]domain.Membership, error) {
	var memberships []domain.Membership
	err := r.db.Where("user_id = ?", userID).
		Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&memberships).Error
	return memberships, err
}

func (r *GormMembershipRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&domain.Membership{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GormMembershipRepository) Activate(id uint, startsAt, expiresAt time.Time) error {
	return r.db.Model(&domain.Membership{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.StatusActive,
			"starts_at":  startsAt,
			"expires_at": expiresAt,
		}).Error
}
