package repository

import (
	"time"

	"github.com/tair/membership-platform/internal/catalog/domain"
	"gorm.io/gorm"
)

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Event{}, &domain.MembershipLevel{})
}

func (r *GormEventRepository) Create(event *domain.Event) error {
	return r.db.Create(event).Error
}

func (r *GormEventRepository) FindByID(id uint) (*domain.Event, error) {
	var event domain.Event
	err := r.db.First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *GormEventRepository) FindAll(limit, offset int) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.Limit(limit).Offset(offset).
		Order("starts_at DESC").
		Find(&events).Error
	return events, err
}

func (r *GormEventRepository) FindUpcoming(limit, offset int) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.Where("status = ? AND starts_at > ?", domain.EventStatusPublished, time.Now()).
		Limit(limit).Offset(offset).
		Order("starts_at ASC").
		Find(&events).Error
	return events, err
}

func (r *GormEventRepository) Update(event *domain.Event) error {
	return r.db.Save(event).Error
}

func (r *GormEventRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&domain.Event{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GormEventRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Event{}).Count(&count).Error
	return count, err
}

type GormLevelRepository struct {
	db *gorm.DB
}

func NewGormLevelRepository(db *gorm.DB) *GormLevelRepository {
	return &GormLevelRepository{db: db}
}

func (r *GormLevelRepository) Create(level *domain.MembershipLevel) error {
	return r.db.Create(level).Error
}

func (r *GormLevelRepository) FindByID(id uint) (*domain.MembershipLevel, error) {
	var level domain.MembershipLevel
	err := r.db.First(&level, id).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *GormLevelRepository) FindAll(limit, offset int) ([]domain.MembershipLevel, error) {
	var levels []domain.MembershipLevel
	err := r.db.Where("is_active = ?", true).
		Limit(limit).Offset(offset).
		Order("price_cents ASC").
		Find(&levels).Error
	return levels, err
}

func (r *GormLevelRepository) Update(level *domain.MembershipLevel) error {
	return r.db.Save(level).Error
}
