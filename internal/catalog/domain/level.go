package domain

import (
	"time"

	"gorm.io/gorm"
)

// MembershipLevel represents a purchasable membership tier
type MembershipLevel struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"uniqueIndex;not null"`
	Description    string         `json:"description"`
	PriceCents     int64          `json:"price_cents" gorm:"not null;default:0"`
	DurationMonths int            `json:"duration_months" gorm:"not null;default:12"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (MembershipLevel) TableName() string {
	return "membership_levels"
}

// LevelRepository defines the contract for membership level data access
type LevelRepository interface {
	Create(level *MembershipLevel) error
	FindByID(id uint) (*MembershipLevel, error)
	FindAll(limit, offset int) ([]MembershipLevel, error)
	Update(level *MembershipLevel) error
}
