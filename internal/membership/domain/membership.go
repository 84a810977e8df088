package domain

import (
	"time"

	"gorm.io/gorm"
)

// Membership represents a member's subscription to a membership level.
// Unlike event registrations, memberships always belong to a registered user.
type Membership struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	PublicID   string         `json:"public_id" gorm:"uniqueIndex;not null"`
	UserID     uint           `json:"user_id" gorm:"not null;index"`
	LevelID    uint           `json:"level_id" gorm:"not null;index"`
	PriceCents int64          `json:"price_cents" gorm:"not null;default:0"`
	Currency   string         `json:"currency" gorm:"not null"`
	Status     string         `json:"status" gorm:"not null;default:'pending';index"`
	StartsAt   *time.Time     `json:"starts_at,omitempty"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Membership) TableName() string {
	return "memberships"
}

// Membership statuses
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// IsCurrent reports whether the membership is active at the given time
func (m *Membership) IsCurrent(now time.Time) bool {
	if m.Status != StatusActive {
		return false
	}
	return m.ExpiresAt == nil || now.Before(*m.ExpiresAt)
}

// MembershipRepository defines the contract for membership data access
type MembershipRepository interface {
	Create(membership *Membership) error
	FindByID(id uint) (*Membership, error)
	FindByPublicID(publicID string) (*Membership, error)
	FindActiveByUser(userID uint) (*Membership, error)
	FindByUserID(userID uint, limit, offset int) ([]Membership, error)
	UpdateStatus(id uint, status string) error
	Activate(id uint, startsAt, expiresAt time.Time) error
}
