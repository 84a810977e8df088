package domain

import (
	"time"

	"gorm.io/gorm"
)

// Registration represents an event registration. It is owned either by a
// registered user (UserID set) or by a guest (contact fields set), never both.
type Registration struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	PublicID   string         `json:"public_id" gorm:"uniqueIndex;not null"`
	EventID    uint           `json:"event_id" gorm:"not null;index"`
	UserID     *uint          `json:"user_id,omitempty" gorm:"index"`
	GuestName  string         `json:"guest_name,omitempty"`
	GuestEmail string         `json:"guest_email,omitempty"`
	GuestPhone string         `json:"guest_phone,omitempty"`
	PriceCents int64          `json:"price_cents" gorm:"not null;default:0"`
	Currency   string         `json:"currency" gorm:"not null"`
	Status     string         `json:"status" gorm:"not null;default:'pending';index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Registration) TableName() string {
	return "registrations"
}

// Registration statuses
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusAttended  = "attended"
	StatusCancelled = "cancelled"
)

// IsGuest reports whether the registration belongs to a guest
func (r *Registration) IsGuest() bool {
	return r.UserID == nil
}

// IsActive reports whether the registration counts against event capacity
func (r *Registration) IsActive() bool {
	return r.Status == StatusPending || r.Status == StatusPaid || r.Status == StatusAttended
}

// CanTransitionTo validates a status transition.
// pending -> paid | cancelled; paid -> attended | cancelled.
func (r *Registration) CanTransitionTo(status string) bool {
	switch r.Status {
	case StatusPending:
		return status == StatusPaid || status == StatusCancelled
	case StatusPaid:
		return status == StatusAttended || status == StatusCancelled
	default:
		return false
	}
}

// ErrCapacityExhausted is returned when an event's capacity cap is reached
type ErrCapacityExhausted struct {
	EventID uint
}

func (e ErrCapacityExhausted) Error() string {
	return "event capacity exhausted"
}

// RegistrationRepository defines the contract for registration data access
type RegistrationRepository interface {
	// Create persists the registration; when capacity > 0 the insert and the
	// active-count check run in one transaction so the database is the final
	// arbiter for the last slot.
	Create(reg *Registration, capacity int) error
	FindByID(id uint) (*Registration, error)
	FindByPublicID(publicID string) (*Registration, error)
	FindActiveByEventAndUser(eventID, userID uint) (*Registration, error)
	FindByUserID(userID uint, limit, offset int) ([]Registration, error)
	CountActiveByEvent(eventID uint) (int64, error)
	UpdateStatus(id uint, status string) error
}
