package domain

import (
	"time"

	"gorm.io/gorm"
)

// Event represents a platform event that members or guests can register for
type Event struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	Title               string         `json:"title" gorm:"not null"`
	Description         string         `json:"description"`
	Location            string         `json:"location"`
	ImageURL            string         `json:"image_url"`
	StartsAt            time.Time      `json:"starts_at" gorm:"not null;index"`
	EndsAt              time.Time      `json:"ends_at"`
	BasePriceCents      int64          `json:"base_price_cents" gorm:"not null;default:0"`
	MemberDiscountCents int64          `json:"member_discount_cents" gorm:"not null;default:0"`
	Capacity            int            `json:"capacity" gorm:"not null;default:0"` // 0 = unlimited
	Status              string         `json:"status" gorm:"not null;default:'published';index"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Event) TableName() string {
	return "events"
}

// Event statuses
const (
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// AcceptsRegistrations reports whether new registrations are allowed
func (e *Event) AcceptsRegistrations(now time.Time) bool {
	return e.Status == EventStatusPublished && now.Before(e.StartsAt)
}

// HasCapacityCap reports whether the event enforces a capacity limit
func (e *Event) HasCapacityCap() bool {
	return e.Capacity > 0
}

// EventRepository defines the contract for event data access
type EventRepository interface {
	Create(event *Event) error
	FindByID(id uint) (*Event, error)
	FindAll(limit, offset int) ([]Event, error)
	FindUpcoming(limit, offset int) ([]Event, error)
	Update(event *Event) error
	UpdateStatus(id uint, status string) error
	Count() (int64, error)
}
