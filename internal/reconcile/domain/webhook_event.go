package domain

import (
	"time"
)

// WebhookEvent records every gateway callback we have seen. The unique index
// on (provider, provider_event_id) makes the table the idempotency arbiter
// when the gateway redelivers the same event.
type WebhookEvent struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Provider        string     `json:"provider" gorm:"not null;uniqueIndex:idx_provider_event"`
	ProviderEventID string     `json:"provider_event_id" gorm:"not null;uniqueIndex:idx_provider_event"`
	EventType       string     `json:"event_type" gorm:"not null"`
	Payload         string     `json:"payload"`
	Status          string     `json:"status" gorm:"not null;default:'received';index"`
	Error           string     `json:"error,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// Webhook event statuses. Flagged events failed to resolve to known records
// and wait for manual review; the gateway still gets an acknowledgement.
const (
	StatusReceived  = "received"
	StatusProcessed = "processed"
	StatusFlagged   = "flagged"
)

// WebhookEventRepository defines the contract for webhook event data access
type WebhookEventRepository interface {
	Create(event *WebhookEvent) error
	FindByProviderEventID(provider, providerEventID string) (*WebhookEvent, error)
	Update(event *WebhookEvent) error
	FindFlagged(limit, offset int) ([]WebhookEvent, error)
}
