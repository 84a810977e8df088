package domain

import (
	"time"

	"gorm.io/gorm"
)

// Payment represents the gateway-facing half of the ledger, 1:1 with an order
// at creation time. ProviderRef is populated only after a gateway checkout
// session exists; administratively settled payments carry the sentinel
// provider and no external reference.
type Payment struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	OrderID         uint           `json:"order_id" gorm:"not null;uniqueIndex"`
	Provider        string         `json:"provider" gorm:"not null"`
	ProviderRef     string         `json:"provider_ref" gorm:"index"`
	ProviderPayload string         `json:"provider_payload"` // opaque, provider-defined
	Status          string         `json:"status" gorm:"not null;default:'pending';index"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment providers
const (
	ProviderPayPal = "paypal"
	// ProviderAdmin records zero-cost settlements in the same schema as real
	// gateway payments
	ProviderAdmin = "admin"
)

// IsTerminal reports whether the payment reached a final state
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusSucceeded || p.Status == PaymentStatusFailed
}
