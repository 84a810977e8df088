package domain

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Order represents the financial side of a checkout attempt. Exactly one
// order exists per attempt; guests never own orders.
type Order struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	OrderNumber      string         `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID           uint           `json:"user_id" gorm:"not null;index"`
	Type             string         `json:"type" gorm:"not null;index"`
	GrossAmountCents int64          `json:"gross_amount_cents" gorm:"not null"`
	BaseAmountCents  int64          `json:"base_amount_cents" gorm:"not null"`
	DiscountCents    int64          `json:"discount_cents" gorm:"not null;default:0"`
	TaxCents         int64          `json:"tax_cents" gorm:"not null;default:0"`
	Currency         string         `json:"currency" gorm:"not null"`
	Metadata         string         `json:"metadata"` // JSON, resolves the settled domain record
	Status           string         `json:"status" gorm:"not null;default:'pending';index"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// Order types
const (
	OrderTypeEventRegistration  = "event_registration"
	OrderTypeMembershipPurchase = "membership_purchase"
	OrderTypeMembershipRenewal  = "membership_renewal"
)

// CanTransitionTo validates an order status transition.
// pending -> paid | failed | cancelled; paid -> refunded.
func (o *Order) CanTransitionTo(status string) bool {
	switch o.Status {
	case OrderStatusPending:
		return status == OrderStatusPaid || status == OrderStatusFailed || status == OrderStatusCancelled
	case OrderStatusPaid:
		return status == OrderStatusRefunded
	default:
		return false
	}
}

// OrderMetadata is embedded as JSON in Order.Metadata and in the gateway
// checkout session. It is the only channel the asynchronous reconciliation
// handler has to map a gateway event back to internal records.
type OrderMetadata struct {
	RecordType string `json:"record_type"` // registration, membership
	RecordID   uint   `json:"record_id"`
	PublicID   string `json:"public_id"`
	OfferingID uint   `json:"offering_id"`
	ActorKind  string `json:"actor_kind"` // member, guest
	OrderID    uint   `json:"order_id,omitempty"`
	PaymentID  uint   `json:"payment_id,omitempty"`
}

// Encode marshals metadata to its JSON wire form
func (m OrderMetadata) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeOrderMetadata parses metadata from its JSON wire form
func DecodeOrderMetadata(raw string) (OrderMetadata, error) {
	var m OrderMetadata
	err := json.Unmarshal([]byte(raw), &m)
	return m, err
}

// OrderRepository defines the contract for order/payment data access
type OrderRepository interface {
	// CreateWithPayment persists the order and its payment in one transaction
	CreateWithPayment(order *Order, payment *Payment) error
	FindOrderByID(id uint) (*Order, error)
	FindOrderByNumber(orderNumber string) (*Order, error)
	FindOrdersByUser(userID uint, limit, offset int) ([]Order, error)
	UpdateOrder(order *Order) error
	FindPaymentByID(id uint) (*Payment, error)
	FindPaymentByOrderID(orderID uint) (*Payment, error)
	UpdatePayment(payment *Payment) error
}
