package kafka

import "time"

// CheckoutConfirmedEvent is emitted when a registration or membership is
// settled (free checkout or reconciled gateway payment). The notification
// worker consumes it to send the confirmation message.
type CheckoutConfirmedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	RecordType     string    `json:"record_type"` // registration, membership
	RecordID       uint      `json:"record_id"`
	PublicID       string    `json:"public_id"`
	OfferingTitle  string    `json:"offering_title"`
	RecipientName  string    `json:"recipient_name"`
	RecipientEmail string    `json:"recipient_email"`
	OrderID        uint      `json:"order_id,omitempty"`
	AmountCents    int64     `json:"amount_cents"`
	Currency       string    `json:"currency"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeCheckoutConfirmed = "checkout.confirmed"
)

// Kafka topics
const (
	TopicCheckoutConfirmed = "checkout-confirmed"
)
