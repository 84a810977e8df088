package checkout

import "context"

// LineItem describes the offering in a gateway checkout session
type LineItem struct {
	Name            string
	Description     string
	UnitAmountCents int64
	Currency        string
	ImageURL        string
}

// SessionRequest is the input for creating a hosted checkout session.
// Metadata must carry every internal id reconciliation needs: the session is
// the only channel through which a gateway event maps back to our records.
type SessionRequest struct {
	Item          LineItem
	SuccessURL    string
	CancelURL     string
	Metadata      string // JSON-encoded ledger metadata
	ReferenceID   string // domain record public id
	CustomerEmail string
}

// CheckoutSession is the gateway's handle for a created session
type CheckoutSession struct {
	ID      string
	URL     string
	Payload string // raw provider response, persisted for audit
}

// Gateway creates hosted checkout sessions with an external payment provider
type Gateway interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error)
}
