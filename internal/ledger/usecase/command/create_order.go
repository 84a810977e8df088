package command

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tair/membership-platform/internal/ledger/domain"
)

// CreateOrderCommand creates an order and its payment record in one logical
// transaction: both succeed or neither persists.
type CreateOrderCommand struct {
	UserID           uint
	Type             string
	GrossAmountCents int64
	BaseAmountCents  int64
	DiscountCents    int64
	TaxCents         int64
	Currency         string
	Metadata         domain.OrderMetadata
	Provider         string
}

// CreateOrderResult carries the persisted ledger pair
type CreateOrderResult struct {
	Order   *domain.Order
	Payment *domain.Payment
}

// CreateOrderHandler handles create order command
type CreateOrderHandler struct {
	repo domain.OrderRepository
}

// NewCreateOrderHandler creates a new create order handler
func NewCreateOrderHandler(repo domain.OrderRepository) *CreateOrderHandler {
	return &CreateOrderHandler{repo: repo}
}

var validOrderTypes = map[string]bool{
	domain.OrderTypeEventRegistration:  true,
	domain.OrderTypeMembershipPurchase: true,
	domain.OrderTypeMembershipRenewal:  true,
}

// Handle executes the create order command. A gross amount of 0 is valid and
// expected for free-offering settlement records.
func (h *CreateOrderHandler) Handle(cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if !validOrderTypes[cmd.Type] {
		return nil, fmt.Errorf("invalid order type: %s", cmd.Type)
	}
	if cmd.GrossAmountCents < 0 {
		return nil, fmt.Errorf("gross amount cannot be negative")
	}
	if cmd.Currency == "" {
		return nil, fmt.Errorf("currency is required")
	}
	if cmd.Provider == "" {
		return nil, fmt.Errorf("provider is required")
	}

	metadata, err := cmd.Metadata.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode order metadata: %w", err)
	}

	order := &domain.Order{
		OrderNumber:      fmt.Sprintf("ORD-%s", uuid.New().String()),
		UserID:           cmd.UserID,
		Type:             cmd.Type,
		GrossAmountCents: cmd.GrossAmountCents,
		BaseAmountCents:  cmd.BaseAmountCents,
		DiscountCents:    cmd.DiscountCents,
		TaxCents:         cmd.TaxCents,
		Currency:         cmd.Currency,
		Metadata:         metadata,
		Status:           domain.OrderStatusPending,
	}

	payment := &domain.Payment{
		Provider: cmd.Provider,
		Status:   domain.PaymentStatusPending,
	}

	if err := h.repo.CreateWithPayment(order, payment); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &CreateOrderResult{Order: order, Payment: payment}, nil
}
