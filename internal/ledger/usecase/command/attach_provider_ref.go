package command

import (
	"fmt"

	"github.com/tair/membership-platform/internal/ledger/domain"
)

// AttachProviderRefCommand records the gateway's session reference on a
// payment after session creation. The payment status is left untouched.
type AttachProviderRefCommand struct {
	PaymentID       uint
	ProviderRef     string
	ProviderPayload string
}

// AttachProviderRefHandler handles attach provider ref command
type AttachProviderRefHandler struct {
	repo domain.OrderRepository
}

// NewAttachProviderRefHandler creates a new attach provider ref handler
func NewAttachProviderRefHandler(repo domain.OrderRepository) *AttachProviderRefHandler {
	return &AttachProviderRefHandler{repo: repo}
}

// Handle executes the attach provider ref command
func (h *AttachProviderRefHandler) Handle(cmd AttachProviderRefCommand) error {
	if cmd.PaymentID == 0 {
		return fmt.Errorf("payment_id is required")
	}
	if cmd.ProviderRef == "" {
		return fmt.Errorf("provider_ref is required")
	}

	payment, err := h.repo.FindPaymentByID(cmd.PaymentID)
	if err != nil {
		return fmt.Errorf("payment not found: %w", err)
	}

	payment.ProviderRef = cmd.ProviderRef
	if cmd.ProviderPayload != "" {
		payment.ProviderPayload = cmd.ProviderPayload
	}

	if err := h.repo.UpdatePayment(payment); err != nil {
		return fmt.Errorf("failed to attach provider ref: %w", err)
	}

	return nil
}
