package command

import (
	"fmt"
	"time"

	"github.com/tair/membership-platform/internal/ledger/domain"
)

// UpdatePaymentStatusCommand transitions a payment to a new status, optionally
// recording the gateway session reference and payload
type UpdatePaymentStatusCommand struct {
	PaymentID       uint
	Status          string
	ProcessedAt     *time.Time
	ProviderRef     string
	ProviderPayload string
}

// UpdatePaymentStatusHandler handles update payment status command
type UpdatePaymentStatusHandler struct {
	repo domain.OrderRepository
}

// NewUpdatePaymentStatusHandler creates a new update payment status handler
func NewUpdatePaymentStatusHandler(repo domain.OrderRepository) *UpdatePaymentStatusHandler {
	return &UpdatePaymentStatusHandler{repo: repo}
}

var validPaymentStatuses = map[string]bool{
	domain.PaymentStatusPending:   true,
	domain.PaymentStatusSucceeded: true,
	domain.PaymentStatusFailed:    true,
}

// Handle executes the update payment status command. Re-applying the same
// terminal status is a no-op, not an error.
func (h *UpdatePaymentStatusHandler) Handle(cmd UpdatePaymentStatusCommand) error {
	if cmd.PaymentID == 0 {
		return fmt.Errorf("payment_id is required")
	}
	if !validPaymentStatuses[cmd.Status] {
		return fmt.Errorf("invalid status: %s", cmd.Status)
	}

	payment, err := h.repo.FindPaymentByID(cmd.PaymentID)
	if err != nil {
		return fmt.Errorf("payment not found: %w", err)
	}

	if payment.Status == cmd.Status {
		return nil
	}

	if payment.IsTerminal() {
		return fmt.Errorf("cannot transition payment from %s to %s", payment.Status, cmd.Status)
	}

	payment.Status = cmd.Status
	if cmd.ProviderRef != "" {
		payment.ProviderRef = cmd.ProviderRef
	}
	if cmd.ProviderPayload != "" {
		payment.ProviderPayload = cmd.ProviderPayload
	}
	if cmd.Status != domain.PaymentStatusPending && payment.ProcessedAt == nil {
		processedAt := time.Now()
		if cmd.ProcessedAt != nil {
			processedAt = *cmd.ProcessedAt
		}
		payment.ProcessedAt = &processedAt
	}

	if err := h.repo.UpdatePayment(payment); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	return nil
}
