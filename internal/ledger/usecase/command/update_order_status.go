package command

import (
	"fmt"
	"time"

	"github.com/tair/membership-platform/internal/ledger/domain"
)

// UpdateOrderStatusCommand transitions an order to a new status
type UpdateOrderStatusCommand struct {
	OrderID uint
	Status  string
	PaidAt  *time.Time
}

// UpdateOrderStatusHandler handles update order status command
type UpdateOrderStatusHandler struct {
	repo domain.OrderRepository
}

// NewUpdateOrderStatusHandler creates a new update order status handler
func NewUpdateOrderStatusHandler(repo domain.OrderRepository) *UpdateOrderStatusHandler {
	return &UpdateOrderStatusHandler{repo: repo}
}

var validOrderStatuses = map[string]bool{
	domain.OrderStatusPending:   true,
	domain.OrderStatusPaid:      true,
	domain.OrderStatusFailed:    true,
	domain.OrderStatusCancelled: true,
	domain.OrderStatusRefunded:  true,
}

// Handle executes the update order status command. Re-applying the same
// terminal status is a no-op, not an error, so reconciliation can be replayed.
// paid_at is set exactly once, at the transition to paid.
func (h *UpdateOrderStatusHandler) Handle(cmd UpdateOrderStatusCommand) error {
	if cmd.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if !validOrderStatuses[cmd.Status] {
		return fmt.Errorf("invalid status: %s", cmd.Status)
	}

	order, err := h.repo.FindOrderByID(cmd.OrderID)
	if err != nil {
		return fmt.Errorf("order not found: %w", err)
	}

	if order.Status == cmd.Status {
		return nil
	}

	if !order.CanTransitionTo(cmd.Status) {
		return fmt.Errorf("cannot transition order from %s to %s", order.Status, cmd.Status)
	}

	order.Status = cmd.Status
	if cmd.Status == domain.OrderStatusPaid && order.PaidAt == nil {
		paidAt := time.Now()
		if cmd.PaidAt != nil {
			paidAt = *cmd.PaidAt
		}
		order.PaidAt = &paidAt
	}

	if err := h.repo.UpdateOrder(order); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}
