package query

import (
	"fmt"

	"github.com/tair/membership-platform/internal/ledger/domain"
)

// GetOrderQuery represents the query to get an order with its payment
type GetOrderQuery struct {
	OrderID uint
}

// OrderWithPayment pairs an order with its payment record
type OrderWithPayment struct {
	Order   *domain.Order   `json:"order"`
	Payment *domain.Payment `json:"payment"`
}

// GetOrderHandler handles get order query
type GetOrderHandler struct {
	repo domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

// Handle executes the get order query
func (h *GetOrderHandler) Handle(query GetOrderQuery) (*OrderWithPayment, error) {
	if query.OrderID == 0 {
		return nil, fmt.Errorf("invalid order id")
	}

	order, err := h.repo.FindOrderByID(query.OrderID)
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}

	payment, err := h.repo.FindPaymentByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}

	return &OrderWithPayment{Order: order, Payment: payment}, nil
}
