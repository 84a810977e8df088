package query

import (
	"fmt"

	"github.com/tair/membership-platform/internal/ledger/domain"
)

// ListMyOrdersQuery lists orders owned by a user
type ListMyOrdersQuery struct {
	UserID uint
	Limit  int
	Offset int
}

// ListMyOrdersHandler handles list my orders query
type ListMyOrdersHandler struct {
	repo domain.OrderRepository
}

// NewListMyOrdersHandler creates a new list my orders handler
func NewListMyOrdersHandler(repo domain.OrderRepository) *ListMyOrdersHandler {
	return &ListMyOrdersHandler{repo: repo}
}

// Handle executes the list my orders query
func (h *ListMyOrdersHandler) Handle(query ListMyOrdersQuery) ([]domain.Order, error) {
	if query.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	orders, err := h.repo.FindOrdersByUser(query.UserID, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}
