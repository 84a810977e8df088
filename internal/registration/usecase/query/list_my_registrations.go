package query

import (
	"fmt"

	"github.com/tair/membership-platform/internal/registration/domain"
)

// ListMyRegistrationsQuery lists registrations owned by a user
type ListMyRegistrationsQuery struct {
	UserID uint
	Limit  int
	Offset int
}

// ListMyRegistrationsHandler handles list my registrations query
type ListMyRegistrationsHandler struct {
	repo domain.RegistrationRepository
}

// NewListMyRegistrationsHandler creates a new list my registrations handler
func NewListMyRegistrationsHandler(repo domain.RegistrationRepository) *ListMyRegistrationsHandler {
	return &ListMyRegistrationsHandler{repo: repo}
}

// Handle executes the list my registrations query
func (h *ListMyRegistrationsHandler) Handle(query ListMyRegistrationsQuery) ([]domain.Registration, error) {
	if query.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	regs, err := h.repo.FindByUserID(query.UserID, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	return regs, nil
}
