package query

import (
	"fmt"

	"github.com/tair/membership-platform/internal/registration/domain"
)

// GetRegistrationQuery looks up a registration by its public identifier
type GetRegistrationQuery struct {
	PublicID string
}

// GetRegistrationHandler handles get registration query
type GetRegistrationHandler struct {
	repo domain.RegistrationRepository
}

// NewGetRegistrationHandler creates a new get registration handler
func NewGetRegistrationHandler(repo domain.RegistrationRepository) *GetRegistrationHandler {
	return &GetRegistrationHandler{repo: repo}
}

// Handle executes the get registration query
func (h *GetRegistrationHandler) Handle(query GetRegistrationQuery) (*domain.Registration, error) {
	if query.PublicID == "" {
		return nil, fmt.Errorf("public_id is required")
	}

	reg, err := h.repo.FindByPublicID(query.PublicID)
	if err != nil {
		return nil, fmt.Errorf("registration not found: %w", err)
	}

	return reg, nil
}
