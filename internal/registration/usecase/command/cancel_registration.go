package command

import (
	"fmt"

	"github.com/tair/membership-platform/internal/registration/domain"
)

// CancelRegistrationCommand cancels a registration and releases its capacity
// slot (cancelled rows no longer count against the event cap)
type CancelRegistrationCommand struct {
	RegistrationID uint
}

// CancelRegistrationHandler handles cancel registration command
type CancelRegistrationHandler struct {
	repo domain.RegistrationRepository
}

// NewCancelRegistrationHandler creates a new cancel registration handler
func NewCancelRegistrationHandler(repo domain.RegistrationRepository) *CancelRegistrationHandler {
	return &CancelRegistrationHandler{repo: repo}
}

// Handle executes the cancel registration command
func (h *CancelRegistrationHandler) Handle(cmd CancelRegistrationCommand) error {
	if cmd.RegistrationID == 0 {
		return fmt.Errorf("registration_id is required")
	}

	reg, err := h.repo.FindByID(cmd.RegistrationID)
	if err != nil {
		return fmt.Errorf("registration not found: %w", err)
	}

	if reg.Status == domain.StatusCancelled {
		return nil
	}

	if !reg.CanTransitionTo(domain.StatusCancelled) {
		return fmt.Errorf("cannot cancel registration in status %s", reg.Status)
	}

	return h.repo.UpdateStatus(cmd.RegistrationID, domain.StatusCancelled)
}
