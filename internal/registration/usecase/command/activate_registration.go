package command

import (
	"fmt"

	"github.com/tair/membership-platform/internal/registration/domain"
)

// ActivateRegistrationCommand marks a pending registration as paid
type ActivateRegistrationCommand struct {
	RegistrationID uint
}

// ActivateRegistrationHandler handles activate registration command
type ActivateRegistrationHandler struct {
	repo domain.RegistrationRepository
}

// NewActivateRegistrationHandler creates a new activate registration handler
func NewActivateRegistrationHandler(repo domain.RegistrationRepository) *ActivateRegistrationHandler {
	return &ActivateRegistrationHandler{repo: repo}
}

// Handle executes the activate registration command. Re-activating an already
// paid registration is a no-op so gateway reconciliation can be replayed.
func (h *ActivateRegistrationHandler) Handle(cmd ActivateRegistrationCommand) error {
	if cmd.RegistrationID == 0 {
		return fmt.Errorf("registration_id is required")
	}

	reg, err := h.repo.FindByID(cmd.RegistrationID)
	if err != nil {
		return fmt.Errorf("registration not found: %w", err)
	}

	if reg.Status == domain.StatusPaid || reg.Status == domain.StatusAttended {
		return nil
	}

	if !reg.CanTransitionTo(domain.StatusPaid) {
		return fmt.Errorf("cannot activate registration in status %s", reg.Status)
	}

	return h.repo.UpdateStatus(cmd.RegistrationID, domain.StatusPaid)
}
