package command

import (
	"fmt"

	"github.com/tair/membership-platform/internal/registration/domain"
)

// MarkAttendedCommand marks a paid registration as attended (check-in)
type MarkAttendedCommand struct {
	PublicID string
}

// MarkAttendedHandler handles mark attended command
type MarkAttendedHandler struct {
	repo domain.RegistrationRepository
}

// NewMarkAttendedHandler creates a new mark attended handler
func NewMarkAttendedHandler(repo domain.RegistrationRepository) *MarkAttendedHandler {
	return &MarkAttendedHandler{repo: repo}
}

// Handle executes the mark attended command
func (h *MarkAttendedHandler) Handle(cmd MarkAttendedCommand) (*domain.Registration, error) {
	if cmd.PublicID == "" {
		return nil, fmt.Errorf("public_id is required")
	}

	reg, err := h.repo.FindByPublicID(cmd.PublicID)
	if err != nil {
		return nil, fmt.Errorf("registration not found: %w", err)
	}

	if reg.Status == domain.StatusAttended {
		return reg, nil
	}

	if !reg.CanTransitionTo(domain.StatusAttended) {
		return nil, fmt.Errorf("cannot mark registration in status %s as attended", reg.Status)
	}

	if err := h.repo.UpdateStatus(reg.ID, domain.StatusAttended); err != nil {
		return nil, fmt.Errorf("failed to update registration: %w", err)
	}

	reg.Status = domain.StatusAttended
	return reg, nil
}
