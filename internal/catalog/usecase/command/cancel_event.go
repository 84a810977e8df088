package command

import (
	"fmt"

	"github.com/tair/membership-platform/internal/catalog/domain"
)

// CancelEventCommand represents the command to cancel an event
type CancelEventCommand struct {
	EventID uint
}

// CancelEventHandler handles cancel event command
type CancelEventHandler struct {
	repo domain.EventRepository
}

// NewCancelEventHandler creates a new cancel event handler
func NewCancelEventHandler(repo domain.EventRepository) *CancelEventHandler {
	return &CancelEventHandler{repo: repo}
}

// Handle executes the cancel event command
func (h *CancelEventHandler) Handle(cmd CancelEventCommand) error {
	if cmd.EventID == 0 {
		return fmt.Errorf("event_id is required")
	}

	event, err := h.repo.FindByID(cmd.EventID)
	if err != nil {
		return fmt.Errorf("event not found: %w", err)
	}

	if event.Status == domain.EventStatusCancelled {
		return nil
	}

	if err := h.repo.UpdateStatus(cmd.EventID, domain.EventStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel event: %w", err)
	}

	return nil
}
