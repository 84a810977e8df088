package command

import (
	"fmt"
	"time"

	"github.com/tair/membership-platform/internal/catalog/domain"
)

// CreateEventCommand represents the command to create an event
type CreateEventCommand struct {
	Title               string
	Description         string
	Location            string
	ImageURL            string
	StartsAt            time.Time
	EndsAt              time.Time
	BasePriceCents      int64
	MemberDiscountCents int64
	Capacity            int
}

// CreateEventHandler handles create event command
type CreateEventHandler struct {
	repo domain.EventRepository
}

// NewCreateEventHandler creates a new create event handler
func NewCreateEventHandler(repo domain.EventRepository) *CreateEventHandler {
	return &CreateEventHandler{repo: repo}
}

// Handle executes the create event command
func (h *CreateEventHandler) Handle(cmd CreateEventCommand) (*domain.Event, error) {
	if cmd.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if cmd.StartsAt.IsZero() {
		return nil, fmt.Errorf("starts_at is required")
	}
	if cmd.BasePriceCents < 0 {
		return nil, fmt.Errorf("base price cannot be negative")
	}
	if cmd.MemberDiscountCents < 0 {
		return nil, fmt.Errorf("member discount cannot be negative")
	}
	if cmd.Capacity < 0 {
		return nil, fmt.Errorf("capacity cannot be negative")
	}

	event := &domain.Event{
		Title:               cmd.Title,
		Description:         cmd.Description,
		Location:            cmd.Location,
		ImageURL:            cmd.ImageURL,
		StartsAt:            cmd.StartsAt,
		EndsAt:              cmd.EndsAt,
		BasePriceCents:      cmd.BasePriceCents,
		MemberDiscountCents: cmd.MemberDiscountCents,
		Capacity:            cmd.Capacity,
		Status:              domain.EventStatusPublished,
	}

	if err := h.repo.Create(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}
