package query

import (
	"fmt"

	"github.com/tair/membership-platform/internal/catalog/domain"
)

// GetEventQuery represents the query to get an event by ID
type GetEventQuery struct {
	ID uint
}

// GetEventHandler handles get event query
type GetEventHandler struct {
	repo domain.EventRepository
}

// NewGetEventHandler creates a new get event handler
func NewGetEventHandler(repo domain.EventRepository) *GetEventHandler {
	return &GetEventHandler{repo: repo}
}

// Handle executes the get event query
func (h *GetEventHandler) Handle(query GetEventQuery) (*domain.Event, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("invalid event id")
	}

	event, err := h.repo.FindByID(query.ID)
	if err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}

	return event, nil
}
