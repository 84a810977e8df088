package query

import (
	"fmt"

	"github.com/tair/membership-platform/internal/catalog/domain"
)

// ListEventsQuery represents the query to list events
type ListEventsQuery struct {
	Limit        int
	Offset       int
	UpcomingOnly bool
}

// ListEventsHandler handles list events query
type ListEventsHandler struct {
	repo domain.EventRepository
}

// NewListEventsHandler creates a new list events handler
func NewListEventsHandler(repo domain.EventRepository) *ListEventsHandler {
	return &ListEventsHandler{repo: repo}
}

// Handle executes the list events query
func (h *ListEventsHandler) Handle(query ListEventsQuery) ([]domain.Event, error) {
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	var (
		events []domain.Event
		err    error
	)
	if query.UpcomingOnly {
		events, err = h.repo.FindUpcoming(query.Limit, query.Offset)
	} else {
		events, err = h.repo.FindAll(query.Limit, query.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}
