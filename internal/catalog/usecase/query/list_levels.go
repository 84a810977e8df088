package query

import (
	"fmt"

	"github.com/tair/membership-platform/internal/catalog/domain"
)

// ListLevelsQuery represents the query to list membership levels
type ListLevelsQuery struct {
	Limit  int
	Offset int
}

// ListLevelsHandler handles list levels query
type ListLevelsHandler struct {
	repo domain.LevelRepository
}

// NewListLevelsHandler creates a new list levels handler
func NewListLevelsHandler(repo domain.LevelRepository) *ListLevelsHandler {
	return &ListLevelsHandler{repo: repo}
}

// Handle executes the list levels query
func (h *ListLevelsHandler) Handle(query ListLevelsQuery) ([]domain.MembershipLevel, error) {
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	levels, err := h.repo.FindAll(query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership levels: %w", err)
	}

	return levels, nil
}
