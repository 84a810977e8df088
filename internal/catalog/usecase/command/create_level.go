package command

import (
	"fmt"

	"github.com/tair/membership-platform/internal/catalog/domain"
)

// CreateLevelCommand represents the command to create a membership level
type CreateLevelCommand struct {
	Name           string
	Description    string
	PriceCents     int64
	DurationMonths int
}

// CreateLevelHandler handles create level command
type CreateLevelHandler struct {
	repo domain.LevelRepository
}

// NewCreateLevelHandler creates a new create level handler
func NewCreateLevelHandler(repo domain.LevelRepository) *CreateLevelHandler {
	return &CreateLevelHandler{repo: repo}
}

// Handle executes the create level command
func (h *CreateLevelHandler) Handle(cmd CreateLevelCommand) (*domain.MembershipLevel, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if cmd.PriceCents < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if cmd.DurationMonths <= 0 {
		cmd.DurationMonths = 12
	}

	level := &domain.MembershipLevel{
		Name:           cmd.Name,
		Description:    cmd.Description,
		PriceCents:     cmd.PriceCents,
		DurationMonths: cmd.DurationMonths,
		IsActive:       true,
	}

	if err := h.repo.Create(level); err != nil {
		return nil, fmt.Errorf("failed to create membership level: %w", err)
	}

	return level, nil
}
