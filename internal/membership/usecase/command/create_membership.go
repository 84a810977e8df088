package command

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tair/membership-platform/internal/membership/domain"
)

// CreateMembershipCommand represents the command to create a membership
// record. InitialStatus is "active" for free levels settled synchronously and
// "pending" for purchases awaiting gateway payment.
type CreateMembershipCommand struct {
	UserID         uint
	LevelID        uint
	PriceCents     int64
	Currency       string
	InitialStatus  string
	DurationMonths int
}

// CreateMembershipHandler handles create membership command
type CreateMembershipHandler struct {
	repo domain.MembershipRepository
}

// NewCreateMembershipHandler creates a new create membership handler
func NewCreateMembershipHandler(repo domain.MembershipRepository) *CreateMembershipHandler {
	return &CreateMembershipHandler{repo: repo}
}

// Handle executes the create membership command
func (h *CreateMembershipHandler) Handle(cmd CreateMembershipCommand) (*domain.Membership, error) {
	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if cmd.LevelID == 0 {
		return nil, fmt.Errorf("level_id is required")
	}
	if cmd.InitialStatus != domain.StatusPending && cmd.InitialStatus != domain.StatusActive {
		return nil, fmt.Errorf("invalid initial status: %s", cmd.InitialStatus)
	}
	if cmd.PriceCents < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if cmd.DurationMonths <= 0 {
		cmd.DurationMonths = 12
	}

	membership := &domain.Membership{
		PublicID:   fmt.Sprintf("MEM-%s", uuid.New().String()),
		UserID:     cmd.UserID,
		LevelID:    cmd.LevelID,
		PriceCents: cmd.PriceCents,
		Currency:   cmd.Currency,
		Status:     cmd.InitialStatus,
	}

	if cmd.InitialStatus == domain.StatusActive {
		now := time.Now()
		expires := now.AddDate(0, cmd.DurationMonths, 0)
		membership.StartsAt = &now
		membership.ExpiresAt = &expires
	}

	if err := h.repo.Create(membership); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	return membership, nil
}
