package command

import (
	"fmt"
	"time"

	"github.com/tair/membership-platform/internal/membership/domain"
)

// ActivateMembershipCommand marks a pending membership as active and stamps
// its validity window
type ActivateMembershipCommand struct {
	MembershipID   uint
	DurationMonths int
}

// ActivateMembershipHandler handles activate membership command
type ActivateMembershipHandler struct {
	repo domain.MembershipRepository
}

// NewActivateMembershipHandler creates a new activate membership handler
func NewActivateMembershipHandler(repo domain.MembershipRepository) *ActivateMembershipHandler {
	return &ActivateMembershipHandler{repo: repo}
}

// Handle executes the activate membership command. Re-activating an already
// active membership is a no-op so gateway reconciliation can be replayed.
func (h *ActivateMembershipHandler) Handle(cmd ActivateMembershipCommand) error {
	if cmd.MembershipID == 0 {
		return fmt.Errorf("membership_id is required")
	}
	if cmd.DurationMonths <= 0 {
		cmd.DurationMonths = 12
	}

	membership, err := h.repo.FindByID(cmd.MembershipID)
	if err != nil {
		return fmt.Errorf("membership not found: %w", err)
	}

	if membership.Status == domain.StatusActive {
		return nil
	}

	if membership.Status != domain.StatusPending {
		return fmt.Errorf("cannot activate membership in status %s", membership.Status)
	}

	now := time.Now()
	return h.repo.Activate(cmd.MembershipID, now, now.AddDate(0, cmd.DurationMonths, 0))
}
