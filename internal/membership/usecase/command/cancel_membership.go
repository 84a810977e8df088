package command

import (
	"fmt"

	"github.com/tair/membership-platform/internal/membership/domain"
)

// CancelMembershipCommand cancels a pending or active membership
type CancelMembershipCommand struct {
	MembershipID uint
}

// CancelMembershipHandler handles cancel membership command
type CancelMembershipHandler struct {
	repo domain.MembershipRepository
}

// NewCancelMembershipHandler creates a new cancel membership handler
func NewCancelMembershipHandler(repo domain.MembershipRepository) *CancelMembershipHandler {
	return &CancelMembershipHandler{repo: repo}
}

// Handle executes the cancel membership command
func (h *CancelMembershipHandler) Handle(cmd CancelMembershipCommand) error {
	if cmd.MembershipID == 0 {
		return fmt.Errorf("membership_id is required")
	}

	membership, err := h.repo.FindByID(cmd.MembershipID)
	if err != nil {
		return fmt.Errorf("membership not found: %w", err)
	}

	if membership.Status == domain.StatusCancelled {
		return nil
	}

	if membership.Status == domain.StatusExpired {
		return fmt.Errorf("cannot cancel membership in status %s", membership.Status)
	}

	return h.repo.UpdateStatus(cmd.MembershipID, domain.StatusCancelled)
}
