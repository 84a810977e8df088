package command

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tair/membership-platform/internal/registration/domain"
)

// CreateRegistrationCommand represents the command to create a registration
// record. InitialStatus is "paid" for free checkouts settled synchronously and
// "pending" for checkouts awaiting gateway payment.
type CreateRegistrationCommand struct {
	EventID       uint
	UserID        *uint
	GuestName     string
	GuestEmail    string
	GuestPhone    string
	PriceCents    int64
	Currency      string
	InitialStatus string
	Capacity      int // 0 = unlimited
}

// CreateRegistrationHandler handles create registration command
type CreateRegistrationHandler struct {
	repo domain.RegistrationRepository
}

// NewCreateRegistrationHandler creates a new create registration handler
func NewCreateRegistrationHandler(repo domain.RegistrationRepository) *CreateRegistrationHandler {
	return &CreateRegistrationHandler{repo: repo}
}

// Handle executes the create registration command
func (h *CreateRegistrationHandler) Handle(cmd CreateRegistrationCommand) (*domain.Registration, error) {
	if cmd.EventID == 0 {
		return nil, fmt.Errorf("event_id is required")
	}
	if cmd.UserID == nil && cmd.GuestEmail == "" {
		return nil, fmt.Errorf("either a user or guest contact info is required")
	}
	if cmd.InitialStatus != domain.StatusPending && cmd.InitialStatus != domain.StatusPaid {
		return nil, fmt.Errorf("invalid initial status: %s", cmd.InitialStatus)
	}
	if cmd.PriceCents < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}

	reg := &domain.Registration{
		// The public id is used in URLs, QR codes and emails; it must not be
		// guessable and must not leak the numeric primary key.
		PublicID:   fmt.Sprintf("REG-%s", uuid.New().String()),
		EventID:    cmd.EventID,
		UserID:     cmd.UserID,
		GuestName:  cmd.GuestName,
		GuestEmail: cmd.GuestEmail,
		GuestPhone: cmd.GuestPhone,
		PriceCents: cmd.PriceCents,
		Currency:   cmd.Currency,
		Status:     cmd.InitialStatus,
	}

	if err := h.repo.Create(reg, cmd.Capacity); err != nil {
		return nil, err
	}

	return reg, nil
}
