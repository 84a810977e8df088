package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/tair/membership-platform/internal/catalog/domain"
	ledgerdomain "github.com/tair/membership-platform/internal/ledger/domain"
	membershipdomain "github.com/tair/membership-platform/internal/membership/domain"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
)

// Offering kinds accepted at checkout
const (
	OfferingEvent      = "event"
	OfferingMembership = "membership"
)

// ValidateInput is the checkout request after the handler has resolved the
// actor. Prices never appear here: they are always computed server-side.
type ValidateInput struct {
	OfferingKind string
	OfferingID   uint
	Actor        ActorContext
	// LevelRef is the membership level the caller claims to hold, used for
	// member-discounted event pricing. It must match the actor's actual
	// active membership.
	LevelRef uint
}

// Quote is the validator's verdict: the resolved offering plus the
// server-computed price breakdown.
type Quote struct {
	OfferingKind string
	OrderType    string
	Event        *catalogdomain.Event
	Level        *catalogdomain.MembershipLevel

	Title       string
	Description string
	ImageURL    string

	BaseCents     int64
	DiscountCents int64
	PriceCents    int64
	Currency      string

	// StaleRegistrationID is a leftover pending registration from an earlier
	// aborted attempt by the same actor for the same event. The coordinator
	// cancels it before creating the replacement so the actor is never
	// locked out of retrying.
	StaleRegistrationID uint
	// StaleMembershipID is the membership equivalent.
	StaleMembershipID uint
}

// IsFree reports whether the quote settles without a gateway
func (q *Quote) IsFree() bool {
	return q.PriceCents == 0
}

// OfferingID returns the id of the resolved offering
func (q *Quote) OfferingID() uint {
	if q.Event != nil {
		return q.Event.ID
	}
	if q.Level != nil {
		return q.Level.ID
	}
	return 0
}

// Validator computes eligibility and pricing for a checkout attempt.
// It performs reads only; nothing is written on any path.
type Validator struct {
	events        catalogdomain.EventRepository
	levels        catalogdomain.LevelRepository
	memberships   membershipdomain.MembershipRepository
	registrations registrationdomain.RegistrationRepository
	currency      string
	now           func() time.Time
}

// NewValidator creates a Validator
func NewValidator(
	events catalogdomain.EventRepository,
	levels catalogdomain.LevelRepository,
	memberships membershipdomain.MembershipRepository,
	registrations registrationdomain.RegistrationRepository,
	currency string,
) *Validator {
	return &Validator{
		events:        events,
		levels:        levels,
		memberships:   memberships,
		registrations: registrations,
		currency:      currency,
		now:           time.Now,
	}
}

// Validate checks the offering, the actor and the declared level, and returns
// the priced quote. Every rejection is a *ValidationError.
func (v *Validator) Validate(input ValidateInput) (*Quote, error) {
	switch input.OfferingKind {
	case OfferingEvent:
		return v.validateEvent(input)
	case OfferingMembership:
		return v.validateMembership(input)
	default:
		return nil, validationErrorf("unknown offering kind %q", input.OfferingKind)
	}
}

func (v *Validator) validateEvent(input ValidateInput) (*Quote, error) {
	event, err := v.events.FindByID(input.OfferingID)
	if err != nil || event == nil {
		return nil, validationErrorf("event %d not found", input.OfferingID)
	}

	now := v.now()
	if !event.AcceptsRegistrations(now) {
		return nil, validationErrorf("event %q is not accepting registrations", event.Title)
	}

	actor := input.Actor
	if !actor.IsMember() && !actor.HasCompleteGuestInfo() {
		return nil, validationErrorf("guest checkout requires full name, email and phone")
	}

	quote := &Quote{
		OfferingKind: OfferingEvent,
		OrderType:    ledgerdomain.OrderTypeEventRegistration,
		Event:        event,
		Title:        event.Title,
		Description:  event.Description,
		ImageURL:     event.ImageURL,
		BaseCents:    event.BasePriceCents,
		Currency:     v.currency,
	}

	activeCount := int64(0)
	if event.HasCapacityCap() {
		activeCount, err = v.registrations.CountActiveByEvent(event.ID)
		if err != nil {
			return nil, err
		}
	}

	if actor.IsMember() {
		existing, err := v.registrations.FindActiveByEventAndUser(event.ID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.Status != registrationdomain.StatusPending {
				return nil, validationErrorf("already registered for event %q", event.Title)
			}
			// A pending leftover from an aborted attempt; the new attempt
			// supersedes it.
			quote.StaleRegistrationID = existing.ID
			activeCount--
		}

		membership, err := v.memberships.FindActiveByUser(actor.UserID)
		if err != nil {
			return nil, err
		}
		hasMembership := membership != nil && membership.IsCurrent(now)
		if input.LevelRef != 0 {
			if !hasMembership {
				return nil, validationErrorf("no active membership for the declared level")
			}
			if membership.LevelID != input.LevelRef {
				return nil, validationErrorf("declared membership level does not match the active membership")
			}
		}
		if hasMembership {
			quote.DiscountCents = event.MemberDiscountCents
		}
	} else if input.LevelRef != 0 {
		return nil, validationErrorf("membership pricing requires a member account")
	}

	if event.HasCapacityCap() && activeCount >= int64(event.Capacity) {
		return nil, validationErrorf("event %q is fully booked", event.Title)
	}

	quote.PriceCents = priceCents(quote.BaseCents, quote.DiscountCents)
	return quote, nil
}

func (v *Validator) validateMembership(input ValidateInput) (*Quote, error) {
	if !input.Actor.IsMember() {
		return nil, validationErrorf("membership purchase requires a member account")
	}

	level, err := v.levels.FindByID(input.OfferingID)
	if err != nil || level == nil {
		return nil, validationErrorf("membership level %d not found", input.OfferingID)
	}
	if !level.IsActive {
		return nil, validationErrorf("membership level %q is not available", level.Name)
	}

	now := v.now()
	current, err := v.memberships.FindActiveByUser(input.Actor.UserID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.IsCurrent(now) {
		return nil, validationErrorf("an active membership already exists")
	}

	quote := &Quote{
		OfferingKind: OfferingMembership,
		OrderType:    ledgerdomain.OrderTypeMembershipPurchase,
		Level:        level,
		Title:        level.Name,
		Description:  level.Description,
		BaseCents:    level.PriceCents,
		Currency:     v.currency,
	}

	history, err := v.memberships.FindByUserID(input.Actor.UserID, 100, 0)
	if err != nil {
		return nil, err
	}
	for i := range history {
		if history[i].Status == membershipdomain.StatusPending {
			if quote.StaleMembershipID == 0 {
				quote.StaleMembershipID = history[i].ID
			}
			continue
		}
		// Any settled membership in the past makes this a renewal.
		quote.OrderType = ledgerdomain.OrderTypeMembershipRenewal
	}

	quote.PriceCents = priceCents(quote.BaseCents, quote.DiscountCents)
	return quote, nil
}

// priceCents applies the discount to the base price, floored at zero
func priceCents(baseCents, discountCents int64) int64 {
	price := decimal.NewFromInt(baseCents).Sub(decimal.NewFromInt(discountCents))
	if price.IsNegative() {
		return 0
	}
	return price.IntPart()
}
