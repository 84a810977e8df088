package checkout

import (
	"context"
	"fmt"
	"time"

	ledgerdomain "github.com/tair/membership-platform/internal/ledger/domain"
	ledgercommand "github.com/tair/membership-platform/internal/ledger/usecase/command"
	membershipdomain "github.com/tair/membership-platform/internal/membership/domain"
	membershipcommand "github.com/tair/membership-platform/internal/membership/usecase/command"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
	registrationcommand "github.com/tair/membership-platform/internal/registration/usecase/command"
	"github.com/tair/membership-platform/kafka"
	"github.com/tair/membership-platform/pkg/logger"
)

// Record type discriminators carried in order metadata and events
const (
	RecordTypeRegistration = "registration"
	RecordTypeMembership   = "membership"
)

// ConfirmationPublisher emits a confirmation event after settlement.
// Publishing is fire-and-forget from the coordinator's perspective.
type ConfirmationPublisher interface {
	PublishCheckoutConfirmed(ctx context.Context, event kafka.CheckoutConfirmedEvent) error
}

// Config holds deployment-level checkout settings
type Config struct {
	// BaseURL is the public site URL used to build gateway redirect links
	BaseURL string
	// Currency is the single deployment currency, e.g. "HKD"
	Currency string
}

// CheckoutInput is the resolved checkout request
type CheckoutInput struct {
	OfferingKind string
	OfferingID   uint
	Actor        ActorContext
	LevelRef     uint
}

// CheckoutResult is returned to the HTTP handler. RedirectURL is empty for
// free checkouts; OrderNumber is empty for guests.
type CheckoutResult struct {
	PublicID    string `json:"public_id"`
	IsFree      bool   `json:"is_free"`
	RedirectURL string `json:"redirect_url,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// Coordinator drives a checkout attempt end to end: validate, create the
// domain record, record the ledger pair, then either settle synchronously
// (free) or open a gateway session (paid). Writes are strictly sequential:
// the gateway session's metadata must reference already-committed ids.
type Coordinator struct {
	validator *Validator

	createRegistration *registrationcommand.CreateRegistrationHandler
	cancelRegistration *registrationcommand.CancelRegistrationHandler

	createMembership *membershipcommand.CreateMembershipHandler
	cancelMembership *membershipcommand.CancelMembershipHandler

	createOrder   *ledgercommand.CreateOrderHandler
	updateOrder   *ledgercommand.UpdateOrderStatusHandler
	updatePayment *ledgercommand.UpdatePaymentStatusHandler
	attachRef     *ledgercommand.AttachProviderRefHandler

	gateway   Gateway
	publisher ConfirmationPublisher
	config    Config
}

// NewCoordinator wires the checkout coordinator
func NewCoordinator(
	validator *Validator,
	createRegistration *registrationcommand.CreateRegistrationHandler,
	cancelRegistration *registrationcommand.CancelRegistrationHandler,
	createMembership *membershipcommand.CreateMembershipHandler,
	cancelMembership *membershipcommand.CancelMembershipHandler,
	createOrder *ledgercommand.CreateOrderHandler,
	updateOrder *ledgercommand.UpdateOrderStatusHandler,
	updatePayment *ledgercommand.UpdatePaymentStatusHandler,
	attachRef *ledgercommand.AttachProviderRefHandler,
	gateway Gateway,
	publisher ConfirmationPublisher,
	config Config,
) *Coordinator {
	return &Coordinator{
		validator:          validator,
		createRegistration: createRegistration,
		cancelRegistration: cancelRegistration,
		createMembership:   createMembership,
		cancelMembership:   cancelMembership,
		createOrder:        createOrder,
		updateOrder:        updateOrder,
		updatePayment:      updatePayment,
		attachRef:          attachRef,
		gateway:            gateway,
		publisher:          publisher,
		config:             config,
	}
}

// Checkout executes one checkout attempt
func (c *Coordinator) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	quote, err := c.validator.Validate(ValidateInput{
		OfferingKind: input.OfferingKind,
		OfferingID:   input.OfferingID,
		Actor:        input.Actor,
		LevelRef:     input.LevelRef,
	})
	if err != nil {
		return nil, err
	}

	if err := c.supersedeStale(ctx, quote); err != nil {
		return nil, err
	}

	if quote.IsFree() {
		return c.settleFree(ctx, input.Actor, quote)
	}
	return c.openGatewaySession(ctx, input.Actor, quote)
}

// supersedeStale cancels a leftover pending record from an earlier aborted
// attempt so the actor can retry. The cancel also releases the capacity slot.
func (c *Coordinator) supersedeStale(ctx context.Context, quote *Quote) error {
	if quote.StaleRegistrationID != 0 {
		if err := c.cancelRegistration.Handle(registrationcommand.CancelRegistrationCommand{
			RegistrationID: quote.StaleRegistrationID,
		}); err != nil {
			return fmt.Errorf("failed to supersede stale registration %d: %w", quote.StaleRegistrationID, err)
		}
		logger.Info(ctx).
			Uint("registration_id", quote.StaleRegistrationID).
			Msg("Superseded stale pending registration")
	}
	if quote.StaleMembershipID != 0 {
		if err := c.cancelMembership.Handle(membershipcommand.CancelMembershipCommand{
			MembershipID: quote.StaleMembershipID,
		}); err != nil {
			return fmt.Errorf("failed to supersede stale membership %d: %w", quote.StaleMembershipID, err)
		}
		logger.Info(ctx).
			Uint("membership_id", quote.StaleMembershipID).
			Msg("Superseded stale pending membership")
	}
	return nil
}

// settleFree creates the record already settled and, for members, backs it
// with a zero-amount admin-settled ledger pair in the same request.
func (c *Coordinator) settleFree(ctx context.Context, actor ActorContext, quote *Quote) (*CheckoutResult, error) {
	recordID, publicID, err := c.createRecord(actor, quote, true)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		PublicID:    publicID,
		IsFree:      true,
		AmountCents: 0,
		Currency:    quote.Currency,
	}

	var orderID uint
	if actor.IsMember() {
		created, err := c.createOrder.Handle(ledgercommand.CreateOrderCommand{
			UserID:           actor.UserID,
			Type:             quote.OrderType,
			GrossAmountCents: 0,
			BaseAmountCents:  quote.BaseCents,
			DiscountCents:    quote.DiscountCents,
			Currency:         quote.Currency,
			Provider:         ledgerdomain.ProviderAdmin,
			Metadata: ledgerdomain.OrderMetadata{
				RecordType: recordType(quote.OfferingKind),
				RecordID:   recordID,
				PublicID:   publicID,
				OfferingID: quote.OfferingID(),
				ActorKind:  actor.Kind,
			},
		})
		if err != nil {
			return nil, &LedgerWriteError{Err: err}
		}

		now := time.Now()
		if err := c.updateOrder.Handle(ledgercommand.UpdateOrderStatusCommand{
			OrderID: created.Order.ID,
			Status:  ledgerdomain.OrderStatusPaid,
			PaidAt:  &now,
		}); err != nil {
			return nil, &LedgerWriteError{Err: err}
		}
		if err := c.updatePayment.Handle(ledgercommand.UpdatePaymentStatusCommand{
			PaymentID:   created.Payment.ID,
			Status:      ledgerdomain.PaymentStatusSucceeded,
			ProcessedAt: &now,
		}); err != nil {
			return nil, &LedgerWriteError{Err: err}
		}

		orderID = created.Order.ID
		result.OrderNumber = created.Order.OrderNumber
	}

	c.publishConfirmation(ctx, actor, quote, recordID, publicID, orderID, 0)

	return result, nil
}

// openGatewaySession creates the pending record, the pending ledger pair
// (member checkouts only) and the hosted gateway session, then returns its
// redirect URL. Everything stays pending until the gateway calls back.
func (c *Coordinator) openGatewaySession(ctx context.Context, actor ActorContext, quote *Quote) (*CheckoutResult, error) {
	recordID, publicID, err := c.createRecord(actor, quote, false)
	if err != nil {
		return nil, err
	}

	metadata := ledgerdomain.OrderMetadata{
		RecordType: recordType(quote.OfferingKind),
		RecordID:   recordID,
		PublicID:   publicID,
		OfferingID: quote.OfferingID(),
		ActorKind:  actor.Kind,
	}

	result := &CheckoutResult{
		PublicID:    publicID,
		AmountCents: quote.PriceCents,
		Currency:    quote.Currency,
	}

	var paymentID uint
	if actor.IsMember() {
		created, err := c.createOrder.Handle(ledgercommand.CreateOrderCommand{
			UserID:           actor.UserID,
			Type:             quote.OrderType,
			GrossAmountCents: quote.PriceCents,
			BaseAmountCents:  quote.BaseCents,
			DiscountCents:    quote.DiscountCents,
			Currency:         quote.Currency,
			Provider:         c.gateway.Name(),
			Metadata:         metadata,
		})
		if err != nil {
			return nil, &LedgerWriteError{Err: err}
		}
		metadata.OrderID = created.Order.ID
		metadata.PaymentID = created.Payment.ID
		paymentID = created.Payment.ID
		result.OrderNumber = created.Order.OrderNumber
	}

	encoded, err := metadata.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode session metadata: %w", err)
	}

	session, err := c.gateway.CreateCheckoutSession(ctx, SessionRequest{
		Item: LineItem{
			Name:            quote.Title,
			Description:     quote.Description,
			UnitAmountCents: quote.PriceCents,
			Currency:        quote.Currency,
			ImageURL:        quote.ImageURL,
		},
		SuccessURL:    fmt.Sprintf("%s/checkout/success?ref=%s", c.config.BaseURL, publicID),
		CancelURL:     fmt.Sprintf("%s/checkout/cancel?ref=%s", c.config.BaseURL, publicID),
		Metadata:      encoded,
		ReferenceID:   publicID,
		CustomerEmail: actor.Email,
	})
	if err != nil {
		// Record, order and payment all stay pending; a retry supersedes
		// the pending record and reconciliation never sees this attempt.
		return nil, &GatewaySessionError{Err: err}
	}

	if paymentID != 0 {
		// Best-effort: reconciliation matches on session metadata even if
		// the reference never lands on the payment row.
		if err := c.attachRef.Handle(ledgercommand.AttachProviderRefCommand{
			PaymentID:       paymentID,
			ProviderRef:     session.ID,
			ProviderPayload: session.Payload,
		}); err != nil {
			logger.Warn(ctx).
				Err(err).
				Uint("payment_id", paymentID).
				Str("provider_ref", session.ID).
				Msg("Failed to attach gateway session reference to payment")
		}
	}

	result.RedirectURL = session.URL
	return result, nil
}

// createRecord persists the domain record. Free checkouts create it already
// settled; paid checkouts create it pending.
func (c *Coordinator) createRecord(actor ActorContext, quote *Quote, settled bool) (uint, string, error) {
	switch quote.OfferingKind {
	case OfferingEvent:
		status := registrationdomain.StatusPending
		if settled {
			status = registrationdomain.StatusPaid
		}
		cmd := registrationcommand.CreateRegistrationCommand{
			EventID:       quote.Event.ID,
			PriceCents:    quote.PriceCents,
			Currency:      quote.Currency,
			InitialStatus: status,
			Capacity:      quote.Event.Capacity,
		}
		if actor.IsMember() {
			userID := actor.UserID
			cmd.UserID = &userID
		} else {
			cmd.GuestName = actor.FullName
			cmd.GuestEmail = actor.Email
			cmd.GuestPhone = actor.Phone
		}
		reg, err := c.createRegistration.Handle(cmd)
		if err != nil {
			return 0, "", err
		}
		return reg.ID, reg.PublicID, nil

	case OfferingMembership:
		status := membershipdomain.StatusPending
		if settled {
			status = membershipdomain.StatusActive
		}
		membership, err := c.createMembership.Handle(membershipcommand.CreateMembershipCommand{
			UserID:         actor.UserID,
			LevelID:        quote.Level.ID,
			PriceCents:     quote.PriceCents,
			Currency:       quote.Currency,
			InitialStatus:  status,
			DurationMonths: quote.Level.DurationMonths,
		})
		if err != nil {
			return 0, "", err
		}
		return membership.ID, membership.PublicID, nil

	default:
		return 0, "", fmt.Errorf("unknown offering kind %q", quote.OfferingKind)
	}
}

// publishConfirmation emits the confirmation event. Failures are logged and
// never fail the checkout; the settlement is already valid.
func (c *Coordinator) publishConfirmation(ctx context.Context, actor ActorContext, quote *Quote, recordID uint, publicID string, orderID uint, amountCents int64) {
	if c.publisher == nil {
		return
	}
	event := kafka.CheckoutConfirmedEvent{
		RecordType:     recordType(quote.OfferingKind),
		RecordID:       recordID,
		PublicID:       publicID,
		OfferingTitle:  quote.Title,
		RecipientName:  actor.FullName,
		RecipientEmail: actor.Email,
		OrderID:        orderID,
		AmountCents:    amountCents,
		Currency:       quote.Currency,
	}
	if err := c.publisher.PublishCheckoutConfirmed(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("public_id", publicID).
			Msg("Failed to publish checkout confirmation")
	}
}

func recordType(offeringKind string) string {
	if offeringKind == OfferingMembership {
		return RecordTypeMembership
	}
	return RecordTypeRegistration
}
