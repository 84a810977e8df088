package command

import (
	"context"
	"fmt"
	"time"

	catalogdomain "github.com/tair/membership-platform/internal/catalog/domain"
	"github.com/tair/membership-platform/internal/checkout"
	ledgerdomain "github.com/tair/membership-platform/internal/ledger/domain"
	ledgercommand "github.com/tair/membership-platform/internal/ledger/usecase/command"
	memberdomain "github.com/tair/membership-platform/internal/member/domain"
	membershipdomain "github.com/tair/membership-platform/internal/membership/domain"
	membershipcommand "github.com/tair/membership-platform/internal/membership/usecase/command"
	"github.com/tair/membership-platform/internal/reconcile/domain"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
	registrationcommand "github.com/tair/membership-platform/internal/registration/usecase/command"
	"github.com/tair/membership-platform/kafka"
	"github.com/tair/membership-platform/pkg/logger"
)

// Gateway event outcomes after provider-specific event types are mapped
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// ReconcilePaymentCommand is a gateway callback normalized by the webhook
// handler. Metadata is the JSON the coordinator embedded in the session.
type ReconcilePaymentCommand struct {
	Provider        string
	ProviderEventID string
	EventType       string
	Outcome         string
	ProviderRef     string
	Metadata        string
	RawPayload      string
}

// ReconcilePaymentHandler applies a gateway payment event to the ledger and
// the domain record. Processing is idempotent twice over: the webhook event
// table rejects redelivered events, and every status transition below no-ops
// when the target status is already set.
type ReconcilePaymentHandler struct {
	webhooks domain.WebhookEventRepository

	updateOrder   *ledgercommand.UpdateOrderStatusHandler
	updatePayment *ledgercommand.UpdatePaymentStatusHandler

	activateRegistration *registrationcommand.ActivateRegistrationHandler
	cancelRegistration   *registrationcommand.CancelRegistrationHandler
	activateMembership   *membershipcommand.ActivateMembershipHandler
	cancelMembership     *membershipcommand.CancelMembershipHandler

	registrations registrationdomain.RegistrationRepository
	memberships   membershipdomain.MembershipRepository
	events        catalogdomain.EventRepository
	levels        catalogdomain.LevelRepository
	users         memberdomain.UserRepository

	publisher checkout.ConfirmationPublisher
}

// NewReconcilePaymentHandler creates a new reconcile payment handler
func NewReconcilePaymentHandler(
	webhooks domain.WebhookEventRepository,
	updateOrder *ledgercommand.UpdateOrderStatusHandler,
	updatePayment *ledgercommand.UpdatePaymentStatusHandler,
	activateRegistration *registrationcommand.ActivateRegistrationHandler,
	cancelRegistration *registrationcommand.CancelRegistrationHandler,
	activateMembership *membershipcommand.ActivateMembershipHandler,
	cancelMembership *membershipcommand.CancelMembershipHandler,
	registrations registrationdomain.RegistrationRepository,
	memberships membershipdomain.MembershipRepository,
	events catalogdomain.EventRepository,
	levels catalogdomain.LevelRepository,
	users memberdomain.UserRepository,
	publisher checkout.ConfirmationPublisher,
) *ReconcilePaymentHandler {
	return &ReconcilePaymentHandler{
		webhooks:             webhooks,
		updateOrder:          updateOrder,
		updatePayment:        updatePayment,
		activateRegistration: activateRegistration,
		cancelRegistration:   cancelRegistration,
		activateMembership:   activateMembership,
		cancelMembership:     cancelMembership,
		registrations:        registrations,
		memberships:          memberships,
		events:               events,
		levels:               levels,
		users:                users,
		publisher:            publisher,
	}
}

// Handle processes one gateway event. A returned error means the event could
// not be applied; it is recorded as flagged for manual review and the caller
// still acknowledges the gateway so it stops redelivering.
func (h *ReconcilePaymentHandler) Handle(ctx context.Context, cmd ReconcilePaymentCommand) error {
	if cmd.ProviderEventID == "" {
		return fmt.Errorf("provider_event_id is required")
	}

	record, err := h.dedupe(ctx, cmd)
	if err != nil {
		return err
	}
	if record == nil {
		// Already processed; redelivery is a no-op.
		return nil
	}

	if err := h.apply(ctx, cmd); err != nil {
		record.Status = domain.StatusFlagged
		record.Error = err.Error()
		if updateErr := h.webhooks.Update(record); updateErr != nil {
			logger.Error(ctx).Err(updateErr).
				Str("provider_event_id", cmd.ProviderEventID).
				Msg("Failed to flag webhook event")
		}
		return err
	}

	now := time.Now()
	record.Status = domain.StatusProcessed
	record.ProcessedAt = &now
	record.Error = ""
	if err := h.webhooks.Update(record); err != nil {
		// The transitions above are idempotent, so losing the processed mark
		// only costs a wasted replay.
		logger.Error(ctx).Err(err).
			Str("provider_event_id", cmd.ProviderEventID).
			Msg("Failed to mark webhook event as processed")
	}

	return nil
}

// dedupe records the event, returning nil when it was already processed
func (h *ReconcilePaymentHandler) dedupe(ctx context.Context, cmd ReconcilePaymentCommand) (*domain.WebhookEvent, error) {
	existing, err := h.webhooks.FindByProviderEventID(cmd.Provider, cmd.ProviderEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up webhook event: %w", err)
	}
	if existing != nil {
		if existing.Status == domain.StatusProcessed {
			logger.Info(ctx).
				Str("provider", cmd.Provider).
				Str("provider_event_id", cmd.ProviderEventID).
				Msg("Skipping already processed webhook event")
			return nil, nil
		}
		// Received or flagged earlier; retry processing on this row.
		return existing, nil
	}

	record := &domain.WebhookEvent{
		Provider:        cmd.Provider,
		ProviderEventID: cmd.ProviderEventID,
		EventType:       cmd.EventType,
		Payload:         cmd.RawPayload,
		Status:          domain.StatusReceived,
	}
	if err := h.webhooks.Create(record); err != nil {
		// A concurrent delivery may have won the unique index race.
		existing, findErr := h.webhooks.FindByProviderEventID(cmd.Provider, cmd.ProviderEventID)
		if findErr == nil && existing != nil {
			if existing.Status == domain.StatusProcessed {
				return nil, nil
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to record webhook event: %w", err)
	}
	return record, nil
}

func (h *ReconcilePaymentHandler) apply(ctx context.Context, cmd ReconcilePaymentCommand) error {
	meta, err := ledgerdomain.DecodeOrderMetadata(cmd.Metadata)
	if err != nil {
		return fmt.Errorf("malformed event metadata: %w", err)
	}
	if meta.RecordID == 0 {
		return fmt.Errorf("event metadata resolves to no record")
	}

	switch cmd.Outcome {
	case OutcomeSucceeded:
		return h.applySucceeded(ctx, cmd, meta)
	case OutcomeFailed:
		return h.applyFailed(ctx, meta)
	default:
		return fmt.Errorf("unknown event outcome %q", cmd.Outcome)
	}
}

func (h *ReconcilePaymentHandler) applySucceeded(ctx context.Context, cmd ReconcilePaymentCommand, meta ledgerdomain.OrderMetadata) error {
	now := time.Now()

	if meta.PaymentID != 0 {
		if err := h.updatePayment.Handle(ledgercommand.UpdatePaymentStatusCommand{
			PaymentID:       meta.PaymentID,
			Status:          ledgerdomain.PaymentStatusSucceeded,
			ProcessedAt:     &now,
			ProviderRef:     cmd.ProviderRef,
			ProviderPayload: cmd.RawPayload,
		}); err != nil {
			return fmt.Errorf("failed to settle payment %d: %w", meta.PaymentID, err)
		}
	}
	if meta.OrderID != 0 {
		if err := h.updateOrder.Handle(ledgercommand.UpdateOrderStatusCommand{
			OrderID: meta.OrderID,
			Status:  ledgerdomain.OrderStatusPaid,
			PaidAt:  &now,
		}); err != nil {
			return fmt.Errorf("failed to settle order %d: %w", meta.OrderID, err)
		}
	}

	switch meta.RecordType {
	case checkout.RecordTypeRegistration:
		reg, err := h.registrations.FindByID(meta.RecordID)
		if err != nil {
			return fmt.Errorf("registration %d not found: %w", meta.RecordID, err)
		}
		alreadySettled := reg.Status == registrationdomain.StatusPaid || reg.Status == registrationdomain.StatusAttended
		if err := h.activateRegistration.Handle(registrationcommand.ActivateRegistrationCommand{
			RegistrationID: meta.RecordID,
		}); err != nil {
			return fmt.Errorf("failed to activate registration %d: %w", meta.RecordID, err)
		}
		if !alreadySettled {
			h.publishRegistrationConfirmation(ctx, reg, meta)
		}
		return nil

	case checkout.RecordTypeMembership:
		membership, err := h.memberships.FindByID(meta.RecordID)
		if err != nil {
			return fmt.Errorf("membership %d not found: %w", meta.RecordID, err)
		}
		durationMonths := 0
		if level, err := h.levels.FindByID(membership.LevelID); err == nil && level != nil {
			durationMonths = level.DurationMonths
		}
		alreadySettled := membership.Status == membershipdomain.StatusActive
		if err := h.activateMembership.Handle(membershipcommand.ActivateMembershipCommand{
			MembershipID:   meta.RecordID,
			DurationMonths: durationMonths,
		}); err != nil {
			return fmt.Errorf("failed to activate membership %d: %w", meta.RecordID, err)
		}
		if !alreadySettled {
			h.publishMembershipConfirmation(ctx, membership, meta)
		}
		return nil

	default:
		return fmt.Errorf("unknown record type %q", meta.RecordType)
	}
}

func (h *ReconcilePaymentHandler) applyFailed(ctx context.Context, meta ledgerdomain.OrderMetadata) error {
	now := time.Now()

	if meta.PaymentID != 0 {
		if err := h.updatePayment.Handle(ledgercommand.UpdatePaymentStatusCommand{
			PaymentID:   meta.PaymentID,
			Status:      ledgerdomain.PaymentStatusFailed,
			ProcessedAt: &now,
		}); err != nil {
			return fmt.Errorf("failed to fail payment %d: %w", meta.PaymentID, err)
		}
	}
	if meta.OrderID != 0 {
		if err := h.updateOrder.Handle(ledgercommand.UpdateOrderStatusCommand{
			OrderID: meta.OrderID,
			Status:  ledgerdomain.OrderStatusFailed,
		}); err != nil {
			return fmt.Errorf("failed to fail order %d: %w", meta.OrderID, err)
		}
	}

	// Cancelling releases the capacity slot the pending record was holding.
	switch meta.RecordType {
	case checkout.RecordTypeRegistration:
		if err := h.cancelRegistration.Handle(registrationcommand.CancelRegistrationCommand{
			RegistrationID: meta.RecordID,
		}); err != nil {
			return fmt.Errorf("failed to cancel registration %d: %w", meta.RecordID, err)
		}
	case checkout.RecordTypeMembership:
		if err := h.cancelMembership.Handle(membershipcommand.CancelMembershipCommand{
			MembershipID: meta.RecordID,
		}); err != nil {
			return fmt.Errorf("failed to cancel membership %d: %w", meta.RecordID, err)
		}
	default:
		return fmt.Errorf("unknown record type %q", meta.RecordType)
	}

	logger.Info(ctx).
		Str("record_type", meta.RecordType).
		Uint("record_id", meta.RecordID).
		Msg("Cancelled record after failed gateway payment")
	return nil
}

func (h *ReconcilePaymentHandler) publishRegistrationConfirmation(ctx context.Context, reg *registrationdomain.Registration, meta ledgerdomain.OrderMetadata) {
	if h.publisher == nil {
		return
	}

	name := reg.GuestName
	email := reg.GuestEmail
	if reg.UserID != nil {
		if user, err := h.users.FindByID(*reg.UserID); err == nil {
			name = user.FullName
			email = user.Email
		}
	}

	title := ""
	if event, err := h.events.FindByID(reg.EventID); err == nil && event != nil {
		title = event.Title
	}

	h.publish(ctx, kafka.CheckoutConfirmedEvent{
		RecordType:     checkout.RecordTypeRegistration,
		RecordID:       reg.ID,
		PublicID:       reg.PublicID,
		OfferingTitle:  title,
		RecipientName:  name,
		RecipientEmail: email,
		OrderID:        meta.OrderID,
		AmountCents:    reg.PriceCents,
		Currency:       reg.Currency,
	})
}

func (h *ReconcilePaymentHandler) publishMembershipConfirmation(ctx context.Context, membership *membershipdomain.Membership, meta ledgerdomain.OrderMetadata) {
	if h.publisher == nil {
		return
	}

	name := ""
	email := ""
	if user, err := h.users.FindByID(membership.UserID); err == nil {
		name = user.FullName
		email = user.Email
	}

	title := ""
	if level, err := h.levels.FindByID(membership.LevelID); err == nil && level != nil {
		title = level.Name
	}

	h.publish(ctx, kafka.CheckoutConfirmedEvent{
		RecordType:     checkout.RecordTypeMembership,
		RecordID:       membership.ID,
		PublicID:       membership.PublicID,
		OfferingTitle:  title,
		RecipientName:  name,
		RecipientEmail: email,
		OrderID:        meta.OrderID,
		AmountCents:    membership.PriceCents,
		Currency:       membership.Currency,
	})
}

func (h *ReconcilePaymentHandler) publish(ctx context.Context, event kafka.CheckoutConfirmedEvent) {
	if err := h.publisher.PublishCheckoutConfirmed(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("public_id", event.PublicID).
			Msg("Failed to publish checkout confirmation")
	}
}
