package command

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	catalogdomain "github.com/tair/membership-platform/internal/catalog/domain"
	catalogrepository "github.com/tair/membership-platform/internal/catalog/repository"
	"github.com/tair/membership-platform/internal/checkout"
	ledgerdomain "github.com/tair/membership-platform/internal/ledger/domain"
	ledgerrepository "github.com/tair/membership-platform/internal/ledger/repository"
	ledgercommand "github.com/tair/membership-platform/internal/ledger/usecase/command"
	memberdomain "github.com/tair/membership-platform/internal/member/domain"
	memberrepository "github.com/tair/membership-platform/internal/member/repository"
	membershipdomain "github.com/tair/membership-platform/internal/membership/domain"
	membershiprepository "github.com/tair/membership-platform/internal/membership/repository"
	membershipcommand "github.com/tair/membership-platform/internal/membership/usecase/command"
	"github.com/tair/membership-platform/internal/reconcile/domain"
	reconcilerepository "github.com/tair/membership-platform/internal/reconcile/repository"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
	registrationrepository "github.com/tair/membership-platform/internal/registration/repository"
	registrationcommand "github.com/tair/membership-platform/internal/registration/usecase/command"
	"github.com/tair/membership-platform/kafka"
)

type capturePublisher struct {
	events []kafka.CheckoutConfirmedEvent
}

func (p *capturePublisher) PublishCheckoutConfirmed(_ context.Context, event kafka.CheckoutConfirmedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func setupReconcile(t *testing.T) (*gorm.DB, *ReconcilePaymentHandler, *capturePublisher) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&memberdomain.User{},
		&catalogdomain.Event{},
		&catalogdomain.MembershipLevel{},
		&registrationdomain.Registration{},
		&membershipdomain.Membership{},
		&ledgerdomain.Order{},
		&ledgerdomain.Payment{},
		&domain.WebhookEvent{},
	))

	registrations := registrationrepository.NewGormRegistrationRepository(db)
	memberships := membershiprepository.NewGormMembershipRepository(db)
	orders := ledgerrepository.NewGormOrderRepository(db)
	publisher := &capturePublisher{}

	handler := NewReconcilePaymentHandler(
		reconcilerepository.NewGormWebhookEventRepository(db),
		ledgercommand.NewUpdateOrderStatusHandler(orders),
		ledgercommand.NewUpdatePaymentStatusHandler(orders),
		registrationcommand.NewActivateRegistrationHandler(registrations),
		registrationcommand.NewCancelRegistrationHandler(registrations),
		membershipcommand.NewActivateMembershipHandler(memberships),
		membershipcommand.NewCancelMembershipHandler(memberships),
		registrations,
		memberships,
		catalogrepository.NewGormEventRepository(db),
		catalogrepository.NewGormLevelRepository(db),
		memberrepository.NewGormUserRepository(db),
		publisher,
	)
	return db, handler, publisher
}

// seedPendingCheckout creates a user, event, pending registration and pending
// ledger pair, and returns the encoded metadata a gateway session would carry.
func seedPendingCheckout(t *testing.T, db *gorm.DB) (ledgerdomain.OrderMetadata, string) {
	t.Helper()

	user := &memberdomain.User{Username: "carol", Email: "carol@example.com", Password: "x", FullName: "Carol", Role: "member", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	event := &catalogdomain.Event{
		Title:          "Annual Gala",
		StartsAt:       time.Now().Add(48 * time.Hour),
		BasePriceCents: 10000,
		Capacity:       1,
		Status:         catalogdomain.EventStatusPublished,
	}
	require.NoError(t, db.Create(event).Error)

	registration := &registrationdomain.Registration{
		PublicID:   "REG-pending",
		EventID:    event.ID,
		UserID:     &user.ID,
		PriceCents: 10000,
		Currency:   "HKD",
		Status:     registrationdomain.StatusPending,
	}
	require.NoError(t, db.Create(registration).Error)

	order := &ledgerdomain.Order{
		OrderNumber:      "ORD-pending",
		UserID:           user.ID,
		Type:             ledgerdomain.OrderTypeEventRegistration,
		GrossAmountCents: 10000,
		BaseAmountCents:  10000,
		Currency:         "HKD",
		Status:           ledgerdomain.OrderStatusPending,
	}
	require.NoError(t, db.Create(order).Error)

	payment := &ledgerdomain.Payment{
		OrderID:  order.ID,
		Provider: ledgerdomain.ProviderPayPal,
		Status:   ledgerdomain.PaymentStatusPending,
	}
	require.NoError(t, db.Create(payment).Error)

	meta := ledgerdomain.OrderMetadata{
		RecordType: checkout.RecordTypeRegistration,
		RecordID:   registration.ID,
		PublicID:   registration.PublicID,
		OfferingID: event.ID,
		ActorKind:  checkout.ActorMember,
		OrderID:    order.ID,
		PaymentID:  payment.ID,
	}
	encoded, err := meta.Encode()
	require.NoError(t, err)
	return meta, encoded
}

func TestReconcileSucceededIdempotent(t *testing.T) {
	db, handler, publisher := setupReconcile(t)
	meta, encoded := seedPendingCheckout(t, db)
	ctx := context.Background()

	cmd := ReconcilePaymentCommand{
		Provider:        "paypal",
		ProviderEventID: "WH-1",
		EventType:       "PAYMENT.CAPTURE.COMPLETED",
		Outcome:         OutcomeSucceeded,
		ProviderRef:     "CAP-1",
		Metadata:        encoded,
		RawPayload:      `{"id":"WH-1"}`,
	}
	require.NoError(t, handler.Handle(ctx, cmd))

	var registration registrationdomain.Registration
	require.NoError(t, db.First(&registration, meta.RecordID).Error)
	require.Equal(t, registrationdomain.StatusPaid, registration.Status)

	var order ledgerdomain.Order
	require.NoError(t, db.First(&order, meta.OrderID).Error)
	require.Equal(t, ledgerdomain.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaidAt)
	firstPaidAt := *order.PaidAt

	var payment ledgerdomain.Payment
	require.NoError(t, db.First(&payment, meta.PaymentID).Error)
	require.Equal(t, ledgerdomain.PaymentStatusSucceeded, payment.Status)
	require.Equal(t, "CAP-1", payment.ProviderRef)

	require.Len(t, publisher.events, 1)
	require.Equal(t, "carol@example.com", publisher.events[0].RecipientEmail)
	require.Equal(t, "Annual Gala", publisher.events[0].OfferingTitle)

	// Redelivery of the same provider event is a pure no-op
	require.NoError(t, handler.Handle(ctx, cmd))

	require.NoError(t, db.First(&order, meta.OrderID).Error)
	require.True(t, order.PaidAt.Equal(firstPaidAt))
	require.Len(t, publisher.events, 1)

	var webhookCount int64
	require.NoError(t, db.Model(&domain.WebhookEvent{}).Count(&webhookCount).Error)
	require.Equal(t, int64(1), webhookCount)
}

func TestReconcileFailedReleasesCapacity(t *testing.T) {
	db, handler, publisher := setupReconcile(t)
	meta, encoded := seedPendingCheckout(t, db)

	require.NoError(t, handler.Handle(context.Background(), ReconcilePaymentCommand{
		Provider:        "paypal",
		ProviderEventID: "WH-2",
		EventType:       "PAYMENT.CAPTURE.DENIED",
		Outcome:         OutcomeFailed,
		Metadata:        encoded,
		RawPayload:      `{"id":"WH-2"}`,
	}))

	var registration registrationdomain.Registration
	require.NoError(t, db.First(&registration, meta.RecordID).Error)
	require.Equal(t, registrationdomain.StatusCancelled, registration.Status)

	var order ledgerdomain.Order
	require.NoError(t, db.First(&order, meta.OrderID).Error)
	require.Equal(t, ledgerdomain.OrderStatusFailed, order.Status)

	var payment ledgerdomain.Payment
	require.NoError(t, db.First(&payment, meta.PaymentID).Error)
	require.Equal(t, ledgerdomain.PaymentStatusFailed, payment.Status)

	// No confirmation for a failed payment
	require.Empty(t, publisher.events)

	// The cancelled registration no longer holds the capacity slot
	registrations := registrationrepository.NewGormRegistrationRepository(db)
	active, err := registrations.CountActiveByEvent(meta.OfferingID)
	require.NoError(t, err)
	require.Zero(t, active)
}

func TestReconcileMalformedMetadataFlagged(t *testing.T) {
	db, handler, _ := setupReconcile(t)

	err := handler.Handle(context.Background(), ReconcilePaymentCommand{
		Provider:        "paypal",
		ProviderEventID: "WH-3",
		EventType:       "PAYMENT.CAPTURE.COMPLETED",
		Outcome:         OutcomeSucceeded,
		Metadata:        "not-json",
		RawPayload:      `{"id":"WH-3"}`,
	})
	require.Error(t, err)

	// Flagged for manual review, with the failure reason recorded
	var record domain.WebhookEvent
	require.NoError(t, db.Where("provider_event_id = ?", "WH-3").First(&record).Error)
	require.Equal(t, domain.StatusFlagged, record.Status)
	require.NotEmpty(t, record.Error)
	require.Nil(t, record.ProcessedAt)
}

func TestReconcileMembershipActivation(t *testing.T) {
	db, handler, publisher := setupReconcile(t)

	user := &memberdomain.User{Username: "dave", Email: "dave@example.com", Password: "x", FullName: "Dave", Role: "member", IsActive: true}
	require.NoError(t, db.Create(user).Error)

	level := &catalogdomain.MembershipLevel{Name: "Gold", PriceCents: 50000, DurationMonths: 12, IsActive: true}
	require.NoError(t, db.Create(level).Error)

	membership := &membershipdomain.Membership{
		PublicID:   "MEM-pending",
		UserID:     user.ID,
		LevelID:    level.ID,
		PriceCents: 50000,
		Currency:   "HKD",
		Status:     membershipdomain.StatusPending,
	}
	require.NoError(t, db.Create(membership).Error)

	meta := ledgerdomain.OrderMetadata{
		RecordType: checkout.RecordTypeMembership,
		RecordID:   membership.ID,
		PublicID:   membership.PublicID,
		OfferingID: level.ID,
		ActorKind:  checkout.ActorMember,
	}
	encoded, err := meta.Encode()
	require.NoError(t, err)

	require.NoError(t, handler.Handle(context.Background(), ReconcilePaymentCommand{
		Provider:        "paypal",
		ProviderEventID: "WH-4",
		EventType:       "CHECKOUT.ORDER.COMPLETED",
		Outcome:         OutcomeSucceeded,
		Metadata:        encoded,
		RawPayload:      `{"id":"WH-4"}`,
	}))

	var activated membershipdomain.Membership
	require.NoError(t, db.First(&activated, membership.ID).Error)
	require.Equal(t, membershipdomain.StatusActive, activated.Status)
	require.NotNil(t, activated.StartsAt)
	require.NotNil(t, activated.ExpiresAt)
	require.True(t, activated.ExpiresAt.After(*activated.StartsAt))

	require.Len(t, publisher.events, 1)
	require.Equal(t, "Gold", publisher.events[0].OfferingTitle)
	require.Equal(t, "dave@example.com", publisher.events[0].RecipientEmail)
}
