package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	ledgerdomain "github.com/tair/membership-platform/internal/ledger/domain"
	ledgerrepository "github.com/tair/membership-platform/internal/ledger/repository"
	ledgercommand "github.com/tair/membership-platform/internal/ledger/usecase/command"
	membershiprepository "github.com/tair/membership-platform/internal/membership/repository"
	membershipcommand "github.com/tair/membership-platform/internal/membership/usecase/command"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
	registrationrepository "github.com/tair/membership-platform/internal/registration/repository"
	registrationcommand "github.com/tair/membership-platform/internal/registration/usecase/command"
	"github.com/tair/membership-platform/kafka"
)

type fakeGateway struct {
	lastRequest *SessionRequest
	err         error
}

func (g *fakeGateway) Name() string { return "paypal" }

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req SessionRequest) (*CheckoutSession, error) {
	g.lastRequest = &req
	if g.err != nil {
		return nil, g.err
	}
	return &CheckoutSession{
		ID:      "SESS-1",
		URL:     "https://gateway.test/approve/SESS-1",
		Payload: `{"id":"SESS-1"}`,
	}, nil
}

type fakePublisher struct {
	events []kafka.CheckoutConfirmedEvent
}

func (p *fakePublisher) PublishCheckoutConfirmed(_ context.Context, event kafka.CheckoutConfirmedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func newTestCoordinator(db *gorm.DB, gateway Gateway, publisher ConfirmationPublisher) *Coordinator {
	registrations := registrationrepository.NewGormRegistrationRepository(db)
	memberships := membershiprepository.NewGormMembershipRepository(db)
	orders := ledgerrepository.NewGormOrderRepository(db)

	return NewCoordinator(
		newTestValidator(db),
		registrationcommand.NewCreateRegistrationHandler(registrations),
		registrationcommand.NewCancelRegistrationHandler(registrations),
		membershipcommand.NewCreateMembershipHandler(memberships),
		membershipcommand.NewCancelMembershipHandler(memberships),
		ledgercommand.NewCreateOrderHandler(orders),
		ledgercommand.NewUpdateOrderStatusHandler(orders),
		ledgercommand.NewUpdatePaymentStatusHandler(orders),
		ledgercommand.NewAttachProviderRefHandler(orders),
		gateway,
		publisher,
		Config{BaseURL: "http://localhost:3000", Currency: "HKD"},
	)
}

func TestCheckoutMemberPaidEvent(t *testing.T) {
	db := setupDB(t)
	gateway := &fakeGateway{}
	publisher := &fakePublisher{}
	coordinator := newTestCoordinator(db, gateway, publisher)
	ctx := context.Background()

	level := seedGoldLevel(t, db)
	event := seedEvent(t, db, 10000, 2000, 0)
	seedActiveMembership(t, db, 7, level.ID)

	result, err := coordinator.Checkout(ctx, CheckoutInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
		LevelRef:     level.ID,
	})
	require.NoError(t, err)
	require.False(t, result.IsFree)
	require.Equal(t, int64(8000), result.AmountCents)
	require.Equal(t, "https://gateway.test/approve/SESS-1", result.RedirectURL)
	require.NotEmpty(t, result.OrderNumber)

	// Registration stays pending until the gateway calls back
	var registration registrationdomain.Registration
	require.NoError(t, db.Where("public_id = ?", result.PublicID).First(&registration).Error)
	require.Equal(t, registrationdomain.StatusPending, registration.Status)
	require.Equal(t, int64(8000), registration.PriceCents)

	// Ledger pair pending, provider from the gateway
	var order ledgerdomain.Order
	require.NoError(t, db.Where("order_number = ?", result.OrderNumber).First(&order).Error)
	require.Equal(t, ledgerdomain.OrderStatusPending, order.Status)
	require.Equal(t, int64(8000), order.GrossAmountCents)
	require.Equal(t, int64(2000), order.DiscountCents)

	var payment ledgerdomain.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	require.Equal(t, ledgerdomain.PaymentStatusPending, payment.Status)
	require.Equal(t, "paypal", payment.Provider)
	require.Equal(t, "SESS-1", payment.ProviderRef)

	// Session metadata carries the committed ledger ids
	require.NotNil(t, gateway.lastRequest)
	metadata, err := ledgerdomain.DecodeOrderMetadata(gateway.lastRequest.Metadata)
	require.NoError(t, err)
	require.Equal(t, RecordTypeRegistration, metadata.RecordType)
	require.Equal(t, registration.ID, metadata.RecordID)
	require.Equal(t, order.ID, metadata.OrderID)
	require.Equal(t, payment.ID, metadata.PaymentID)

	// Nothing confirmed yet
	require.Empty(t, publisher.events)
}

func TestCheckoutGuestFreeEvent(t *testing.T) {
	db := setupDB(t)
	gateway := &fakeGateway{}
	publisher := &fakePublisher{}
	coordinator := newTestCoordinator(db, gateway, publisher)

	event := seedEvent(t, db, 0, 0, 0)

	result, err := coordinator.Checkout(context.Background(), CheckoutInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        GuestActor("Bob", "bob@example.com", "+85212345678"),
	})
	require.NoError(t, err)
	require.True(t, result.IsFree)
	require.Empty(t, result.RedirectURL)
	require.Empty(t, result.OrderNumber)

	// Registration settled synchronously
	var registration registrationdomain.Registration
	require.NoError(t, db.Where("public_id = ?", result.PublicID).First(&registration).Error)
	require.Equal(t, registrationdomain.StatusPaid, registration.Status)
	require.Nil(t, registration.UserID)

	// Guests never own ledger rows
	var orderCount int64
	require.NoError(t, db.Model(&ledgerdomain.Order{}).Count(&orderCount).Error)
	require.Zero(t, orderCount)

	// Confirmation sent once
	require.Len(t, publisher.events, 1)
	require.Equal(t, "bob@example.com", publisher.events[0].RecipientEmail)

	// No gateway round trip for a free checkout
	require.Nil(t, gateway.lastRequest)
}

func TestCheckoutMemberFreeEvent(t *testing.T) {
	db := setupDB(t)
	publisher := &fakePublisher{}
	coordinator := newTestCoordinator(db, &fakeGateway{}, publisher)

	event := seedEvent(t, db, 0, 0, 0)

	result, err := coordinator.Checkout(context.Background(), CheckoutInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	require.NoError(t, err)
	require.True(t, result.IsFree)
	require.NotEmpty(t, result.OrderNumber)

	// Member free checkouts still get a zero-amount settled ledger pair
	var order ledgerdomain.Order
	require.NoError(t, db.Where("order_number = ?", result.OrderNumber).First(&order).Error)
	require.Equal(t, ledgerdomain.OrderStatusPaid, order.Status)
	require.Zero(t, order.GrossAmountCents)
	require.NotNil(t, order.PaidAt)

	var payment ledgerdomain.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&payment).Error)
	require.Equal(t, ledgerdomain.PaymentStatusSucceeded, payment.Status)
	require.Equal(t, ledgerdomain.ProviderAdmin, payment.Provider)
	require.NotNil(t, payment.ProcessedAt)

	require.Len(t, publisher.events, 1)
}

func TestCheckoutGatewayFailureLeavesPending(t *testing.T) {
	db := setupDB(t)
	gateway := &fakeGateway{err: errors.New("provider unavailable")}
	publisher := &fakePublisher{}
	coordinator := newTestCoordinator(db, gateway, publisher)

	event := seedEvent(t, db, 10000, 0, 0)

	_, err := coordinator.Checkout(context.Background(), CheckoutInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	var gatewayErr *GatewaySessionError
	require.ErrorAs(t, err, &gatewayErr)

	// The attempt stays pending; nothing is confirmed
	var registration registrationdomain.Registration
	require.NoError(t, db.Where("user_id = ?", 7).First(&registration).Error)
	require.Equal(t, registrationdomain.StatusPending, registration.Status)
	require.Empty(t, publisher.events)

	// A retry supersedes the stale pending attempt instead of failing
	gateway.err = nil
	result, err := coordinator.Checkout(context.Background(), CheckoutInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	require.NoError(t, err)
	require.NotEqual(t, registration.PublicID, result.PublicID)

	var superseded registrationdomain.Registration
	require.NoError(t, db.First(&superseded, registration.ID).Error)
	require.Equal(t, registrationdomain.StatusCancelled, superseded.Status)
}

func TestCheckoutMembershipPurchase(t *testing.T) {
	db := setupDB(t)
	gateway := &fakeGateway{}
	coordinator := newTestCoordinator(db, gateway, &fakePublisher{})

	level := seedGoldLevel(t, db)

	result, err := coordinator.Checkout(context.Background(), CheckoutInput{
		OfferingKind: OfferingMembership,
		OfferingID:   level.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(50000), result.AmountCents)
	require.NotEmpty(t, result.RedirectURL)

	var order ledgerdomain.Order
	require.NoError(t, db.Where("order_number = ?", result.OrderNumber).First(&order).Error)
	require.Equal(t, ledgerdomain.OrderTypeMembershipPurchase, order.Type)

	metadata, err := ledgerdomain.DecodeOrderMetadata(gateway.lastRequest.Metadata)
	require.NoError(t, err)
	require.Equal(t, RecordTypeMembership, metadata.RecordType)
}

func TestCheckoutIgnoresClientPrice(t *testing.T) {
	db := setupDB(t)
	gateway := &fakeGateway{}
	coordinator := newTestCoordinator(db, gateway, &fakePublisher{})

	event := seedEvent(t, db, 12345, 0, 0)

	// CheckoutInput has no price field at all; the charge comes from the
	// catalog row no matter what the client sent over the wire.
	result, err := coordinator.Checkout(context.Background(), CheckoutInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(12345), result.AmountCents)
	require.Equal(t, int64(12345), gateway.lastRequest.Item.UnitAmountCents)
}
