//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/membership-platform/internal/catalog"
	catalogdomain "github.com/tair/membership-platform/internal/catalog/domain"
	"github.com/tair/membership-platform/internal/checkout"
	checkouthandler "github.com/tair/membership-platform/internal/checkout/handler"
	ledgerdomain "github.com/tair/membership-platform/internal/ledger/domain"
	ledgercommand "github.com/tair/membership-platform/internal/ledger/usecase/command"
	ledgerquery "github.com/tair/membership-platform/internal/ledger/usecase/query"
	ledgerrepository "github.com/tair/membership-platform/internal/ledger/repository"
	"github.com/tair/membership-platform/internal/member"
	membershipdomain "github.com/tair/membership-platform/internal/membership/domain"
	membershipcommand "github.com/tair/membership-platform/internal/membership/usecase/command"
	membershiprepository "github.com/tair/membership-platform/internal/membership/repository"
	reconciledomain "github.com/tair/membership-platform/internal/reconcile/domain"
	reconcilehandler "github.com/tair/membership-platform/internal/reconcile/handler"
	reconcilecommand "github.com/tair/membership-platform/internal/reconcile/usecase/command"
	reconcilerepository "github.com/tair/membership-platform/internal/reconcile/repository"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
	registrationcommand "github.com/tair/membership-platform/internal/registration/usecase/command"
	registrationquery "github.com/tair/membership-platform/internal/registration/usecase/query"
	registrationrepository "github.com/tair/membership-platform/internal/registration/repository"
)

// Repository providers
func ProvideRegistrationRepository(db *gorm.DB) registrationdomain.RegistrationRepository {
	return registrationrepository.NewGormRegistrationRepository(db)
}

func ProvideMembershipRepository(db *gorm.DB) membershipdomain.MembershipRepository {
	return membershiprepository.NewGormMembershipRepository(db)
}

func ProvideOrderRepository(db *gorm.DB) ledgerdomain.OrderRepository {
	return ledgerrepository.NewGormOrderRepository(db)
}

func ProvideWebhookEventRepository(db *gorm.DB) reconciledomain.WebhookEventRepository {
	return reconcilerepository.NewGormWebhookEventRepository(db)
}

// Command Handlers Providers
func ProvideCreateRegistrationHandler(repo registrationdomain.RegistrationRepository) *registrationcommand.CreateRegistrationHandler {
	return registrationcommand.NewCreateRegistrationHandler(repo)
}

func ProvideActivateRegistrationHandler(repo registrationdomain.RegistrationRepository) *registrationcommand.ActivateRegistrationHandler {
	return registrationcommand.NewActivateRegistrationHandler(repo)
}

func ProvideCancelRegistrationHandler(repo registrationdomain.RegistrationRepository) *registrationcommand.CancelRegistrationHandler {
	return registrationcommand.NewCancelRegistrationHandler(repo)
}

func ProvideMarkAttendedHandler(repo registrationdomain.RegistrationRepository) *registrationcommand.MarkAttendedHandler {
	return registrationcommand.NewMarkAttendedHandler(repo)
}

func ProvideCreateMembershipHandler(repo membershipdomain.MembershipRepository) *membershipcommand.CreateMembershipHandler {
	return membershipcommand.NewCreateMembershipHandler(repo)
}

func ProvideActivateMembershipHandler(repo membershipdomain.MembershipRepository) *membershipcommand.ActivateMembershipHandler {
	return membershipcommand.NewActivateMembershipHandler(repo)
}

func ProvideCancelMembershipHandler(repo membershipdomain.MembershipRepository) *membershipcommand.CancelMembershipHandler {
	return membershipcommand.NewCancelMembershipHandler(repo)
}

func ProvideCreateOrderHandler(repo ledgerdomain.OrderRepository) *ledgercommand.CreateOrderHandler {
	return ledgercommand.NewCreateOrderHandler(repo)
}

func ProvideUpdateOrderStatusHandler(repo ledgerdomain.OrderRepository) *ledgercommand.UpdateOrderStatusHandler {
	return ledgercommand.NewUpdateOrderStatusHandler(repo)
}

func ProvideUpdatePaymentStatusHandler(repo ledgerdomain.OrderRepository) *ledgercommand.UpdatePaymentStatusHandler {
	return ledgercommand.NewUpdatePaymentStatusHandler(repo)
}

func ProvideAttachProviderRefHandler(repo ledgerdomain.OrderRepository) *ledgercommand.AttachProviderRefHandler {
	return ledgercommand.NewAttachProviderRefHandler(repo)
}

// Query Handlers Providers
func ProvideGetRegistrationHandler(repo registrationdomain.RegistrationRepository) *registrationquery.GetRegistrationHandler {
	return registrationquery.NewGetRegistrationHandler(repo)
}

func ProvideListMyRegistrationsHandler(repo registrationdomain.RegistrationRepository) *registrationquery.ListMyRegistrationsHandler {
	return registrationquery.NewListMyRegistrationsHandler(repo)
}

func ProvideListMyOrdersHandler(repo ledgerdomain.OrderRepository) *ledgerquery.ListMyOrdersHandler {
	return ledgerquery.NewListMyOrdersHandler(repo)
}

// Checkout core providers
func ProvideValidator(
	events catalogdomain.EventRepository,
	levels catalogdomain.LevelRepository,
	memberships membershipdomain.MembershipRepository,
	registrations registrationdomain.RegistrationRepository,
	cfg checkout.Config,
) *checkout.Validator {
	return checkout.NewValidator(events, levels, memberships, registrations, cfg.Currency)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideRegistrationRepository,
	ProvideMembershipRepository,
	ProvideOrderRepository,
	ProvideWebhookEventRepository,
)

var CommandSet = wire.NewSet(
	ProvideCreateRegistrationHandler,
	ProvideActivateRegistrationHandler,
	ProvideCancelRegistrationHandler,
	ProvideMarkAttendedHandler,
	ProvideCreateMembershipHandler,
	ProvideActivateMembershipHandler,
	ProvideCancelMembershipHandler,
	ProvideCreateOrderHandler,
	ProvideUpdateOrderStatusHandler,
	ProvideUpdatePaymentStatusHandler,
	ProvideAttachProviderRefHandler,
)

var QuerySet = wire.NewSet(
	ProvideGetRegistrationHandler,
	ProvideListMyRegistrationsHandler,
	ProvideListMyOrdersHandler,
)

// InitializeCheckoutHandler initializes the checkout handler with all dependencies
func InitializeCheckoutHandler(
	db *gorm.DB,
	gateway checkout.Gateway,
	publisher checkout.ConfirmationPublisher,
	cfg checkout.Config,
) (*checkouthandler.CheckoutHandler, error) {
	wire.Build(
		catalog.RepositorySet,
		member.RepositorySet,
		RepositorySet,
		CommandSet,
		QuerySet,
		ProvideValidator,
		checkout.NewCoordinator,
		checkouthandler.NewCheckoutHandler,
	)
	return nil, nil
}

// InitializeWebhookHandler initializes the gateway webhook handler
func InitializeWebhookHandler(
	db *gorm.DB,
	publisher checkout.ConfirmationPublisher,
	verifier reconcilehandler.WebhookVerifier,
) (*reconcilehandler.WebhookHandler, error) {
	wire.Build(
		catalog.RepositorySet,
		member.RepositorySet,
		RepositorySet,
		CommandSet,
		reconcilecommand.NewReconcilePaymentHandler,
		reconcilehandler.NewWebhookHandler,
	)
	return nil, nil
}
