package command

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/membership-platform/internal/ledger/domain"
	"github.com/tair/membership-platform/internal/ledger/repository"
)

func setupOrderRepo(t *testing.T) (*gorm.DB, domain.OrderRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Order{}, &domain.Payment{}))
	return db, repository.NewGormOrderRepository(db)
}

func createPendingOrder(t *testing.T, repo domain.OrderRepository, grossCents int64) *CreateOrderResult {
	t.Helper()
	result, err := NewCreateOrderHandler(repo).Handle(CreateOrderCommand{
		UserID:           7,
		Type:             domain.OrderTypeEventRegistration,
		GrossAmountCents: grossCents,
		BaseAmountCents:  grossCents,
		Currency:         "HKD",
		Provider:         domain.ProviderPayPal,
		Metadata: domain.OrderMetadata{
			RecordType: "registration",
			RecordID:   1,
			PublicID:   "REG-1",
		},
	})
	require.NoError(t, err)
	return result
}

func TestCreateOrderPair(t *testing.T) {
	db, repo := setupOrderRepo(t)

	result := createPendingOrder(t, repo, 8000)
	require.NotZero(t, result.Order.ID)
	require.Contains(t, result.Order.OrderNumber, "ORD-")
	require.Equal(t, domain.OrderStatusPending, result.Order.Status)

	// The payment row is created alongside and linked to the order
	require.Equal(t, result.Order.ID, result.Payment.OrderID)
	require.Equal(t, domain.PaymentStatusPending, result.Payment.Status)

	meta, err := domain.DecodeOrderMetadata(result.Order.Metadata)
	require.NoError(t, err)
	require.Equal(t, "REG-1", meta.PublicID)

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Where("order_id = ?", result.Order.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCreateOrderValidation(t *testing.T) {
	_, repo := setupOrderRepo(t)
	handler := NewCreateOrderHandler(repo)

	_, err := handler.Handle(CreateOrderCommand{Type: domain.OrderTypeEventRegistration, Currency: "HKD", Provider: "paypal"})
	require.Error(t, err) // missing user

	_, err = handler.Handle(CreateOrderCommand{UserID: 7, Type: "bribe", Currency: "HKD", Provider: "paypal"})
	require.Error(t, err) // unknown type

	_, err = handler.Handle(CreateOrderCommand{UserID: 7, Type: domain.OrderTypeEventRegistration, GrossAmountCents: -1, Currency: "HKD", Provider: "paypal"})
	require.Error(t, err) // negative amount

	// Zero-amount orders are valid settlement records
	_, err = handler.Handle(CreateOrderCommand{UserID: 7, Type: domain.OrderTypeEventRegistration, Currency: "HKD", Provider: domain.ProviderAdmin})
	require.NoError(t, err)
}

func TestOrderStatusTransitions(t *testing.T) {
	db, repo := setupOrderRepo(t)
	handler := NewUpdateOrderStatusHandler(repo)
	result := createPendingOrder(t, repo, 8000)

	require.NoError(t, handler.Handle(UpdateOrderStatusCommand{
		OrderID: result.Order.ID,
		Status:  domain.OrderStatusPaid,
	}))

	var order domain.Order
	require.NoError(t, db.First(&order, result.Order.ID).Error)
	require.Equal(t, domain.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaidAt)
	firstPaidAt := *order.PaidAt

	// Re-applying paid is a no-op and paid_at never moves
	later := time.Now().Add(time.Hour)
	require.NoError(t, handler.Handle(UpdateOrderStatusCommand{
		OrderID: result.Order.ID,
		Status:  domain.OrderStatusPaid,
		PaidAt:  &later,
	}))
	require.NoError(t, db.First(&order, result.Order.ID).Error)
	require.True(t, order.PaidAt.Equal(firstPaidAt))

	// paid -> failed is not a legal transition
	require.Error(t, handler.Handle(UpdateOrderStatusCommand{
		OrderID: result.Order.ID,
		Status:  domain.OrderStatusFailed,
	}))

	// paid -> refunded is
	require.NoError(t, handler.Handle(UpdateOrderStatusCommand{
		OrderID: result.Order.ID,
		Status:  domain.OrderStatusRefunded,
	}))
}

func TestPaymentStatusTransitions(t *testing.T) {
	db, repo := setupOrderRepo(t)
	handler := NewUpdatePaymentStatusHandler(repo)
	result := createPendingOrder(t, repo, 8000)

	require.NoError(t, handler.Handle(UpdatePaymentStatusCommand{
		PaymentID:       result.Payment.ID,
		Status:          domain.PaymentStatusSucceeded,
		ProviderRef:     "CAP-1",
		ProviderPayload: `{"id":"CAP-1"}`,
	}))

	var payment domain.Payment
	require.NoError(t, db.First(&payment, result.Payment.ID).Error)
	require.Equal(t, domain.PaymentStatusSucceeded, payment.Status)
	require.Equal(t, "CAP-1", payment.ProviderRef)
	require.NotNil(t, payment.ProcessedAt)

	// Same status again is a no-op
	require.NoError(t, handler.Handle(UpdatePaymentStatusCommand{
		PaymentID: result.Payment.ID,
		Status:    domain.PaymentStatusSucceeded,
	}))

	// Terminal payments never flip
	require.Error(t, handler.Handle(UpdatePaymentStatusCommand{
		PaymentID: result.Payment.ID,
		Status:    domain.PaymentStatusFailed,
	}))
}

func TestAttachProviderRef(t *testing.T) {
	db, repo := setupOrderRepo(t)
	result := createPendingOrder(t, repo, 8000)

	require.NoError(t, NewAttachProviderRefHandler(repo).Handle(AttachProviderRefCommand{
		PaymentID:       result.Payment.ID,
		ProviderRef:     "SESS-1",
		ProviderPayload: `{"id":"SESS-1"}`,
	}))

	var payment domain.Payment
	require.NoError(t, db.First(&payment, result.Payment.ID).Error)
	require.Equal(t, "SESS-1", payment.ProviderRef)
	// Attaching the session reference does not settle anything
	require.Equal(t, domain.PaymentStatusPending, payment.Status)
}
