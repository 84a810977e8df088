package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
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
	ledgerquery "github.com/tair/membership-platform/internal/ledger/usecase/query"
	memberdomain "github.com/tair/membership-platform/internal/member/domain"
	memberrepository "github.com/tair/membership-platform/internal/member/repository"
	membershipdomain "github.com/tair/membership-platform/internal/membership/domain"
	membershiprepository "github.com/tair/membership-platform/internal/membership/repository"
	membershipcommand "github.com/tair/membership-platform/internal/membership/usecase/command"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
	registrationrepository "github.com/tair/membership-platform/internal/registration/repository"
	registrationcommand "github.com/tair/membership-platform/internal/registration/usecase/command"
	registrationquery "github.com/tair/membership-platform/internal/registration/usecase/query"
	"github.com/tair/membership-platform/pkg/auth"
)

type noopGateway struct{}

func (noopGateway) Name() string { return "paypal" }

func (noopGateway) CreateCheckoutSession(_ context.Context, req checkout.SessionRequest) (*checkout.CheckoutSession, error) {
	return &checkout.CheckoutSession{ID: "SESS-http", URL: "https://gateway.test/approve"}, nil
}

func setupRouterWithDB(t *testing.T) (*mux.Router, *gorm.DB) {
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
	))

	registrations := registrationrepository.NewGormRegistrationRepository(db)
	memberships := membershiprepository.NewGormMembershipRepository(db)
	orders := ledgerrepository.NewGormOrderRepository(db)
	users := memberrepository.NewGormUserRepository(db)

	validator := checkout.NewValidator(
		catalogrepository.NewGormEventRepository(db),
		catalogrepository.NewGormLevelRepository(db),
		memberships,
		registrations,
		"HKD",
	)
	coordinator := checkout.NewCoordinator(
		validator,
		registrationcommand.NewCreateRegistrationHandler(registrations),
		registrationcommand.NewCancelRegistrationHandler(registrations),
		membershipcommand.NewCreateMembershipHandler(memberships),
		membershipcommand.NewCancelMembershipHandler(memberships),
		ledgercommand.NewCreateOrderHandler(orders),
		ledgercommand.NewUpdateOrderStatusHandler(orders),
		ledgercommand.NewUpdatePaymentStatusHandler(orders),
		ledgercommand.NewAttachProviderRefHandler(orders),
		noopGateway{},
		nil,
		checkout.Config{BaseURL: "http://localhost:3000", Currency: "HKD"},
	)

	h := NewCheckoutHandler(
		coordinator,
		registrationquery.NewGetRegistrationHandler(registrations),
		registrationquery.NewListMyRegistrationsHandler(registrations),
		registrationcommand.NewMarkAttendedHandler(registrations),
		ledgerquery.NewListMyOrdersHandler(orders),
		users,
	)

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router, db
}

func httpDo(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// The handler's prometheus collectors register globally, so the router is
// built once and the endpoints are exercised as one flow.
func TestCheckoutEndpoints(t *testing.T) {
	router, db := setupRouterWithDB(t)

	member := &memberdomain.User{Username: "carol", Email: "carol@example.com", Password: "x", FullName: "Carol", Role: "member", IsActive: true}
	admin := &memberdomain.User{Username: "root", Email: "root@example.com", Password: "x", FullName: "Root", Role: "admin", IsActive: true}
	require.NoError(t, db.Create(member).Error)
	require.NoError(t, db.Create(admin).Error)

	memberToken, err := auth.GenerateToken(member.ID, member.Username, member.Role)
	require.NoError(t, err)
	adminToken, err := auth.GenerateToken(admin.ID, admin.Username, admin.Role)
	require.NoError(t, err)

	freeEvent := &catalogdomain.Event{
		Title:    "Community Meetup",
		StartsAt: time.Now().Add(24 * time.Hour),
		Status:   catalogdomain.EventStatusPublished,
	}
	paidEvent := &catalogdomain.Event{
		Title:          "Annual Gala",
		StartsAt:       time.Now().Add(48 * time.Hour),
		BasePriceCents: 10000,
		Status:         catalogdomain.EventStatusPublished,
	}
	require.NoError(t, db.Create(freeEvent).Error)
	require.NoError(t, db.Create(paidEvent).Error)

	var guestPublicID string

	t.Run("guest free checkout", func(t *testing.T) {
		rec := httpDo(t, router, http.MethodPost, "/api/checkout", "", map[string]interface{}{
			"offering_kind": "event",
			"offering_id":   freeEvent.ID,
			"guest": map[string]string{
				"full_name": "Bob",
				"email":     "bob@example.com",
				"phone":     "+85212345678",
			},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeResponse(t, rec)
		require.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		require.Equal(t, true, data["is_free"])
		require.NotEmpty(t, data["public_id"])
		require.Empty(t, data["redirect_url"])
		guestPublicID = data["public_id"].(string)
	})

	t.Run("guest checkout with incomplete contact info", func(t *testing.T) {
		rec := httpDo(t, router, http.MethodPost, "/api/checkout", "", map[string]interface{}{
			"offering_kind": "event",
			"offering_id":   freeEvent.ID,
			"guest":         map[string]string{"full_name": "Eve"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.False(t, decodeResponse(t, rec).Success)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("member checkout requires auth", func(t *testing.T) {
		rec := httpDo(t, router, http.MethodPost, "/api/member/checkout", "", map[string]interface{}{
			"offering_kind": "event",
			"offering_id":   paidEvent.ID,
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("member paid checkout returns redirect", func(t *testing.T) {
		rec := httpDo(t, router, http.MethodPost, "/api/member/checkout", memberToken, map[string]interface{}{
			"offering_kind": "event",
			"offering_id":   paidEvent.ID,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeResponse(t, rec).Data.(map[string]interface{})
		require.Equal(t, false, data["is_free"])
		require.Equal(t, "https://gateway.test/approve", data["redirect_url"])
		require.NotEmpty(t, data["order_number"])
	})

	t.Run("registration lookup by public id", func(t *testing.T) {
		rec := httpDo(t, router, http.MethodGet, "/api/registrations/"+guestPublicID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httpDo(t, router, http.MethodGet, "/api/registrations/REG-nope", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mark attended is admin only", func(t *testing.T) {
		path := "/api/registrations/" + guestPublicID + "/attend"

		rec := httpDo(t, router, http.MethodPost, path, memberToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = httpDo(t, router, http.MethodPost, path, adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var reg registrationdomain.Registration
		require.NoError(t, db.Where("public_id = ?", guestPublicID).First(&reg).Error)
		require.Equal(t, registrationdomain.StatusAttended, reg.Status)
	})

	t.Run("my registrations and orders", func(t *testing.T) {
		rec := httpDo(t, router, http.MethodGet, "/api/members/me/registrations", memberToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, decodeResponse(t, rec).Success)

		rec = httpDo(t, router, http.MethodGet, "/api/members/me/orders", memberToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httpDo(t, router, http.MethodGet, "/api/members/me/orders", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
