package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/membership-platform/internal/checkout"
	ledgerquery "github.com/tair/membership-platform/internal/ledger/usecase/query"
	memberdomain "github.com/tair/membership-platform/internal/member/domain"
	memberhandler "github.com/tair/membership-platform/internal/member/handler"
	registrationcommand "github.com/tair/membership-platform/internal/registration/usecase/command"
	registrationquery "github.com/tair/membership-platform/internal/registration/usecase/query"
	"github.com/tair/membership-platform/pkg/logger"
)

// CheckoutHandler handles HTTP requests for the checkout flow
type CheckoutHandler struct {
	coordinator *checkout.Coordinator

	getRegistration     *registrationquery.GetRegistrationHandler
	listMyRegistrations *registrationquery.ListMyRegistrationsHandler
	markAttended        *registrationcommand.MarkAttendedHandler
	listMyOrders        *ledgerquery.ListMyOrdersHandler

	users memberdomain.UserRepository

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(
	coordinator *checkout.Coordinator,
	getRegistration *registrationquery.GetRegistrationHandler,
	listMyRegistrations *registrationquery.ListMyRegistrationsHandler,
	markAttended *registrationcommand.MarkAttendedHandler,
	listMyOrders *ledgerquery.ListMyOrdersHandler,
	users memberdomain.UserRepository,
) *CheckoutHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_service_requests_total",
			Help: "Total number of requests to checkout endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkout_service_request_duration_seconds",
			Help:    "Duration of checkout endpoint requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &CheckoutHandler{
		coordinator:         coordinator,
		getRegistration:     getRegistration,
		listMyRegistrations: listMyRegistrations,
		markAttended:        markAttended,
		listMyOrders:        listMyOrders,
		users:               users,
		requestCounter:      requestCounter,
		requestLatency:      requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *CheckoutHandler) observe(method, endpoint string, status int, start time.Time) {
	h.requestCounter.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
	h.requestLatency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

type checkoutRequest struct {
	OfferingKind string `json:"offering_kind"`
	OfferingID   uint   `json:"offering_id"`
	LevelRef     uint   `json:"level_ref,omitempty"`
	Guest        *struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	} `json:"guest,omitempty"`
}

// resolveActor builds the actor context from the authenticated session or,
// when no session is present, from the declared guest contact info. The
// coordinator never reaches into request state itself.
func (h *CheckoutHandler) resolveActor(r *http.Request, req checkoutRequest) (checkout.ActorContext, error) {
	if userID, ok := memberhandler.UserIDFromContext(r.Context()); ok {
		user, err := h.users.FindByID(userID)
		if err != nil {
			return checkout.ActorContext{}, errors.New("authenticated user not found")
		}
		return checkout.MemberActor(user.ID, user.FullName, user.Email), nil
	}
	if req.Guest == nil {
		return checkout.GuestActor("", "", ""), nil
	}
	return checkout.GuestActor(req.Guest.FullName, req.Guest.Email, req.Guest.Phone), nil
}

// Checkout handles POST /api/checkout (guest or member)
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.handleCheckout(w, r, "/api/checkout")
}

// MemberCheckout handles POST /api/member/checkout (authenticated only)
func (h *CheckoutHandler) MemberCheckout(w http.ResponseWriter, r *http.Request) {
	h.handleCheckout(w, r, "/api/member/checkout")
}

func (h *CheckoutHandler) handleCheckout(w http.ResponseWriter, r *http.Request, endpoint string) {
	start := time.Now()

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe(r.Method, endpoint, http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	actor, err := h.resolveActor(r, req)
	if err != nil {
		h.observe(r.Method, endpoint, http.StatusUnauthorized, start)
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	result, err := h.coordinator.Checkout(r.Context(), checkout.CheckoutInput{
		OfferingKind: req.OfferingKind,
		OfferingID:   req.OfferingID,
		Actor:        actor,
		LevelRef:     req.LevelRef,
	})
	if err != nil {
		status := checkoutErrorStatus(err)
		logger.Error(r.Context()).
			Err(err).
			Str("offering_kind", req.OfferingKind).
			Uint("offering_id", req.OfferingID).
			Str("actor_kind", actor.Kind).
			Msg("Checkout failed")
		h.observe(r.Method, endpoint, status, start)
		respondJSON(w, status, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.observe(r.Method, endpoint, http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Checkout created",
		Data:    result,
	})
}

// checkoutErrorStatus maps coordinator errors to HTTP status codes
func checkoutErrorStatus(err error) int {
	var validationErr *checkout.ValidationError
	var gatewayErr *checkout.GatewaySessionError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetRegistration handles GET /api/registrations/{publicId}. The public id is
// unguessable, so the lookup needs no session.
func (h *CheckoutHandler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	reg, err := h.getRegistration.Handle(registrationquery.GetRegistrationQuery{
		PublicID: vars["publicId"],
	})
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Registration not found",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    reg,
	})
}

// MarkAttended handles POST /api/registrations/{publicId}/attend (admin)
func (h *CheckoutHandler) MarkAttended(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	vars := mux.Vars(r)

	reg, err := h.markAttended.Handle(registrationcommand.MarkAttendedCommand{
		PublicID: vars["publicId"],
	})
	if err != nil {
		h.observe(r.Method, "/api/registrations/attend", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.observe(r.Method, "/api/registrations/attend", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Registration marked as attended",
		Data:    reg,
	})
}

// MyRegistrations handles GET /api/members/me/registrations (authenticated)
func (h *CheckoutHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID, ok := memberhandler.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "User ID not found in context",
		})
		return
	}

	limit, offset := paginationParams(r)
	registrations, err := h.listMyRegistrations.Handle(registrationquery.ListMyRegistrationsQuery{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list registrations",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    registrations,
	})
}

// MyOrders handles GET /api/members/me/orders (authenticated)
func (h *CheckoutHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := memberhandler.UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "User ID not found in context",
		})
		return
	}

	limit, offset := paginationParams(r)
	orders, err := h.listMyOrders.Handle(ledgerquery.ListMyOrdersQuery{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list orders",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    orders,
	})
}

// RegisterRoutes registers all checkout routes
func (h *CheckoutHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/checkout", memberhandler.OptionalAuthMiddleware(h.Checkout)).Methods("POST")
	router.HandleFunc("/api/member/checkout", memberhandler.AuthMiddleware(h.MemberCheckout)).Methods("POST")
	router.HandleFunc("/api/registrations/{publicId}", h.GetRegistration).Methods("GET")
	router.HandleFunc("/api/registrations/{publicId}/attend", memberhandler.AdminMiddleware(h.MarkAttended)).Methods("POST")
	router.HandleFunc("/api/members/me/registrations", memberhandler.AuthMiddleware(h.MyRegistrations)).Methods("GET")
	router.HandleFunc("/api/members/me/orders", memberhandler.AuthMiddleware(h.MyOrders)).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *CheckoutHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Checkout service is healthy",
		})
	}).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func paginationParams(r *http.Request) (int, int) {
	limit := 20
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
