package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/membership-platform/internal/catalog/usecase/command"
	"github.com/tair/membership-platform/internal/catalog/usecase/query"
	memberhandler "github.com/tair/membership-platform/internal/member/handler"
	"github.com/tair/membership-platform/pkg/logger"
)

// CatalogHandler handles HTTP requests for events and membership levels
type CatalogHandler struct {
	createEvent *command.CreateEventHandler
	cancelEvent *command.CancelEventHandler
	createLevel *command.CreateLevelHandler
	getEvent    *query.GetEventHandler
	listEvents  *query.ListEventsHandler
	listLevels  *query.ListLevelsHandler

	requestCounter *prometheus.CounterVec
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	createEvent *command.CreateEventHandler,
	cancelEvent *command.CancelEventHandler,
	createLevel *command.CreateLevelHandler,
	getEvent *query.GetEventHandler,
	listEvents *query.ListEventsHandler,
	listLevels *query.ListLevelsHandler,
) *CatalogHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_service_requests_total",
			Help: "Total number of requests to catalog endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)
	prometheus.MustRegister(requestCounter)

	return &CatalogHandler{
		createEvent:    createEvent,
		cancelEvent:    cancelEvent,
		createLevel:    createLevel,
		getEvent:       getEvent,
		listEvents:     listEvents,
		listLevels:     listLevels,
		requestCounter: requestCounter,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateEvent handles POST /api/events (admin)
func (h *CatalogHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title               string    `json:"title"`
		Description         string    `json:"description"`
		Location            string    `json:"location"`
		ImageURL            string    `json:"image_url"`
		StartsAt            time.Time `json:"starts_at"`
		EndsAt              time.Time `json:"ends_at"`
		BasePriceCents      int64     `json:"base_price_cents"`
		MemberDiscountCents int64     `json:"member_discount_cents"`
		Capacity            int       `json:"capacity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.requestCounter.WithLabelValues(r.Method, "/api/events", http.StatusText(http.StatusBadRequest)).Inc()
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	event, err := h.createEvent.Handle(command.CreateEventCommand{
		Title:               req.Title,
		Description:         req.Description,
		Location:            req.Location,
		ImageURL:            req.ImageURL,
		StartsAt:            req.StartsAt,
		EndsAt:              req.EndsAt,
		BasePriceCents:      req.BasePriceCents,
		MemberDiscountCents: req.MemberDiscountCents,
		Capacity:            req.Capacity,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create event")
		h.requestCounter.WithLabelValues(r.Method, "/api/events", http.StatusText(http.StatusBadRequest)).Inc()
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	h.requestCounter.WithLabelValues(r.Method, "/api/events", http.StatusText(http.StatusCreated)).Inc()
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Event created successfully",
		Data:    event,
	})
}

// CancelEvent handles POST /api/events/{id}/cancel (admin)
func (h *CatalogHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid event ID"})
		return
	}

	if err := h.cancelEvent.Handle(command.CancelEventCommand{EventID: uint(id)}); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Event cancelled",
	})
}

// GetEvent handles GET /api/events/{id}
func (h *CatalogHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid event ID"})
		return
	}

	event, err := h.getEvent.Handle(query.GetEventQuery{ID: uint(id)})
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Event not found"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: event})
}

// ListEvents handles GET /api/events
func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)
	events, err := h.listEvents.Handle(query.ListEventsQuery{
		Limit:        limit,
		Offset:       offset,
		UpcomingOnly: r.URL.Query().Get("upcoming") == "true",
	})
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list events"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: events})
}

// CreateLevel handles POST /api/levels (admin)
func (h *CatalogHandler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Description    string `json:"description"`
		PriceCents     int64  `json:"price_cents"`
		DurationMonths int    `json:"duration_months"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	level, err := h.createLevel.Handle(command.CreateLevelCommand{
		Name:           req.Name,
		Description:    req.Description,
		PriceCents:     req.PriceCents,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create membership level")
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Membership level created successfully",
		Data:    level,
	})
}

// ListLevels handles GET /api/levels
func (h *CatalogHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)
	levels, err := h.listLevels.Handle(query.ListLevelsQuery{Limit: limit, Offset: offset})
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list levels"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: levels})
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/events", h.ListEvents).Methods("GET")
	router.HandleFunc("/api/events/{id}", h.GetEvent).Methods("GET")
	router.HandleFunc("/api/events", memberhandler.AdminMiddleware(h.CreateEvent)).Methods("POST")
	router.HandleFunc("/api/events/{id}/cancel", memberhandler.AdminMiddleware(h.CancelEvent)).Methods("POST")
	router.HandleFunc("/api/levels", h.ListLevels).Methods("GET")
	router.HandleFunc("/api/levels", memberhandler.AdminMiddleware(h.CreateLevel)).Methods("POST")
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
