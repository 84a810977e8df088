package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/membership-platform/internal/reconcile/usecase/command"
	"github.com/tair/membership-platform/pkg/logger"
)

// WebhookVerifier checks a webhook request's signature with the gateway.
// A nil verifier skips verification (local development, tests).
type WebhookVerifier interface {
	VerifyWebhook(r *http.Request) error
}

// WebhookHandler receives gateway callbacks and feeds them to the reconciler
type WebhookHandler struct {
	reconcile *command.ReconcilePaymentHandler
	verifier  WebhookVerifier

	eventCounter *prometheus.CounterVec
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(reconcile *command.ReconcilePaymentHandler, verifier WebhookVerifier) *WebhookHandler {
	eventCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_webhook_events_total",
			Help: "Total number of gateway webhook events received",
		},
		[]string{"provider", "event_type", "result"},
	)
	prometheus.MustRegister(eventCounter)

	return &WebhookHandler{
		reconcile:    reconcile,
		verifier:     verifier,
		eventCounter: eventCounter,
	}
}

// paypalEvent is the subset of the PayPal webhook envelope we consume.
// custom_id carries the metadata written at session creation; captures put it
// on the resource, order events nest it in purchase_units.
type paypalEvent struct {
	ID         string `json:"id"`
	EventType  string `json:"event_type"`
	CreateTime string `json:"create_time"`
	Resource   struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		CustomID      string `json:"custom_id"`
		PurchaseUnits []struct {
			ReferenceID string `json:"reference_id"`
			CustomID    string `json:"custom_id"`
		} `json:"purchase_units"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

func (e *paypalEvent) customID() string {
	if e.Resource.CustomID != "" {
		return e.Resource.CustomID
	}
	for _, unit := range e.Resource.PurchaseUnits {
		if unit.CustomID != "" {
			return unit.CustomID
		}
	}
	return ""
}

func (e *paypalEvent) providerRef() string {
	if e.Resource.SupplementaryData.RelatedIDs.OrderID != "" {
		return e.Resource.SupplementaryData.RelatedIDs.OrderID
	}
	return e.Resource.ID
}

// PayPal event types we act on; everything else is acknowledged and ignored
var paypalOutcomes = map[string]string{
	"PAYMENT.CAPTURE.COMPLETED": command.OutcomeSucceeded,
	"CHECKOUT.ORDER.COMPLETED":  command.OutcomeSucceeded,
	"PAYMENT.CAPTURE.DENIED":    command.OutcomeFailed,
	"PAYMENT.CAPTURE.DECLINED":  command.OutcomeFailed,
	"CHECKOUT.ORDER.VOIDED":     command.OutcomeFailed,
}

// HandlePayPal handles POST /api/webhooks/paypal. The gateway is always
// acknowledged with 200 once the event is parsed; reconciliation failures
// are flagged for review, never bounced back for redelivery.
func (h *WebhookHandler) HandlePayPal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.eventCounter.WithLabelValues("paypal", "unknown", "bad_request").Inc()
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false})
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if h.verifier != nil {
		if err := h.verifier.VerifyWebhook(r); err != nil {
			logger.Warn(r.Context()).Err(err).Msg("Rejected webhook with invalid signature")
			h.eventCounter.WithLabelValues("paypal", "unknown", "bad_signature").Inc()
			respondJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false})
			return
		}
	}

	var event paypalEvent
	if err := json.Unmarshal(body, &event); err != nil || event.ID == "" {
		h.eventCounter.WithLabelValues("paypal", "unknown", "bad_request").Inc()
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false})
		return
	}

	outcome, handled := paypalOutcomes[event.EventType]
	if !handled {
		logger.Info(r.Context()).
			Str("event_type", event.EventType).
			Str("event_id", event.ID).
			Msg("Ignoring unhandled webhook event type")
		h.eventCounter.WithLabelValues("paypal", event.EventType, "ignored").Inc()
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}

	err = h.reconcile.Handle(r.Context(), command.ReconcilePaymentCommand{
		Provider:        "paypal",
		ProviderEventID: event.ID,
		EventType:       event.EventType,
		Outcome:         outcome,
		ProviderRef:     event.providerRef(),
		Metadata:        event.customID(),
		RawPayload:      string(body),
	})
	result := "processed"
	if err != nil {
		result = "flagged"
		logger.Error(r.Context()).
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Dur("elapsed", time.Since(start)).
			Msg("Webhook event flagged for manual review")
	}

	h.eventCounter.WithLabelValues("paypal", event.EventType, result).Inc()
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/webhooks/paypal", h.HandlePayPal).Methods("POST")
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
