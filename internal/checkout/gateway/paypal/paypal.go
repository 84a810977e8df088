package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"

	"github.com/tair/membership-platform/internal/checkout"
	"github.com/tair/membership-platform/pkg/logger"
)

// Config holds PayPal client configuration. WebhookID enables signature
// verification on incoming webhook requests; leave it empty to skip.
type Config struct {
	ClientID     string
	ClientSecret string
	WebhookID    string
	Live         bool
}

// Gateway creates hosted PayPal checkout sessions
type Gateway struct {
	client    *paypal.Client
	webhookID string
}

// New initializes the PayPal client and fetches an access token
func New(cfg Config) (*Gateway, error) {
	apiBase := paypal.APIBaseSandBox
	if cfg.Live {
		apiBase = paypal.APIBaseLive
	}

	client, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("failed to create PayPal client: %w", err)
	}

	if _, err := client.GetAccessToken(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to get PayPal access token: %w", err)
	}

	logger.Logger.Info().Bool("live", cfg.Live).Msg("PayPal gateway initialized")

	return &Gateway{client: client, webhookID: cfg.WebhookID}, nil
}

// VerifyWebhook checks the webhook request signature with PayPal. With no
// webhook id configured, verification is skipped.
func (g *Gateway) VerifyWebhook(r *http.Request) error {
	if g.webhookID == "" {
		return nil
	}
	resp, err := g.client.VerifyWebhookSignature(r.Context(), r, g.webhookID)
	if err != nil {
		return fmt.Errorf("webhook verification request failed: %w", err)
	}
	if resp.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("webhook verification status: %s", resp.VerificationStatus)
	}
	return nil
}

// Name returns the provider name recorded on payment rows
func (g *Gateway) Name() string {
	return "paypal"
}

// CreateCheckoutSession creates a PayPal order and returns its approval URL.
// The request metadata rides in the purchase unit's custom_id so webhook
// events can be mapped back to internal records.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req checkout.SessionRequest) (*checkout.CheckoutSession, error) {
	value := decimal.NewFromInt(req.Item.UnitAmountCents).
		Div(decimal.NewFromInt(100)).
		StringFixed(2)

	purchaseUnits := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: req.ReferenceID,
			CustomID:    req.Metadata,
			Description: req.Item.Description,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(req.Item.Currency),
				Value:    value,
			},
		},
	}

	appContext := &paypal.ApplicationContext{
		ReturnURL: req.SuccessURL,
		CancelURL: req.CancelURL,
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, purchaseUnits, nil, appContext)
	if err != nil {
		return nil, fmt.Errorf("failed to create PayPal order: %w", err)
	}

	approvalURL := ""
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}
	if approvalURL == "" {
		return nil, fmt.Errorf("PayPal order %s has no approval URL", order.ID)
	}

	payload, err := json.Marshal(order)
	if err != nil {
		payload = nil
	}

	return &checkout.CheckoutSession{
		ID:      order.ID,
		URL:     approvalURL,
		Payload: string(payload),
	}, nil
}
