package billing

import (
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/wishloop/server/internal/shared/config"
)

// StripeClient wraps the Stripe API calls used by the billing service.
type StripeClient interface {
	CreateCheckoutSession(priceID, planKey, customerEmail, clientReferenceID string) (*stripe.CheckoutSession, error)
	VerifyWebhookSignature(payload []byte, sigHeader string) (stripe.Event, error)
}

type stripeClient struct {
	cfg *config.StripeConfig
}

// NewStripeClient creates a Stripe client from config. The package-level
// API key is set once here.
func NewStripeClient(cfg *config.StripeConfig) StripeClient {
	stripe.Key = cfg.APIKey
	return &stripeClient{cfg: cfg}
}

func (c *stripeClient) CreateCheckoutSession(priceID, planKey, customerEmail, clientReferenceID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail:     stripe.String(customerEmail),
		ClientReferenceID: stripe.String(clientReferenceID),
		SuccessURL:        stripe.String(c.cfg.SuccessURL),
		CancelURL:         stripe.String(c.cfg.CancelURL),
	}
	// Webhook payloads don't expand line items; the metadata lets the
	// completion handler map the purchase back to a plan.
	params.AddMetadata("plan_key", planKey)
	return session.New(params)
}

func (c *stripeClient) VerifyWebhookSignature(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.cfg.WebhookSecret)
}
