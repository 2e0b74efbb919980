package billing

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody caps the Stripe webhook payload size.
const maxWebhookBody = 65536

// WebhookHandler handles incoming Stripe webhook deliveries.
type WebhookHandler struct {
	service *Service
	stripe  StripeClient
	logger  *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *Service, stripeClient StripeClient, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		stripe:  stripeClient,
		logger:  logger,
	}
}

// RegisterRoutes registers the webhook endpoint. Mounted outside the
// API group; Stripe signs the raw body, so no auth middleware applies.
func (h *WebhookHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/webhooks/stripe", h.HandleStripe)
}

// HandleStripe verifies and applies a Stripe event.
//
//	@Summary	Stripe webhook
//	@Tags		Billing
//	@Accept		json
//	@Success	200	{object}	map[string]string
//	@Failure	400	{object}	map[string]string
//	@Router		/webhooks/stripe [post]
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	event, err := h.stripe.VerifyWebhookSignature(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if err := h.service.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		h.logger.Error("stripe webhook processing failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		// Non-2xx makes Stripe retry the delivery.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": "true"})
}
