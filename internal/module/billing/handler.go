package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"github.com/wishloop/server/internal/utils/middleware"
)

// Handler handles HTTP requests for plans and subscriptions.
type Handler struct {
	service *Service
}

// NewHandler creates a new billing handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public billing routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/plans", h.ListPlans)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	billing := r.Group("/billing")
	{
		billing.GET("/subscription", h.GetSubscription)
		billing.POST("/checkout", h.CreateCheckout)
	}
}

// ListPlans returns the active plan catalog.
//
//	@Summary	List plans
//	@Tags		Billing
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// GetSubscription returns the caller's subscription and usage.
//
//	@Summary	Get subscription
//	@Tags		Billing
//	@Produce	json
//	@Success	200	{object}	SubscriptionResponse
//	@Security	BearerAuth
//	@Router		/billing/subscription [get]
func (h *Handler) GetSubscription(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sub, err := h.service.GetSubscription(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	usage, err := h.service.UsageSnapshot(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubscriptionResponse{
		Subscription: sub,
		Usage:        usage,
	})
}

// CreateCheckout starts a Stripe checkout session.
//
//	@Summary	Create checkout session
//	@Tags		Billing
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CheckoutRequest	true	"Checkout request"
//	@Success	200		{object}	CheckoutResponse
//	@Failure	400		{object}	map[string]string
//	@Security	BearerAuth
//	@Router		/billing/checkout [post]
func (h *Handler) CreateCheckout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.PlanKey.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan key"})
		return
	}

	email := middleware.GetEmail(c)

	url, err := h.service.CreateCheckout(c.Request.Context(), userID, email, req.PlanKey)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{CheckoutURL: url})
}

func handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	switch {
	case errors.Is(err, ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "plan_not_found", "message": "Plan not found"})
	case errors.Is(err, ErrCheckoutUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "checkout_unavailable", "message": "This plan cannot be purchased"})
	case errors.Is(err, ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription_not_found", "message": "Subscription not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "An internal error occurred"})
	}
}
