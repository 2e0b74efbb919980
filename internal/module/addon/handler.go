package addon

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"github.com/wishloop/server/internal/utils/metrics"
	"github.com/wishloop/server/internal/utils/middleware"
)

// Handler handles HTTP requests for add-ons and generation.
type Handler struct {
	service *Service
	metrics *metrics.Metrics
}

// NewHandler creates a new add-on handler.
func NewHandler(service *Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

// RegisterRoutes registers add-on routes. Generation uses optional
// auth: per-add-on policy decides whether anonymous calls pass.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	addOns := r.Group("/add-ons")
	{
		addOns.GET("", h.List)
		addOns.GET("/:slug", h.Get)
		addOns.POST("/generate", h.Generate)
	}
}

// List returns the enabled add-on catalog.
//
//	@Summary	List add-ons
//	@Tags		AddOns
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/add-ons [get]
func (h *Handler) List(c *gin.Context) {
	addOns, err := h.service.List(c.Request.Context(), false)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"add_ons": addOns})
}

// Get returns a single add-on by slug. Disabled add-ons are hidden
// from the public catalog.
//
//	@Summary	Get add-on
//	@Tags		AddOns
//	@Produce	json
//	@Param		slug	path		string	true	"Add-on slug"
//	@Success	200		{object}	AddOn
//	@Router		/add-ons/{slug} [get]
func (h *Handler) Get(c *gin.Context) {
	addOn, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	if !addOn.IsEnabled {
		handleError(c, ErrAddOnNotFound)
		return
	}

	c.JSON(http.StatusOK, addOn)
}

// sseEvent is one streamed content fragment.
type sseEvent struct {
	Content string `json:"content"`
}

// Generate streams generated content as server-sent events. The stream
// ends with a "[DONE]" data line; an early end without it means the
// generation failed and the caller should re-request.
//
//	@Summary		Generate content
//	@Description	Stream AI-generated items for an add-on as SSE
//	@Tags			AddOns
//	@Accept			json
//	@Produce		text/event-stream
//	@Param			request	body	GenerateRequest	true	"Generation request"
//	@Success		200		{string}	string	"SSE stream"
//	@Failure		400		{object}	map[string]string
//	@Failure		401		{object}	map[string]string
//	@Failure		403		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/add-ons/generate [post]
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)

	start := time.Now()
	stream, err := h.service.GenerateStream(c.Request.Context(), userID, &req)
	if err != nil {
		h.metrics.GenerationsTotal.WithLabelValues("unknown", "rejected").Inc()
		handleError(c, err)
		return
	}
	slug := stream.AddOn.Slug

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Flush()

	status := "completed"
	clientGone := c.Request.Context().Done()

relay:
	for {
		select {
		case chunk, ok := <-stream.Chunks:
			if !ok {
				// Upstream finished cleanly.
				writeSSE(c, sseTerminator)
				break relay
			}
			if chunk.Err != nil {
				// Abnormal end: terminate without the done marker so
				// the client detects truncation.
				status = "upstream_error"
				break relay
			}

			payload, err := json.Marshal(sseEvent{Content: chunk.Content})
			if err != nil {
				status = "encode_error"
				break relay
			}
			writeSSE(c, string(payload))
			h.metrics.GenerationChunks.WithLabelValues(slug).Inc()

		case <-clientGone:
			// Client disconnected; context cancellation releases the
			// upstream connection.
			status = "client_disconnect"
			break relay
		}
	}

	h.metrics.GenerationsTotal.WithLabelValues(slug, status).Inc()
	h.metrics.GenerationDuration.WithLabelValues(slug).Observe(time.Since(start).Seconds())
}

// sseTerminator marks normal end of a generation stream.
const sseTerminator = "[DONE]"

func writeSSE(c *gin.Context, data string) {
	c.Writer.WriteString("data: " + data + "\n\n")
	c.Writer.Flush()
}

func handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	switch {
	case errors.Is(err, ErrAddOnNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "addon_not_found", "message": "Add-on not found"})
	case errors.Is(err, ErrAddOnDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "addon_disabled", "message": "This add-on is disabled"})
	case errors.Is(err, ErrPremiumRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "premium_required", "message": "Upgrade your plan to use this add-on"})
	case errors.Is(err, ErrPromptTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt_too_short", "message": "Prompt is too short"})
	case errors.Is(err, ErrInvalidCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_count", "message": "Item count is out of range"})
	case errors.Is(err, ErrSlugAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "slug_already_exists", "message": "An add-on with this slug already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "An internal error occurred"})
	}
}
