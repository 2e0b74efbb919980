package goal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"github.com/wishloop/server/internal/utils/middleware"
	"github.com/wishloop/server/internal/utils/pagination"
)

// Handler handles HTTP requests for goals.
type Handler struct {
	service *Service
}

// NewHandler creates a new goal handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public goal routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/goal-categories", h.ListCategories)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	goals := r.Group("/goals")
	{
		goals.POST("", h.Create)
		goals.GET("", h.List)
		goals.GET("/:id", h.Get)
		goals.PUT("/:id", h.Update)
		goals.POST("/:id/complete", h.Complete)
		goals.POST("/:id/archive", h.Archive)
		goals.DELETE("/:id", h.Delete)
	}
}

// RegisterAdminRoutes registers admin-only category management routes.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	categories := r.Group("/goal-categories")
	{
		categories.POST("", h.CreateCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}

// Create creates a new goal.
//
//	@Summary		Create goal
//	@Description	Create a goal. Denied with 402 when the plan limit is reached.
//	@Tags			Goals
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateRequest	true	"Goal"
//	@Success		201		{object}	Goal
//	@Failure		402		{object}	map[string]interface{}
//	@Security		BearerAuth
//	@Router			/goals [post]
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// List returns the caller's goals.
//
//	@Summary	List goals
//	@Tags		Goals
//	@Produce	json
//	@Param		status		query		string	false	"Filter by status"
//	@Param		category_id	query		string	false	"Filter by category"
//	@Param		search		query		string	false	"Title search"
//	@Success	200			{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/goals [get]
func (h *Handler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page := pagination.New()
	if err := c.ShouldBindQuery(page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := &Filter{
		Status:     query.Status,
		CategoryID: query.CategoryID,
		Search:     query.Search,
	}

	goals, total, err := h.service.List(c.Request.Context(), userID, filter, page)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goals":      goals,
		"pagination": page.Info(total),
	})
}

// Get returns a single goal.
//
//	@Summary	Get goal
//	@Tags		Goals
//	@Produce	json
//	@Param		id	path		string	true	"Goal ID"
//	@Success	200	{object}	Goal
//	@Security	BearerAuth
//	@Router		/goals/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, goalID, ok := h.identify(c)
	if !ok {
		return
	}

	goal, err := h.service.Get(c.Request.Context(), userID, goalID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Update applies partial updates to a goal.
//
//	@Summary	Update goal
//	@Tags		Goals
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Goal ID"
//	@Param		request	body		UpdateRequest	true	"Updates"
//	@Success	200		{object}	Goal
//	@Security	BearerAuth
//	@Router		/goals/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, goalID, ok := h.identify(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.service.Update(c.Request.Context(), userID, goalID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Complete marks a goal as completed.
//
//	@Summary	Complete goal
//	@Tags		Goals
//	@Produce	json
//	@Param		id	path		string	true	"Goal ID"
//	@Success	200	{object}	Goal
//	@Security	BearerAuth
//	@Router		/goals/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	userID, goalID, ok := h.identify(c)
	if !ok {
		return
	}

	goal, err := h.service.Complete(c.Request.Context(), userID, goalID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Archive archives a goal.
//
//	@Summary	Archive goal
//	@Tags		Goals
//	@Produce	json
//	@Param		id	path		string	true	"Goal ID"
//	@Success	200	{object}	Goal
//	@Security	BearerAuth
//	@Router		/goals/{id}/archive [post]
func (h *Handler) Archive(c *gin.Context) {
	userID, goalID, ok := h.identify(c)
	if !ok {
		return
	}

	goal, err := h.service.Archive(c.Request.Context(), userID, goalID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Delete soft deletes a goal.
//
//	@Summary	Delete goal
//	@Tags		Goals
//	@Produce	json
//	@Param		id	path	string	true	"Goal ID"
//	@Success	204
//	@Security	BearerAuth
//	@Router		/goals/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, goalID, ok := h.identify(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, goalID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Categories ---

// ListCategories returns all goal categories.
//
//	@Summary	List goal categories
//	@Tags		Goals
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/goal-categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory creates a goal category.
//
//	@Summary	Create goal category
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CategoryRequest	true	"Category"
//	@Success	201		{object}	Category
//	@Security	BearerAuth
//	@Router		/admin/goal-categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates a goal category.
//
//	@Summary	Update goal category
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Category ID"
//	@Param		request	body		CategoryRequest	true	"Category"
//	@Success	200		{object}	Category
//	@Security	BearerAuth
//	@Router		/admin/goal-categories/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.service.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a goal category.
//
//	@Summary	Delete goal category
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path	string	true	"Category ID"
//	@Success	204
//	@Security	BearerAuth
//	@Router		/admin/goal-categories/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Helpers ---

func (h *Handler) identify(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goal id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return
	}

	switch {
	case errors.Is(err, ErrGoalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "goal_not_found", "message": "Goal not found"})
	case errors.Is(err, ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found", "message": "Category not found"})
	case errors.Is(err, ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "already_completed", "message": "Goal is already completed"})
	case errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status", "message": "Invalid goal status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "An internal error occurred"})
	}
}
