package habit

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/wishloop/server/internal/shared/errors"
	"github.com/wishloop/server/internal/utils/middleware"
	"github.com/wishloop/server/internal/utils/pagination"
)

// Handler handles HTTP requests for habits.
type Handler struct {
	service *Service
}

// NewHandler creates a new habit handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	habits := r.Group("/habits")
	{
		habits.POST("", h.Create)
		habits.GET("", h.List)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)

		habits.POST("/:id/check-ins", h.CheckIn)
		habits.DELETE("/:id/check-ins/:day", h.UndoCheckIn)
		habits.GET("/:id/check-ins", h.History)
		habits.GET("/:id/stats", h.Stats)
	}
}

// Create creates a new habit.
//
//	@Summary		Create habit
//	@Description	Create a habit. Denied with 402 when the plan limit is reached.
//	@Tags			Habits
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateRequest	true	"Habit"
//	@Success		201		{object}	Habit
//	@Failure		402		{object}	map[string]interface{}
//	@Security		BearerAuth
//	@Router			/habits [post]
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

	habit, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, habit)
}

// List returns the caller's habits.
//
//	@Summary	List habits
//	@Tags		Habits
//	@Produce	json
//	@Param		goal_id		query		string	false	"Filter by linked goal"
//	@Param		archived	query		bool	false	"Filter by archived"
//	@Success	200			{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/habits [get]
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
		GoalID:   query.GoalID,
		Archived: query.Archived,
	}

	habits, total, err := h.service.List(c.Request.Context(), userID, filter, page)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habits":     habits,
		"pagination": page.Info(total),
	})
}

// Get returns a single habit.
//
//	@Summary	Get habit
//	@Tags		Habits
//	@Produce	json
//	@Param		id	path		string	true	"Habit ID"
//	@Success	200	{object}	Habit
//	@Security	BearerAuth
//	@Router		/habits/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, habitID, ok := h.identify(c)
	if !ok {
		return
	}

	habit, err := h.service.Get(c.Request.Context(), userID, habitID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Update applies partial updates to a habit.
//
//	@Summary	Update habit
//	@Tags		Habits
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Habit ID"
//	@Param		request	body		UpdateRequest	true	"Updates"
//	@Success	200		{object}	Habit
//	@Security	BearerAuth
//	@Router		/habits/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID, habitID, ok := h.identify(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.service.Update(c.Request.Context(), userID, habitID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Delete soft deletes a habit.
//
//	@Summary	Delete habit
//	@Tags		Habits
//	@Produce	json
//	@Param		id	path	string	true	"Habit ID"
//	@Success	204
//	@Security	BearerAuth
//	@Router		/habits/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID, habitID, ok := h.identify(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, habitID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckIn records a completion for today (or a given past day).
//
//	@Summary	Check in
//	@Tags		Habits
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Habit ID"
//	@Param		request	body		CheckInRequest	true	"Check-in"
//	@Success	201		{object}	CheckIn
//	@Failure	409		{object}	map[string]string
//	@Security	BearerAuth
//	@Router		/habits/{id}/check-ins [post]
func (h *Handler) CheckIn(c *gin.Context) {
	userID, habitID, ok := h.identify(c)
	if !ok {
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkIn, err := h.service.CheckIn(c.Request.Context(), userID, habitID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkIn)
}

// UndoCheckIn removes a check-in for a day.
//
//	@Summary	Undo check-in
//	@Tags		Habits
//	@Produce	json
//	@Param		id	path	string	true	"Habit ID"
//	@Param		day	path	string	true	"Day (YYYY-MM-DD)"
//	@Success	204
//	@Security	BearerAuth
//	@Router		/habits/{id}/check-ins/{day} [delete]
func (h *Handler) UndoCheckIn(c *gin.Context) {
	userID, habitID, ok := h.identify(c)
	if !ok {
		return
	}

	day, err := time.Parse("2006-01-02", c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid day, expected YYYY-MM-DD"})
		return
	}

	if err := h.service.UndoCheckIn(c.Request.Context(), userID, habitID, day); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// History returns check-ins within a date range.
//
//	@Summary	Check-in history
//	@Tags		Habits
//	@Produce	json
//	@Param		id		path		string	true	"Habit ID"
//	@Param		from	query		string	false	"Start day (YYYY-MM-DD)"
//	@Param		to		query		string	false	"End day (YYYY-MM-DD)"
//	@Success	200		{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/habits/{id}/check-ins [get]
func (h *Handler) History(c *gin.Context) {
	userID, habitID, ok := h.identify(c)
	if !ok {
		return
	}

	var query HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	to := time.Now()
	if query.To != nil {
		to = *query.To
	}
	from := to.AddDate(0, -1, 0)
	if query.From != nil {
		from = *query.From
	}

	checkIns, err := h.service.History(c.Request.Context(), userID, habitID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"check_ins": checkIns})
}

// Stats returns streak statistics for a habit.
//
//	@Summary	Habit stats
//	@Tags		Habits
//	@Produce	json
//	@Param		id	path		string	true	"Habit ID"
//	@Success	200	{object}	StatsResponse
//	@Security	BearerAuth
//	@Router		/habits/{id}/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	userID, habitID, ok := h.identify(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID, habitID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
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
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
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
	case errors.Is(err, ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "habit_not_found", "message": "Habit not found"})
	case errors.Is(err, ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "already_checked_in", "message": "Already checked in for this day"})
	case errors.Is(err, ErrCheckInNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "check_in_not_found", "message": "Check-in not found"})
	case errors.Is(err, ErrFutureCheckIn):
		c.JSON(http.StatusBadRequest, gin.H{"error": "future_check_in", "message": "Cannot check in for a future day"})
	case errors.Is(err, ErrInvalidFrequency):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_frequency", "message": "Invalid habit frequency"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "An internal error occurred"})
	}
}
