package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wishloop/server/internal/utils/pagination"
)

// AdminHandler handles superadmin user management endpoints.
type AdminHandler struct {
	service *Service
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers the admin user routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("", h.List)
		users.GET("/:id", h.Get)
		users.POST("/:id/suspend", h.Suspend)
		users.POST("/:id/activate", h.Activate)
	}
}

// List returns users matching the filter.
//
//	@Summary	List users
//	@Tags		Admin
//	@Produce	json
//	@Param		status		query		string	false	"Filter by status"
//	@Param		email		query		string	false	"Filter by email substring"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/admin/users [get]
func (h *AdminHandler) List(c *gin.Context) {
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
		Status:  query.Status,
		Email:   query.Email,
		IsAdmin: query.IsAdmin,
	}

	users, total, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		handleError(c, err)
		return
	}

	responses := make([]Response, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      responses,
		"pagination": page.Info(total),
	})
}

// Get returns a single user.
//
//	@Summary	Get user
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	Response
//	@Security	BearerAuth
//	@Router		/admin/users/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

// Suspend suspends a user account.
//
//	@Summary	Suspend user
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"User ID"
//	@Param		request	body		SuspendRequest	true	"Suspend request"
//	@Success	200		{object}	MessageResponse
//	@Security	BearerAuth
//	@Router		/admin/users/{id}/suspend [post]
func (h *AdminHandler) Suspend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Suspend(c.Request.Context(), id, req.Reason); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User suspended"})
}

// Activate reactivates a suspended user account.
//
//	@Summary	Activate user
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	MessageResponse
//	@Security	BearerAuth
//	@Router		/admin/users/{id}/activate [post]
func (h *AdminHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.service.Activate(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User activated"})
}
