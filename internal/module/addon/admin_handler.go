package addon

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles admin add-on management endpoints.
type AdminHandler struct {
	service *Service
}

// NewAdminHandler creates a new admin add-on handler.
func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers the admin add-on routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	addOns := r.Group("/add-ons")
	{
		addOns.GET("", h.List)
		addOns.POST("", h.Create)
		addOns.PUT("/:id", h.Update)
		addOns.DELETE("/:id", h.Delete)
	}
}

// List returns all add-ons including disabled ones.
//
//	@Summary	List all add-ons
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/admin/add-ons [get]
func (h *AdminHandler) List(c *gin.Context) {
	addOns, err := h.service.List(c.Request.Context(), true)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"add_ons": addOns})
}

// Create creates an add-on.
//
//	@Summary	Create add-on
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateRequest	true	"Add-on"
//	@Success	201		{object}	AddOn
//	@Security	BearerAuth
//	@Router		/admin/add-ons [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addOn, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, addOn)
}

// Update applies partial updates to an add-on.
//
//	@Summary	Update add-on
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Add-on ID"
//	@Param		request	body		UpdateRequest	true	"Updates"
//	@Success	200		{object}	AddOn
//	@Security	BearerAuth
//	@Router		/admin/add-ons/{id} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid add-on id"})
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addOn, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, addOn)
}

// Delete soft deletes an add-on.
//
//	@Summary	Delete add-on
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path	string	true	"Add-on ID"
//	@Success	204
//	@Security	BearerAuth
//	@Router		/admin/add-ons/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid add-on id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
