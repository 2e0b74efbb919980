package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin plan catalog management.
type AdminHandler struct {
	service *Service
}

// NewAdminHandler creates a new billing admin handler.
func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers admin plan routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	plans := r.Group("/plans")
	{
		plans.GET("", h.List)
		plans.PUT("/:key", h.Update)
	}
}

// List returns every plan, inactive ones included.
//
//	@Summary	List all plans
//	@Tags		Admin
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/admin/plans [get]
func (h *AdminHandler) List(c *gin.Context) {
	plans, err := h.service.ListAllPlans(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// Update applies a partial update to a plan and its limits.
//
//	@Summary	Update plan
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		key		path		string				true	"Plan key"
//	@Param		request	body		UpdatePlanRequest	true	"Plan update"
//	@Success	200		{object}	Plan
//	@Failure	400		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Security	BearerAuth
//	@Router		/admin/plans/{key} [put]
func (h *AdminHandler) Update(c *gin.Context) {
	key := PlanKey(c.Param("key"))
	if !key.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown plan key"})
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.service.UpdatePlan(c.Request.Context(), key, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}
