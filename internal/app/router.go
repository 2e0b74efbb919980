package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/wishloop/server/internal/module/addon"
	"github.com/wishloop/server/internal/module/billing"
	"github.com/wishloop/server/internal/module/goal"
	"github.com/wishloop/server/internal/module/habit"
	"github.com/wishloop/server/internal/module/user"
	"github.com/wishloop/server/internal/shared/config"
	"github.com/wishloop/server/internal/utils/metrics"
	"github.com/wishloop/server/internal/utils/middleware"
	"go.uber.org/zap"
)

type routerDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	limiter middleware.Limiter
	jwt     *user.JWTManager

	userHandler      *user.Handler
	userAdminHandler *user.AdminHandler
	billingHandler   *billing.Handler
	billingAdmin     *billing.AdminHandler
	webhookHandler   *billing.WebhookHandler
	goalHandler      *goal.Handler
	habitHandler     *habit.Handler
	addonHandler     *addon.Handler
	addonAdmin       *addon.AdminHandler
}

func buildRouter(deps *routerDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(deps.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(deps.metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", deps.metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Stripe signs the raw body; mounted outside the API group.
	deps.webhookHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(deps.limiter, middleware.DefaultRateLimitConfig()))

	// Public routes. Add-on generation uses optional auth: per-add-on
	// policy decides whether anonymous calls pass.
	public := api.Group("")
	public.Use(middleware.OptionalAuth(deps.jwt))
	{
		deps.userHandler.RegisterRoutes(public)
		deps.billingHandler.RegisterRoutes(public)
		deps.goalHandler.RegisterRoutes(public)
		deps.addonHandler.RegisterRoutes(public)
	}

	// Authenticated routes.
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(deps.jwt))
	{
		deps.userHandler.RegisterProtectedRoutes(protected)
		deps.billingHandler.RegisterProtectedRoutes(protected)
		deps.goalHandler.RegisterProtectedRoutes(protected)
		deps.habitHandler.RegisterProtectedRoutes(protected)
	}

	// Admin routes.
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(deps.jwt), middleware.RequireAdmin())
	{
		deps.userAdminHandler.RegisterRoutes(admin)
		deps.billingAdmin.RegisterRoutes(admin)
		deps.goalHandler.RegisterAdminRoutes(admin)
		deps.addonAdmin.RegisterRoutes(admin)
	}

	return r
}
