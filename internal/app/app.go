// Package app wires configuration, storage, services and HTTP routing
// into a runnable server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wishloop/server/internal/module/addon"
	"github.com/wishloop/server/internal/module/addon/provider"
	"github.com/wishloop/server/internal/module/billing"
	"github.com/wishloop/server/internal/module/goal"
	"github.com/wishloop/server/internal/module/habit"
	"github.com/wishloop/server/internal/module/user"
	"github.com/wishloop/server/internal/shared/cache"
	"github.com/wishloop/server/internal/shared/config"
	"github.com/wishloop/server/internal/shared/database"
	"github.com/wishloop/server/internal/shared/logger"
	"github.com/wishloop/server/internal/utils/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the assembled application.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  redis.UniversalClient
	server *http.Server
}

// New loads configuration and wires all components.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := database.Migrate(db,
		&user.User{},
		&user.RefreshToken{},
		&billing.Plan{},
		&billing.PlanLimit{},
		&billing.Subscription{},
		&goal.Category{},
		&goal.Goal{},
		&habit.Habit{},
		&habit.CheckIn{},
		&addon.AddOn{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	m := metrics.New("wishloop")

	jwtManager := user.NewJWTManager(&user.JWTConfig{
		Secret:             cfg.Auth.JWTSecret,
		AccessTokenExpiry:  cfg.Auth.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.Auth.RefreshTokenExpiry,
	})

	// User
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, jwtManager, log)

	// Billing
	planRepo := billing.NewPlanRepository(db)
	subRepo := billing.NewSubscriptionRepository(db)
	entitlements := billing.NewEntitlements(planRepo, subRepo, m, log)
	stripeClient := billing.NewStripeClient(&cfg.Stripe)
	billingService := billing.NewService(planRepo, subRepo, entitlements, stripeClient, log)

	// Goals & habits, wired into the entitlement gate as usage counters.
	goalRepo := goal.NewRepository(db)
	goalService := goal.NewService(goalRepo, entitlements, log)
	habitRepo := habit.NewRepository(db)
	habitService := habit.NewService(habitRepo, entitlements, log)

	entitlements.RegisterCounter(billing.ResourceGoals, goalRepo)
	entitlements.RegisterCounter(billing.ResourceHabits, habitRepo)

	// Add-ons
	addonRepo := addon.NewRepository(db)
	generator := provider.NewOpenAIClient(&cfg.AI, log)
	addonService := addon.NewService(addonRepo, generator, entitlements, cfg.AI.MaxItemCount, log)

	if err := billingService.SeedPlans(context.Background()); err != nil {
		return nil, fmt.Errorf("seed plans: %w", err)
	}

	router := buildRouter(&routerDeps{
		cfg:     cfg,
		logger:  log,
		metrics: m,
		limiter: cache.NewRateLimiter(redisClient),
		jwt:     jwtManager,

		userHandler:      user.NewHandler(userService),
		userAdminHandler: user.NewAdminHandler(userService),
		billingHandler:   billing.NewHandler(billingService),
		billingAdmin:     billing.NewAdminHandler(billingService),
		webhookHandler:   billing.NewWebhookHandler(billingService, stripeClient, log),
		goalHandler:      goal.NewHandler(goalService),
		habitHandler:     habit.NewHandler(habitService),
		addonHandler:     addon.NewHandler(addonService, m),
		addonAdmin:       addon.NewAdminHandler(addonService),
	})

	return &App{
		cfg:    cfg,
		logger: log,
		db:     db,
		redis:  redisClient,
		server: &http.Server{
			Addr:         cfg.Server.Address,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (a *App) Run() error {
	a.logger.Info("server starting", zap.String("address", a.cfg.Server.Address))
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and closes connections.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", zap.Error(err))
	}
	if err := cache.Close(a.redis); err != nil {
		a.logger.Error("redis close failed", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Error("database close failed", zap.Error(err))
	}

	_ = a.logger.Sync()
	return nil
}
