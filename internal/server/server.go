// Package server assembles the HTTP API: repositories, services, handlers
// and the middleware chain around them.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"pocket-budget/internal/config"
	"pocket-budget/internal/handlers"
	"pocket-budget/internal/middleware"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const (
	shutdownTimeout     = 10 * time.Second
	limiterSweepPeriod  = time.Minute
	tokenSweepPeriod    = time.Hour
	apiPrefix           = "/api/v1"
	importBodyAllowance = 64 << 10
)

// TokenSweeper removes expired refresh and blacklisted tokens.
type TokenSweeper interface {
	CleanupExpiredTokens() error
}

// Server owns the echo instance and the background sweeps that go with it.
type Server struct {
	cfg     *config.Config
	echo    *echo.Echo
	limiter *middleware.IPRateLimiter
	sweeper TokenSweeper
	logger  *slog.Logger
}

// New wires every route against db. Metrics are registered on registry,
// which /metrics serves together with the default gatherer.
func New(cfg *config.Config, db *gorm.DB, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.Validator = handlers.NewValidator()

	limiter := middleware.NewIPRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.TraceIDHeader},
	}))
	e.Use(limiter.Middleware())

	s := &Server{
		cfg:     cfg,
		echo:    e,
		limiter: limiter,
		logger:  logger,
	}
	s.registerRoutes(db, registry)
	return s
}

// WithTokenSweeper enables the periodic expired-token cleanup.
func (s *Server) WithTokenSweeper(sweeper TokenSweeper) *Server {
	s.sweeper = sweeper
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) registerRoutes(db *gorm.DB, registry *prometheus.Registry) {
	userRepo := repositories.NewUserRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	blacklistRepo := repositories.NewBlacklistedTokenRepository(db)
	txnRepo := repositories.NewTransactionRepository(db)
	goalRepo := repositories.NewGoalRepository(db)
	budgetRepo := repositories.NewBudgetRepository(db)

	metrics := services.NewPrometheusMetrics(registry)
	audit := services.NewAuditLogger(s.logger, auditRepo)
	categories := services.NewCategoryService()
	formatter := services.NewCurrencyFormatter(s.cfg.Budget.DefaultCurrency)

	tokenService := services.NewTokenService(&s.cfg.JWT)
	passwordService := services.NewPasswordService(s.cfg.Security.BCryptCost)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, auditRepo, blacklistRepo, passwordService, tokenService, metrics, s.logger)

	transactions := services.NewTransactionService(txnRepo, categories, audit, metrics, s.logger)
	imports := services.NewImportService(transactions, categories, audit, metrics, s.logger)
	insights := services.NewInsightsService(txnRepo, metrics, s.logger)
	statements := services.NewStatementService(transactions, s.logger)
	goals := services.NewGoalService(goalRepo, audit, metrics, s.logger)
	budget := services.NewBudgetService(budgetRepo, audit, s.logger)
	rewards := services.NewRewardsService(transactions, userRepo, metrics, s.logger)
	onboarding := services.NewOnboardingService(userRepo, txnRepo, goalRepo, budgetRepo, transactions,
		services.NewTransactionGenerator(), audit, s.logger, services.WithDemoExpenseCount(s.cfg.Budget.DemoSeedCount))

	authHandler := handlers.NewAuthHandler(authService, tokenService)
	transactionHandler := handlers.NewTransactionHandler(transactions, imports, insights, statements, formatter, s.cfg.Budget.ImportMaxBytes)
	goalHandler := handlers.NewGoalHandler(goals, formatter)
	budgetHandler := handlers.NewBudgetHandler(budget)
	rewardsHandler := handlers.NewRewardsHandler(rewards)
	onboardingHandler := handlers.NewOnboardingHandler(onboarding)
	activityHandler := handlers.NewActivityHandler(userRepo, auditRepo)
	healthHandler := handlers.NewHealthCheckHandler(db)

	s.echo.GET("/health", healthHandler.HealthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
		prometheus.Gatherers{registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)))

	api := s.echo.Group(apiPrefix)
	requireAuth := middleware.RequireAuth(tokenService, blacklistRepo)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout, requireAuth)
	auth.GET("/me", authHandler.Me, requireAuth)

	api.GET("/budget-setup/catalog", budgetHandler.Catalog)

	protected := api.Group("", requireAuth)

	protected.GET("/onboarding", onboardingHandler.Status)
	protected.POST("/onboarding/demo", onboardingHandler.SeedDemo)

	protected.GET("/budget-setup", budgetHandler.GetSetup)
	protected.PUT("/budget-setup", budgetHandler.SaveSetup)
	protected.GET("/subscriptions", budgetHandler.ListSubscriptions)
	protected.DELETE("/subscriptions/:id", budgetHandler.DeleteSubscription)

	txns := protected.Group("/transactions")
	txns.GET("/categories", transactionHandler.ListCategories)
	txns.GET("/insights", transactionHandler.GetInsights)
	txns.GET("/monthly", transactionHandler.GetMonthlyStatement)
	txns.POST("/import", transactionHandler.ImportTransactions,
		echomw.BodyLimit(fmt.Sprintf("%dB", s.cfg.Budget.ImportMaxBytes+importBodyAllowance)))
	txns.GET("", transactionHandler.ListTransactions)
	txns.POST("", transactionHandler.CreateTransaction)
	txns.DELETE("", transactionHandler.ClearTransactions)
	txns.DELETE("/:id", transactionHandler.DeleteTransaction)

	goalsGroup := protected.Group("/goals")
	goalsGroup.GET("", goalHandler.ListGoals)
	goalsGroup.GET("/suggestions", goalHandler.Suggestions)
	goalsGroup.POST("", goalHandler.CreateGoal)
	goalsGroup.POST("/:id/contributions", goalHandler.Contribute)
	goalsGroup.DELETE("/:id", goalHandler.DeleteGoal)

	protected.GET("/rewards", rewardsHandler.GetRewards)
	protected.GET("/rewards/leaderboard", rewardsHandler.GetLeaderboard)

	protected.GET("/activity", activityHandler.MyActivity)

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.GET("/users/:userId", activityHandler.GetUser)
	admin.GET("/users/:userId/activity", activityHandler.UserActivity)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Server.Host, s.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	stop := make(chan struct{})
	defer close(stop)
	go s.limiter.Run(limiterSweepPeriod, stop)
	if s.sweeper != nil {
		go s.sweepTokens(stop)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr, "environment", s.cfg.Server.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) sweepTokens(stop <-chan struct{}) {
	ticker := time.NewTicker(tokenSweepPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.sweeper.CleanupExpiredTokens(); err != nil {
				s.logger.Warn("Expired token cleanup failed", "error", err)
			}
		}
	}
}
