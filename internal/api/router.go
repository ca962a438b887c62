package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billalcoder/skinCare/internal/analysis"
	iauth "github.com/billalcoder/skinCare/internal/auth"
	"github.com/billalcoder/skinCare/internal/handlers"
	"github.com/billalcoder/skinCare/internal/middleware"
	"github.com/billalcoder/skinCare/internal/services"
)

// Deps carries the collaborators the router needs.
type Deps struct {
	JWT          *iauth.JWTService
	Sessions     *iauth.SessionService
	Users        *services.UserService
	Registration *services.RegistrationService
	History      *services.HistoryService
	Analysis     *analysis.Gateway

	// RateLimit is requests per window per (IP, path); zero disables limiting.
	RateLimit       int
	RateLimitWindow time.Duration
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user service must be provided")
	}
	if deps.Registration == nil {
		return nil, fmt.Errorf("registration service must be provided")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("history service must be provided")
	}
	if deps.Analysis == nil {
		return nil, fmt.Errorf("analysis gateway must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if deps.RateLimit > 0 {
		r.Use(middleware.RateLimit(deps.RateLimit, deps.RateLimitWindow))
	}

	r.NoRoute(middleware.NotFoundHandler)

	// Public endpoints
	r.GET("/api/health", handlers.Health())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Registration, deps.Sessions)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/login", authHandler.Login)
		// Logout stays public so a stale or already-deleted token still
		// gets a 200 instead of bouncing off the auth middleware.
		auth.POST("/logout", authHandler.Logout)
	}

	// Protected routes
	requireAuth := middleware.Auth(deps.JWT, deps.Sessions)

	api := r.Group("/api")
	api.Use(requireAuth)

	profileHandler := handlers.NewProfileHandler(deps.Users)
	user := api.Group("/user")
	{
		user.GET("/profile", profileHandler.Get)
		user.PUT("/profile", profileHandler.Update)
	}

	analysisHandler := handlers.NewAnalysisHandler(deps.Analysis)
	api.POST("/skin/analyze", analysisHandler.Analyze)

	historyHandler := handlers.NewHistoryHandler(deps.History)
	history := api.Group("/history")
	{
		history.GET("", historyHandler.List)
		history.GET("/search", historyHandler.Search)
		history.GET("/analytics", historyHandler.Analytics)
		history.GET("/:id", historyHandler.Get)
		history.DELETE("/:id", historyHandler.Delete)
		history.DELETE("", historyHandler.Clear)
	}

	return r, nil
}
