package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/api/handler"
	"github.com/99minutos/storefront-console/internal/api/middleware"
	"github.com/99minutos/storefront-console/internal/core/guard"
	"github.com/99minutos/storefront-console/internal/core/ports"
)

// Dependencies are the collaborators the console routes need.
type Dependencies struct {
	Sessions  handler.SessionService
	Backend   handler.Backend
	Ledger    ports.PaymentLedger
	Navigator middleware.Tracker
	// Checks are reported by the readiness probe.
	Checks map[string]handler.Checker
	Logger zerolog.Logger
	// Registry receives the HTTP metrics; nil means a fresh registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront_console_http",
		Registerer: reg,
		Skipper:    isInfraPath,
	}))
	e.Use(middleware.Navigation(deps.Navigator, isInfraPath))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Sessions)
	pagesHandler := handler.NewPagesHandler(deps.Sessions, deps.Backend, deps.Ledger, deps.Logger)

	requireAuth := middleware.Guard(guard.RequireAuth(), deps.Sessions)
	requireAdmin := middleware.Guard(guard.RequireAdmin(false), deps.Sessions)
	requireCatalog := middleware.Guard(guard.RequireAdmin(true), deps.Sessions)
	requireSeller := middleware.Guard(guard.RequireSeller(), deps.Sessions)

	// --- Public routes ---
	e.GET("/", authHandler.Home)
	e.GET(guard.LoginPath, authHandler.LoginView)
	e.POST(guard.LoginPath, authHandler.Login)
	e.POST("/register", authHandler.Register)
	e.POST("/logout", authHandler.Logout)
	e.GET(guard.UnauthorizedPath, authHandler.Unauthorized)

	// --- Guarded pages ---
	e.GET("/account", pagesHandler.Account, requireAuth)
	e.GET("/orders", pagesHandler.Orders, requireAuth)
	e.GET("/checkout/confirm", pagesHandler.ConfirmCheckout, requireAuth)
	e.GET("/admin/orders", pagesHandler.AdminOrders, requireAdmin)
	e.GET("/admin/catalog", pagesHandler.AdminCatalog, requireCatalog)
	e.GET("/seller/payouts", pagesHandler.SellerPayouts, requireSeller)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))

	return e
}

// isInfraPath skips probes and metrics in the page middleware.
func isInfraPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/health") || p == "/metrics"
}
