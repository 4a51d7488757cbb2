// Package stubapi is a small in-process stand-in for the storefront REST
// API. It speaks the same wire format as the real backend for sign-up,
// sign-in, sign-out and the who-am-I call, plus a handful of role-gated data
// endpoints, so the console can be run and tested without the real service.
package stubapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/api/handler"
	"github.com/99minutos/storefront-console/internal/api/middleware"
	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/ports"
	"github.com/99minutos/storefront-console/internal/pkg/validation"
)

// BasePath prefixes every API route.
const BasePath = "/api"

type Options struct {
	Users     ports.UserRepository
	JWTSecret string
	TokenTTL  time.Duration
	Logger    zerolog.Logger
	// Checks are reported by the readiness probe.
	Checks map[string]handler.Checker
}

type Server struct {
	echo    *echo.Echo
	auth    *AuthService
	handler *Handler
	log     zerolog.Logger
}

func NewServer(opts Options) *Server {
	users := opts.Users
	if users == nil {
		users = NewMemoryUserRepository()
	}
	auth := NewAuthService(users, opts.JWTSecret, opts.TokenTTL)
	h := NewHandler(auth, auth.tokenTTL, opts.Logger)

	s := &Server{auth: auth, handler: h, log: opts.Logger}
	s.echo = s.routes(opts.Checks)
	return s
}

func (s *Server) routes(checks map[string]handler.Checker) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(s.log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront_stubapi",
		Registerer: reg,
	}))

	authenticated := Authenticate(s.auth)

	// --- Auth routes ---
	api := e.Group(BasePath)
	api.POST("/auth/signup", s.handler.SignUp)
	api.POST("/auth/signin", s.handler.SignIn)
	api.POST("/auth/signout", s.handler.SignOut)
	api.GET("/auth/user", s.handler.CurrentUser, authenticated)

	// --- Data routes ---
	api.GET("/orders/my", s.handler.MyOrders, authenticated)
	api.POST("/payments/confirm", s.handler.ConfirmPayment, authenticated)
	api.GET("/admin/orders", s.handler.AllOrders, authenticated, RequireRole(domain.RoleAdmin))
	api.GET("/admin/products", s.handler.Products, authenticated, RequireRole(domain.RoleAdmin, domain.RoleSeller))
	api.GET("/seller/payouts", s.handler.Payouts, authenticated, RequireRole(domain.RoleSeller, domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	return e
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("stub backend listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// Seed registers accounts, skipping ones that already exist.
func (s *Server) Seed(ctx context.Context, regs ...domain.Registration) error {
	for _, reg := range regs {
		if _, err := s.auth.Register(ctx, reg); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				continue
			}
			return err
		}
		s.log.Info().Str("username", reg.Username).Str("role", reg.Role).Msg("seeded account")
	}
	return nil
}

// Confirmations reports how many times a checkout session was confirmed.
func (s *Server) Confirmations(sessionID string) int {
	return s.handler.orders.confirmationCount(sessionID)
}

// DemoAccounts are the accounts seeded for local development.
func DemoAccounts() []domain.Registration {
	return []domain.Registration{
		{Username: "admin", Email: "admin@storefront.local", Password: "admin123", Role: "admin"},
		{Username: "seller", Email: "seller@storefront.local", Password: "seller123", Role: "seller"},
		{Username: "user", Email: "user@storefront.local", Password: "user123", Role: "user"},
	}
}
