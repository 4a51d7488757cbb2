package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/ports"
)

// Backend fetches page data from the backend API.
type Backend interface {
	GetJSON(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, in, out any) error
}

// Backend data paths, relative to the API base URL.
const (
	pathMyOrders        = "/orders/my"
	pathAllOrders       = "/admin/orders"
	pathProducts        = "/admin/products"
	pathPayouts         = "/seller/payouts"
	pathPaymentsConfirm = "/payments/confirm"
)

// PagesHandler serves the guarded pages. Guards run before these handlers,
// so the session is always authenticated here.
type PagesHandler struct {
	sessions SessionService
	backend  Backend
	ledger   ports.PaymentLedger
	log      zerolog.Logger
}

func NewPagesHandler(sessions SessionService, backend Backend, ledger ports.PaymentLedger, log zerolog.Logger) *PagesHandler {
	return &PagesHandler{sessions: sessions, backend: backend, ledger: ledger, log: log}
}

type pageResponse struct {
	Page string              `json:"page"`
	User *domain.UserProfile `json:"user"`
	Data json.RawMessage     `json:"data,omitempty"`
}

func (h *PagesHandler) Account(c echo.Context) error {
	return c.JSON(http.StatusOK, pageResponse{Page: "account", User: h.sessions.Session().CurrentUser})
}

func (h *PagesHandler) Orders(c echo.Context) error {
	return h.proxy(c, "orders", pathMyOrders)
}

func (h *PagesHandler) AdminOrders(c echo.Context) error {
	return h.proxy(c, "admin_orders", pathAllOrders)
}

func (h *PagesHandler) AdminCatalog(c echo.Context) error {
	return h.proxy(c, "admin_catalog", pathProducts)
}

func (h *PagesHandler) SellerPayouts(c echo.Context) error {
	return h.proxy(c, "seller_payouts", pathPayouts)
}

func (h *PagesHandler) proxy(c echo.Context, page, path string) error {
	var data json.RawMessage
	if err := h.backend.GetJSON(c.Request().Context(), path, &data); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse{
		Page: page,
		User: h.sessions.Session().CurrentUser,
		Data: data,
	})
}

type confirmRequest struct {
	SessionID string `json:"sessionId"`
}

// ConfirmCheckout confirms a payment session once. Reloading the page
// answers from the ledger without calling the backend again.
func (h *PagesHandler) ConfirmCheckout(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return &domain.ValidationError{Fields: map[string]string{"session_id": "session_id is required"}}
	}

	ctx := c.Request().Context()
	processed, err := h.ledger.IsProcessed(ctx, sessionID)
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", sessionID).Msg("payment ledger unavailable, confirming with backend")
	}
	if processed {
		return c.JSON(http.StatusOK, domain.PaymentConfirmation{
			SessionID:        sessionID,
			Status:           "PROCESSED",
			AlreadyProcessed: true,
		})
	}

	var conf domain.PaymentConfirmation
	if err := h.backend.PostJSON(ctx, pathPaymentsConfirm, confirmRequest{SessionID: sessionID}, &conf); err != nil {
		return err
	}
	if conf.SessionID == "" {
		conf.SessionID = sessionID
	}

	if err := h.ledger.MarkProcessed(context.WithoutCancel(ctx), sessionID); err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to record processed payment")
	}
	h.log.Info().Str("session_id", sessionID).Str("order_id", string(conf.OrderID)).Msg("payment confirmed")
	return c.JSON(http.StatusOK, conf)
}
