package stubapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/ports"
)

type Handler struct {
	auth     ports.AuthService
	orders   *orderBook
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewHandler(auth ports.AuthService, tokenTTL time.Duration, log zerolog.Logger) *Handler {
	return &Handler{auth: auth, orders: newOrderBook(), tokenTTL: tokenTTL, log: log}
}

type signUpRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     []string `json:"role"`
}

type signInResponse struct {
	JWTToken string   `json:"jwtToken"`
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type profileResponse struct {
	Message  string   `json:"message,omitempty"`
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type confirmRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type confirmResponse struct {
	SessionID        string `json:"sessionId"`
	OrderID          int    `json:"orderId"`
	Status           string `json:"status"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

func message(msg string) map[string]string {
	return map[string]string{"message": msg}
}

func validationFailed(c echo.Context, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"message": ve.Error(),
			"errors":  ve.Fields,
		})
	}
	return c.JSON(http.StatusBadRequest, message(err.Error()))
}

// SignUp creates an account. The role list carries at most one short role
// name; an empty list means the default user role.
func (h *Handler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid payload"))
	}

	reg := domain.Registration{Username: req.Username, Email: req.Email, Password: req.Password}
	if len(req.Role) > 0 {
		reg.Role = domain.ShortRole(req.Role[0])
	}
	if err := c.Validate(&reg); err != nil {
		return validationFailed(c, err)
	}

	user, err := h.auth.Register(c.Request().Context(), reg)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return c.JSON(http.StatusBadRequest, message("Error: Username is already taken!"))
		case errors.Is(err, domain.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, message(err.Error()))
		}
		h.log.Error().Err(err).Str("username", reg.Username).Msg("sign-up failed")
		return c.JSON(http.StatusInternalServerError, message("internal error"))
	}

	h.log.Info().Str("username", user.Username).Strs("roles", user.Roles).Msg("account created")
	return c.JSON(http.StatusOK, profileResponse{
		Message:  "User registered successfully!",
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
	})
}

// SignIn returns a bearer token and also sets it as the legacy session cookie.
func (h *Handler) SignIn(c echo.Context) error {
	var req domain.Credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, message("Bad credentials"))
		}
		h.log.Error().Err(err).Msg("sign-in failed")
		return c.JSON(http.StatusInternalServerError, message("internal error"))
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})
	return c.JSON(http.StatusOK, signInResponse{
		JWTToken: token,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
	})
}

// SignOut revokes whatever credential accompanies the request and always
// succeeds.
func (h *Handler) SignOut(c echo.Context) error {
	if token, err := requestToken(c); err == nil {
		if err := h.auth.Logout(c.Request().Context(), token); err != nil {
			h.log.Warn().Err(err).Msg("token revocation failed")
		}
	}

	c.SetCookie(&http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
	return c.JSON(http.StatusOK, message("You've been signed out!"))
}

// CurrentUser reports the authenticated account.
func (h *Handler) CurrentUser(c echo.Context) error {
	user, err := ctxAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
	})
}

func (h *Handler) MyOrders(c echo.Context) error {
	user, err := ctxAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.orders.ownedBy(user.Username))
}

func (h *Handler) AllOrders(c echo.Context) error {
	return c.JSON(http.StatusOK, h.orders.all())
}

func (h *Handler) Products(c echo.Context) error {
	return c.JSON(http.StatusOK, catalog)
}

// Payouts lists the caller's payouts; admins see every seller's.
func (h *Handler) Payouts(c echo.Context) error {
	user, err := ctxAccount(c)
	if err != nil {
		return err
	}

	out := make([]Payout, 0, len(payouts))
	for _, p := range payouts {
		if user.Roles.Has(domain.RoleAdmin) || p.Seller == user.Username {
			out = append(out, p)
		}
	}
	return c.JSON(http.StatusOK, out)
}

// ConfirmPayment turns a checkout session into an order.
func (h *Handler) ConfirmPayment(c echo.Context) error {
	user, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	order, seen := h.orders.confirm(user.Username, req.SessionID)
	if seen {
		h.log.Warn().Str("session_id", req.SessionID).Msg("payment session confirmed more than once")
	}
	return c.JSON(http.StatusOK, confirmResponse{
		SessionID:        req.SessionID,
		OrderID:          order.ID,
		Status:           order.Status,
		AlreadyProcessed: seen,
	})
}
