package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/guard"
)

// SessionService is the part of the session controller the pages use.
type SessionService interface {
	Session() domain.Session
	Login(ctx context.Context, username, password string) (*domain.UserProfile, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.UserProfile, error)
	Logout(ctx context.Context)
}

type AuthHandler struct {
	sessions SessionService
}

func NewAuthHandler(sessions SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	From     string `json:"from" form:"from"`
}

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

type sessionResponse struct {
	State           string              `json:"state"`
	IsAuthenticated bool                `json:"isAuthenticated"`
	Loading         bool                `json:"loading"`
	User            *domain.UserProfile `json:"user,omitempty"`
}

func newSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{
		State:           s.State().String(),
		IsAuthenticated: s.IsAuthenticated,
		Loading:         s.Loading,
		User:            s.CurrentUser,
	}
}

type loginViewResponse struct {
	View string `json:"view"`
	From string `json:"from"`
}

// Home reports the current session.
func (h *AuthHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(h.sessions.Session()))
}

// LoginView shows the login form, or sends an already authenticated user
// on to where they were going.
func (h *AuthHandler) LoginView(c echo.Context) error {
	from := guard.ReturnPath(c.QueryParam(guard.ReturnParam))
	if h.sessions.Session().IsAuthenticated {
		return c.Redirect(http.StatusSeeOther, from)
	}
	return c.JSON(http.StatusOK, loginViewResponse{View: "login", From: from})
}

// Login signs in and redirects to the page that asked for it.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.From == "" {
		req.From = c.QueryParam(guard.ReturnParam)
	}

	if _, err := h.sessions.Login(c.Request().Context(), req.Username, req.Password); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, guard.ReturnPath(req.From))
}

// Register creates an account; the caller logs in separately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.sessions.Register(c.Request().Context(), domain.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Logout always ends on the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

// Unauthorized is where role guards send sessions lacking the role.
func (h *AuthHandler) Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{
		"error": "you do not have permission to view this page",
	})
}
