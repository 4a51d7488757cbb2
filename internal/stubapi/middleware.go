package stubapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/ports"
)

// CookieName is the legacy session cookie set on sign-in.
const CookieName = "storefront_jwt"

const (
	ctxUser  = "user"
	ctxToken = "token"
)

// Authenticate resolves the bearer token, falling back to the session
// cookie, and stores the account in the context.
func Authenticate(svc ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := requestToken(c)
			if err != nil {
				return err
			}

			user, err := svc.Authenticate(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ctxUser, user)
			c.Set(ctxToken, token)
			return next(c)
		}
	}
}

// RequireRole rejects accounts holding none of roles with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed = append(allowed, domain.CanonicalRole(r))
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := ctxAccount(c)
			if err != nil {
				return err
			}
			for _, r := range allowed {
				if user.Roles.Has(r) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"message": "forbidden"})
		}
	}
}

// requestToken reads the credential from the Authorization header or the
// session cookie. A malformed header is rejected outright.
func requestToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
}

// ctxAccount returns the account set by Authenticate.
func ctxAccount(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(ctxUser).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}
