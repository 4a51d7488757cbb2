package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-console/internal/api/metrics"
	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/guard"
)

// SessionSource hands out session snapshots.
type SessionSource interface {
	Session() domain.Session
}

// Guard applies a route guard to the wrapped handler. Loading sessions get
// a placeholder instead of the page; redirects use 303.
func Guard(g guard.Guard, sessions SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := g.Decide(sessions.Session(), c.Request().URL.RequestURI())
			metrics.GuardDecisionsTotal.WithLabelValues(g.Name(), outcomeLabel(d)).Inc()

			switch d.Outcome {
			case guard.Loading:
				return c.JSON(http.StatusOK, map[string]bool{"loading": true})
			case guard.Redirect:
				return c.Redirect(http.StatusSeeOther, d.Location)
			}
			return next(c)
		}
	}
}

func outcomeLabel(d guard.Decision) string {
	if d.Outcome != guard.Redirect {
		return d.Outcome.String()
	}
	if strings.HasPrefix(d.Location, guard.LoginPath) {
		return "login"
	}
	return "unauthorized"
}
