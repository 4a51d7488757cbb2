package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Tracker is the navigator as seen by the web console.
type Tracker interface {
	Visit(path string)
	TakePending() (string, bool)
}

// Navigation records each page request as the current location and turns a
// navigation scheduled by the API client into a 303.
func Navigation(t Tracker, skipper echomiddleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echomiddleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			requested := c.Request().URL.RequestURI()
			if target, ok := t.TakePending(); ok && pathOf(target) != c.Request().URL.Path {
				return c.Redirect(http.StatusSeeOther, target)
			}

			t.Visit(requested)
			return next(c)
		}
	}
}

func pathOf(location string) string {
	if i := strings.IndexByte(location, '?'); i >= 0 {
		return location[:i]
	}
	return location
}
