// Package guard decides whether a page may render for the current session.
//
// Decisions are pure functions of a session snapshot; they never fail.
package guard

import (
	"net/url"
	"strings"

	"github.com/99minutos/storefront-console/internal/core/domain"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"

	// ReturnParam carries the originally requested location to the login page.
	ReturnParam = "from"
)

// Outcome is what the caller should do with the page.
type Outcome int

const (
	Render Outcome = iota
	Loading
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict. Location is set for Redirect.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Guard gates a page on authentication plus an optional role requirement.
type Guard struct {
	name  string
	allow func(domain.Session) bool
}

func (g Guard) Name() string { return g.name }

// RequireAuth admits any authenticated session.
func RequireAuth() Guard {
	return Guard{name: "auth"}
}

// RequireAdmin admits admins, and sellers too when allowSeller is set.
func RequireAdmin(allowSeller bool) Guard {
	if allowSeller {
		return Guard{name: "admin_or_seller", allow: func(s domain.Session) bool {
			return s.IsAdmin() || s.IsSeller()
		}}
	}
	return Guard{name: "admin", allow: domain.Session.IsAdmin}
}

// RequireSeller admits sellers and admins.
func RequireSeller() Guard {
	return Guard{name: "seller", allow: func(s domain.Session) bool {
		return s.IsSeller() || s.IsAdmin()
	}}
}

// Decide evaluates the guard for a session and the location being requested.
func (g Guard) Decide(s domain.Session, requested string) Decision {
	switch s.State() {
	case domain.StateUninitialized:
		return Decision{Outcome: Loading}
	case domain.StateAnonymous:
		return Decision{Outcome: Redirect, Location: LoginLocation(requested)}
	}

	if g.allow != nil && !g.allow(s) {
		return Decision{Outcome: Redirect, Location: UnauthorizedPath}
	}
	return Decision{Outcome: Render}
}

// LoginLocation builds the login URL that returns to requested afterwards.
func LoginLocation(requested string) string {
	from := ReturnPath(requested)
	if from == "/" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{ReturnParam: {from}}.Encode()
}

// ReturnPath sanitizes a post-login return target: only local absolute
// paths are allowed, anything else (including the login page) becomes "/".
func ReturnPath(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return "/"
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	if u.Path == LoginPath {
		return "/"
	}
	return from
}
