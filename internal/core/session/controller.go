// Package session owns the client's single Session.
//
// The Controller is the only writer of session state. Readers take
// snapshots with Session or subscribe to changes; route guards only ever see
// those snapshots, never errors.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/api/metrics"
	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/ports"
	"github.com/99minutos/storefront-console/internal/pkg/validation"
)

// Listener receives a snapshot after every state transition.
type Listener func(domain.Session)

type Controller struct {
	api      ports.AuthAPI
	tokens   ports.TokenStore
	validate *validation.Validator
	log      zerolog.Logger

	mu    sync.RWMutex
	state domain.Session

	subMu     sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// NewController starts in the uninitialized state; call Start to hydrate.
func NewController(api ports.AuthAPI, tokens ports.TokenStore, log zerolog.Logger) *Controller {
	return &Controller{
		api:       api,
		tokens:    tokens,
		validate:  validation.New(),
		log:       log,
		state:     domain.Uninitialized(),
		listeners: make(map[int]Listener),
	}
}

// BindForcedLogout registers ForceLogout with the HTTP layer.
func (c *Controller) BindForcedLogout(n ports.LogoutNotifier) {
	n.SetLogoutCallback(c.ForceLogout)
}

// Session returns a snapshot of the current state.
func (c *Controller) Session() domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// Subscribe registers fn for future transitions and returns its cancel func.
func (c *Controller) Subscribe(fn Listener) (cancel func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.listeners, id)
		c.subMu.Unlock()
	}
}

// Start derives the session from the stored credential. It never fails:
// any problem with the credential ends in the anonymous state.
func (c *Controller) Start(ctx context.Context) domain.Session {
	token, err := c.tokens.Read(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCredential) {
			c.log.Error().Err(err).Msg("failed to read stored credential")
		}
		return c.transition(domain.Anonymous())
	}

	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		c.log.Info().Err(err).Msg("stored credential rejected, starting anonymous")
		// Clear only if it is still the credential we checked; a concurrent
		// login may have replaced it.
		if current, rerr := c.tokens.Read(ctx); rerr == nil && current == token {
			if cerr := c.tokens.Clear(ctx); cerr != nil {
				c.log.Error().Err(cerr).Msg("failed to clear rejected credential")
			}
		}
		return c.transition(domain.Anonymous())
	}

	c.log.Info().Str("username", user.Username).Msg("session restored")
	return c.transition(domain.Authenticated(user))
}

// Login signs in, stores the returned credential and becomes authenticated.
// On failure the state is unchanged and the error is returned for display.
func (c *Controller) Login(ctx context.Context, username, password string) (*domain.UserProfile, error) {
	creds := domain.Credentials{Username: username, Password: password}
	if err := c.validate.Validate(creds); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	res, err := c.api.SignIn(ctx, creds)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if err := c.tokens.Save(ctx, res.Token); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store credential: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	c.log.Info().Str("username", res.User.Username).Msg("logged in")

	s := c.transition(domain.Authenticated(res.User))
	return s.CurrentUser, nil
}

// Register validates the form locally and creates the account. The session
// is not touched; the user logs in afterwards.
func (c *Controller) Register(ctx context.Context, reg domain.Registration) (*domain.UserProfile, error) {
	if reg.Role != "" {
		reg.Role = domain.ShortRole(reg.Role)
	}
	if err := c.validate.Validate(reg); err != nil {
		return nil, err
	}

	user, err := c.api.SignUp(ctx, reg)
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("username", user.Username).Msg("account registered")
	return user, nil
}

// Logout ends the session. The server call is best effort; locally the
// credential is always cleared and the session becomes anonymous.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.api.SignOut(ctx); err != nil {
		c.log.Warn().Err(err).Msg("sign-out call failed, logging out locally")
	}
	if err := c.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		c.log.Error().Err(err).Msg("failed to clear credential on logout")
	}
	c.transition(domain.Anonymous())
}

// ForceLogout resets to anonymous after the backend rejected the
// credential. The HTTP layer has already cleared the store.
func (c *Controller) ForceLogout() {
	c.log.Info().Msg("session invalidated by backend")
	c.transition(domain.Anonymous())
}

func (c *Controller) HasRole(name string) bool { return c.Session().HasRole(name) }
func (c *Controller) IsAdmin() bool            { return c.HasRole(domain.RoleAdmin) }
func (c *Controller) IsSeller() bool           { return c.HasRole(domain.RoleSeller) }
func (c *Controller) IsUser() bool             { return c.HasRole(domain.RoleUser) }

// transition swaps the state and notifies listeners outside the lock.
func (c *Controller) transition(next domain.Session) domain.Session {
	c.mu.Lock()
	prev := c.state.State()
	c.state = next
	snapshot := next.Clone()
	c.mu.Unlock()

	if prev != next.State() {
		metrics.SessionTransitionsTotal.WithLabelValues(next.State().String()).Inc()
		c.log.Debug().
			Stringer("from", prev).
			Stringer("to", next.State()).
			Msg("session transition")
	}

	c.subMu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.subMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot.Clone())
	}
	return snapshot
}
