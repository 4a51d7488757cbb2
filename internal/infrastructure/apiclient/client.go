// Package apiclient is the console's single HTTP client for the backend API.
//
// Every request goes through authTransport, which attaches the stored bearer
// credential and turns a 401 on a non-auth endpoint into a forced logout:
// the credential is cleared, the registered logout callback runs, and after
// a short delay the navigator is sent to the login page. A shared flag keeps
// concurrent 401s from scheduling more than one redirect.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-console/internal/api/metrics"
	"github.com/99minutos/storefront-console/internal/core/domain"
	"github.com/99minutos/storefront-console/internal/core/ports"
)

// Backend auth endpoints, relative to the base URL.
const (
	PathSignIn      = "/auth/signin"
	PathSignUp      = "/auth/signup"
	PathSignOut     = "/auth/signout"
	PathCurrentUser = "/auth/user"

	authPrefix = "/auth/"
)

const (
	DefaultLoginPath     = "/login"
	DefaultRedirectDelay = 100 * time.Millisecond

	maxErrorBody = 1 << 20
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	// RedirectDelay lets in-flight state updates settle before navigating.
	RedirectDelay time.Duration
	LoginPath     string
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	Logger    zerolog.Logger
}

type Client struct {
	base   *url.URL
	http   *http.Client
	tokens ports.TokenStore
	nav    ports.Navigator
	log    zerolog.Logger

	loginPath     string
	redirectDelay time.Duration
	redirecting   atomic.Bool

	mu       sync.RWMutex
	onLogout func()
}

var (
	_ ports.AuthAPI        = (*Client)(nil)
	_ ports.LogoutNotifier = (*Client)(nil)
)

// New builds the shared client. tokens and nav are required.
func New(opts Options, tokens ports.TokenStore, nav ports.Navigator) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", opts.BaseURL)
	}
	if tokens == nil || nav == nil {
		return nil, errors.New("apiclient: token store and navigator are required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: cookie jar: %w", err)
	}

	next := opts.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	delay := opts.RedirectDelay
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}

	c := &Client{
		base:          base,
		tokens:        tokens,
		nav:           nav,
		log:           opts.Logger,
		loginPath:     loginPath,
		redirectDelay: delay,
	}
	c.http = &http.Client{
		Timeout:   opts.Timeout,
		Jar:       jar,
		Transport: &authTransport{next: next, client: c},
	}
	return c, nil
}

// SetLogoutCallback registers the function run when the backend rejects the
// stored credential. A later call replaces the earlier one.
func (c *Client) SetLogoutCallback(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLogout = fn
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// URL resolves a backend path (optionally with a query) against the base URL.
func (c *Client) URL(path string) string {
	rawQuery := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, rawQuery = path[:i], path[i+1:]
	}
	u := c.base.JoinPath(path)
	u.RawQuery = rawQuery
	return u.String()
}

// NewRequest builds a request for path with an optional JSON body.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: marshal body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), r)
	if err != nil {
		return nil, fmt.Errorf("apiclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do sends req through the intercepting transport. Transport failures wrap
// domain.ErrBackendUnavailable.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	return resp, nil
}

// GetJSON fetches path and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON posts in as JSON (nil means no body) and decodes into out (may be nil).
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	req, err := c.NewRequest(ctx, method, path, in)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(req.URL.Path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("apiclient: decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorBody covers the shapes the backend uses for failures: a message, an
// error string, and field-level errors either nested or at the top level.
type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
	Fields  map[string]string `json:"fields"`
}

func decodeError(path string, resp *http.Response) error {
	apiErr := &domain.APIError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if len(data) > 0 && json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		apiErr.Fields = body.Errors
		if len(apiErr.Fields) == 0 {
			apiErr.Fields = body.Fields
		}
	} else if len(data) > 0 {
		apiErr.Message = strings.TrimSpace(string(data))
	}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthEndpoint(path) {
		return fmt.Errorf("%w: %w", domain.ErrSessionExpired, apiErr)
	}
	return apiErr
}

// isAuthEndpoint reports whether path is under the backend's /auth/ tree.
// A 401 there is an answer about the credential, not a revoked session.
func isAuthEndpoint(path string) bool {
	return strings.Contains(path+"/", authPrefix)
}

// handleUnauthorized runs the forced-logout sequence for a rejected request.
func (c *Client) handleUnauthorized(req *http.Request) {
	if isAuthEndpoint(req.URL.Path) {
		return
	}

	current := c.nav.Current()
	if i := strings.IndexByte(current, '?'); i >= 0 {
		current = current[:i]
	}
	if current == c.loginPath {
		return
	}

	if !c.redirecting.CompareAndSwap(false, true) {
		c.log.Debug().Str("path", req.URL.Path).Msg("redirect to login already in flight")
		return
	}

	if err := c.tokens.Clear(context.WithoutCancel(req.Context())); err != nil {
		c.log.Error().Err(err).Msg("failed to clear rejected credential")
	}

	c.mu.RLock()
	fn := c.onLogout
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}

	metrics.ForcedLogoutsTotal.Inc()
	c.log.Warn().
		Str("path", req.URL.Path).
		Dur("delay", c.redirectDelay).
		Msg("credential rejected, redirecting to login")

	time.AfterFunc(c.redirectDelay, func() {
		c.nav.Navigate(c.loginPath)
		c.redirecting.Store(false)
	})
}
