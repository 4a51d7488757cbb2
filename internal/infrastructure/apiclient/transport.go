package apiclient

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/99minutos/storefront-console/internal/api/metrics"
	"github.com/99minutos/storefront-console/internal/core/domain"
)

// authTransport is the interception point for every backend request.
type authTransport struct {
	next   http.RoundTripper
	client *Client
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	// RoundTrip must not modify the caller's request.
	out := req.Clone(req.Context())

	token, err := t.client.tokens.Read(req.Context())
	switch {
	case err == nil:
		out.Header.Set("Authorization", "Bearer "+token)
	case errors.Is(err, domain.ErrNoCredential):
	default:
		t.client.log.Warn().Err(err).Msg("failed to read credential, sending request without it")
	}

	resp, err := t.next.RoundTrip(out)
	metrics.APIRequestDuration.WithLabelValues(req.Method).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(req.Method, "error").Inc()
		t.client.log.Error().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL.Redacted()).
			Msg("backend request failed")
		return nil, err
	}

	metrics.APIRequestsTotal.WithLabelValues(req.Method, statusClass(resp.StatusCode)).Inc()
	t.client.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("backend request")

	if resp.StatusCode == http.StatusUnauthorized {
		t.client.handleUnauthorized(out)
	}
	return resp, nil
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
