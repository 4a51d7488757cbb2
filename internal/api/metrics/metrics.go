// Package metrics defines the custom Prometheus metrics for the storefront
// console. It is the single source of truth for metric names, labels, and
// help strings; promauto registers them with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront_console"

// ── Backend API client ───────────────────────────────────────────────────────

// APIRequestsTotal counts requests sent to the backend API.
// Labels:
//   - method: HTTP method
//   - code: response status class ("2xx", "4xx", "5xx") or "error" on transport failure
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of backend API requests, by method and status class.",
	},
	[]string{"method", "code"},
)

// APIRequestDuration measures backend round-trip latency.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of backend API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ForcedLogoutsTotal counts 401 responses that cleared the credential and
// scheduled a redirect to the login page. Duplicates suppressed by the
// in-flight guard are not counted.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of forced logouts triggered by rejected credentials.",
	},
)

// ── Session ──────────────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Label:
//   - state: "authenticated" or "anonymous"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by target state.",
	},
	[]string{"state"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "rejected", "invalid", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Route guards ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Labels:
//   - guard: guard name (e.g. "auth", "admin", "admin_or_seller", "seller")
//   - outcome: "render", "loading", "login", "unauthorized"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by guard and outcome.",
	},
	[]string{"guard", "outcome"},
)
