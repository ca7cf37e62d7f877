// Package metrics defines the Prometheus collectors of the gateway. They
// register on the default registry at import time and are served on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authbridge"

var (
	// SessionsCreatedTotal counts generated session ids.
	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "created_total",
			Help:      "Total number of session identifiers generated",
		},
	)

	// LoginRedirectsTotal counts redirects to an identity client.
	LoginRedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_redirects_total",
			Help:      "Total number of redirects to an identity client by client",
		},
		[]string{"client"},
	)

	// CallbackOutcomesTotal counts callback results by client and outcome.
	CallbackOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "callback_outcomes_total",
			Help:      "Total number of callback results by client and outcome",
		},
		[]string{"client", "outcome"}, // outcome: profile, action_required, failure
	)

	// ProfileLookupsTotal counts stored profile lookups by result.
	ProfileLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "profile_lookups_total",
			Help:      "Total number of stored profile lookups by result",
		},
		[]string{"result"}, // result: hit, miss
	)

	// LogoutsTotal counts logouts.
	LogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logouts_total",
			Help:      "Total number of logouts",
		},
	)
)

func RecordSessionCreated() {
	SessionsCreatedTotal.Inc()
}

func RecordLoginRedirect(client string) {
	LoginRedirectsTotal.WithLabelValues(client).Inc()
}

// RecordCallbackOutcome records one callback result. An empty client name
// is recorded as "unknown".
func RecordCallbackOutcome(client, outcome string) {
	if client == "" {
		client = "unknown"
	}
	CallbackOutcomesTotal.WithLabelValues(client, outcome).Inc()
}

func RecordProfileLookup(found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	ProfileLookupsTotal.WithLabelValues(result).Inc()
}

func RecordLogout() {
	LogoutsTotal.Inc()
}
