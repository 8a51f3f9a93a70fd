// Package metrics holds the Prometheus collectors shared by the stores and
// the HTTP layer. All collectors register on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StoreMutations counts applied mutations by store and operation
	StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_mutations_total",
		Help: "Mutations applied to session state by store and operation",
	}, []string{"store", "op"})

	// FlushErrors counts failed writes to the key-value backend
	FlushErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_flush_errors_total",
		Help: "Failed state flushes to the key-value backend by store",
	}, []string{"store"})

	// MalformedState counts persisted values discarded at load time
	MalformedState = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_malformed_state_total",
		Help: "Persisted values that failed to decode and were reset",
	}, []string{"key"})

	// ThemeChanges counts theme switches by the resulting theme
	ThemeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_theme_changes_total",
		Help: "Theme changes by resulting theme",
	}, []string{"theme"})

	// GuardRedirects counts navigations sent to the login page
	GuardRedirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_guard_redirects_total",
		Help: "Navigations redirected to login by target route",
	}, []string{"route"})

	// HTTPRequests counts served requests by method and status class
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_http_requests_total",
		Help: "HTTP requests by method and status class",
	}, []string{"method", "class"})

	// HTTPDuration tracks request latency
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"method"})
)

// RegisterSessionGauge exposes the number of live sessions reported by count.
func RegisterSessionGauge(count func() int) error {
	return prometheus.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "storefront_sessions_active",
		Help: "Sessions currently held in memory",
	}, func() float64 { return float64(count()) }))
}

// StatusClass buckets an HTTP status code as "2xx", "4xx"...
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
