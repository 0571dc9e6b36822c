// Package metrics records client-side counters and latencies for sign-ins,
// token exchanges and authenticated fetches.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is implemented by Metrics and Noop.
type Recorder interface {
	RecordLogin(provider string, success bool, elapsed time.Duration)
	RecordLogout()
	RecordTokenExchange(success bool, elapsed time.Duration)
	// RecordFetch takes the HTTP status, or 0 when no response arrived.
	RecordFetch(status int, elapsed time.Duration)
}

var _ Recorder = (*Metrics)(nil)

// Metrics is the Prometheus Recorder. Each instance owns its registry so
// several can coexist (tests, multiple profiles).
type Metrics struct {
	registry *prometheus.Registry

	LoginsTotal           *prometheus.CounterVec
	LoginDuration         *prometheus.HistogramVec
	LogoutsTotal          prometheus.Counter
	TokenExchangesTotal   *prometheus.CounterVec
	TokenExchangeDuration prometheus.Histogram
	FetchesTotal          *prometheus.CounterVec
	FetchDuration         prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		LoginsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shonkhipto_logins_total",
				Help: "Sign-in attempts by provider and result",
			},
			[]string{"provider", "result"},
		),
		LoginDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shonkhipto_login_duration_seconds",
				Help:    "Time from starting a sign-in to its outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		LogoutsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "shonkhipto_logouts_total",
				Help: "Explicit sign-outs",
			},
		),
		TokenExchangesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shonkhipto_token_exchanges_total",
				Help: "Identity token exchanges with the backend by result",
			},
			[]string{"result"},
		),
		TokenExchangeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shonkhipto_token_exchange_duration_seconds",
				Help:    "Latency of the token exchange call",
				Buckets: prometheus.DefBuckets,
			},
		),
		FetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shonkhipto_fetches_total",
				Help: "Authenticated fetches by HTTP status (0 = no response)",
			},
			[]string{"status"},
		),
		FetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shonkhipto_fetch_duration_seconds",
				Help:    "Latency of authenticated fetches",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

func (m *Metrics) RecordLogin(provider string, success bool, elapsed time.Duration) {
	m.LoginsTotal.WithLabelValues(provider, result(success)).Inc()
	m.LoginDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordLogout() {
	m.LogoutsTotal.Inc()
}

func (m *Metrics) RecordTokenExchange(success bool, elapsed time.Duration) {
	m.TokenExchangesTotal.WithLabelValues(result(success)).Inc()
	m.TokenExchangeDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordFetch(status int, elapsed time.Duration) {
	m.FetchesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	m.FetchDuration.Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
