package jwk

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Key outcomes recorded by Metrics.RecordKey.
const (
	OutcomeSigner    = "signer"
	OutcomeVerifier  = "verifier"
	OutcomeSkipped   = "skipped"
	OutcomeDuplicate = "duplicate"
)

// Parse statuses recorded by Metrics.RecordParse.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds Prometheus metrics for key set parsing.
type Metrics struct {
	parseTotal    *prometheus.CounterVec
	parseDuration prometheus.Histogram
	keysTotal     *prometheus.CounterVec
	registry      *prometheus.Registry
}

var (
	sharedMetrics     *Metrics
	sharedMetricsOnce sync.Once
)

// GetSharedMetrics returns the singleton Metrics instance.
func GetSharedMetrics() *Metrics {
	sharedMetricsOnce.Do(func() {
		sharedMetrics = NewMetrics("jwkset")
	})
	return sharedMetrics
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "jwkset"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.parseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jwk",
			Name:      "parse_total",
			Help:      "Total number of JWK set parse attempts",
		},
		[]string{"status"},
	)

	m.parseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jwk",
			Name:      "parse_duration_seconds",
			Help:      "JWK set parse duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
		},
	)

	m.keysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jwk",
			Name:      "keys_total",
			Help:      "Total number of JWK set members processed, by outcome",
		},
		[]string{"outcome"},
	)

	m.registry.MustRegister(m.parseTotal, m.parseDuration, m.keysTotal)

	return m
}

// Init pre-initializes label combinations with zero values so the series
// are exported before the first parse.
func (m *Metrics) Init() {
	for _, status := range []string{StatusSuccess, StatusError} {
		m.parseTotal.WithLabelValues(status)
	}
	for _, outcome := range []string{OutcomeSigner, OutcomeVerifier, OutcomeSkipped, OutcomeDuplicate} {
		m.keysTotal.WithLabelValues(outcome)
	}
}

// RecordParse records a parse attempt.
func (m *Metrics) RecordParse(status string, duration time.Duration) {
	m.parseTotal.WithLabelValues(status).Inc()
	m.parseDuration.Observe(duration.Seconds())
}

// RecordKey records the outcome of processing one key object.
func (m *Metrics) RecordKey(outcome string) {
	m.keysTotal.WithLabelValues(outcome).Inc()
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MustRegister registers the metrics with the given registry. Collectors
// that are already registered are ignored so the call is safe to repeat.
func (m *Metrics) MustRegister(registry prometheus.Registerer) {
	for _, c := range []prometheus.Collector{m.parseTotal, m.parseDuration, m.keysTotal} {
		if err := registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}
