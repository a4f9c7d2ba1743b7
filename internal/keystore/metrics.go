package keystore

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reload statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Key kinds reported by the keys gauge.
const (
	KindSigner   = "signer"
	KindVerifier = "verifier"
)

// Metrics holds Prometheus metrics for the key store.
type Metrics struct {
	reloadTotal   *prometheus.CounterVec
	keys          *prometheus.GaugeVec
	lastReload prometheus.Gauge
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

	m.reloadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keystore",
			Name:      "reload_total",
			Help:      "Total number of key set reloads",
		},
		[]string{"status"},
	)

	m.keys = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "keystore",
			Name:      "keys",
			Help:      "Number of keys in the current key set",
		},
		[]string{"kind"},
	)

	m.lastReload = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "keystore",
			Name:      "last_reload_timestamp_seconds",
			Help:      "Unix timestamp of the last successful key set reload",
		},
	)

	m.registry.MustRegister(m.reloadTotal, m.keys, m.lastReload)

	return m
}

// RecordReload records a reload attempt.
func (m *Metrics) RecordReload(status string) {
	m.reloadTotal.WithLabelValues(status).Inc()
}

// SetKeys records the key counts of a newly installed key set.
func (m *Metrics) SetKeys(signers, verifiers int, at time.Time) {
	m.keys.WithLabelValues(KindSigner).Set(float64(signers))
	m.keys.WithLabelValues(KindVerifier).Set(float64(verifiers))
	m.lastReload.Set(float64(at.Unix()))
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// MustRegister registers the metrics with the given registry. Collectors
// that are already registered are ignored.
func (m *Metrics) MustRegister(registry prometheus.Registerer) {
	for _, c := range []prometheus.Collector{m.reloadTotal, m.keys, m.lastReload} {
		if err := registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}
