package jwk

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, label string) float64 {
	t.Helper()

	counter, err := vec.GetMetricWithLabelValues(label)
	require.NoError(t, err)

	var m io_prometheus_client.Metric
	require.NoError(t, counter.Write(&m))
	return m.GetCounter().GetValue()
}

// TestNewMetrics tests that NewMetrics creates a valid Metrics instance.
func TestNewMetrics(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name              string
		namespace         string
		expectedNamespace string
	}{
		{name: "WithNamespace", namespace: "test", expectedNamespace: "test"},
		{name: "EmptyNamespace", namespace: "", expectedNamespace: "jwkset"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			metrics := NewMetrics(tc.namespace)
			require.NotNil(t, metrics)
			metrics.Init()

			families, err := metrics.Registry().Gather()
			require.NoError(t, err)

			names := make(map[string]bool)
			for _, mf := range families {
				names[mf.GetName()] = true
			}
			assert.True(t, names[tc.expectedNamespace+"_jwk_parse_total"])
			assert.True(t, names[tc.expectedNamespace+"_jwk_keys_total"])
			assert.True(t, names[tc.expectedNamespace+"_jwk_parse_duration_seconds"])
		})
	}
}

func TestMetrics_RecordParse(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("test")
	metrics.RecordParse(StatusSuccess, time.Millisecond)
	metrics.RecordParse(StatusSuccess, time.Millisecond)
	metrics.RecordParse(StatusError, time.Millisecond)

	assert.Equal(t, float64(2), counterValue(t, metrics.parseTotal, StatusSuccess))
	assert.Equal(t, float64(1), counterValue(t, metrics.parseTotal, StatusError))

	var m io_prometheus_client.Metric
	require.NoError(t, metrics.parseDuration.Write(&m))
	assert.Equal(t, uint64(3), m.GetHistogram().GetSampleCount())
}

func TestMetrics_RecordedByParse(t *testing.T) {
	t.Parallel()

	key := keyA(t)
	metrics := NewMetrics("test")

	doc := jwksDocument(t,
		rsaJWK("pub", key),
		rsaJWK("priv", key, "d"),
		rsaJWK("pub", keyB(t)),
		map[string]any{"kty": "oct", "kid": "hmac"},
	)
	_, err := Parse(doc, WithMetrics(metrics))
	require.NoError(t, err)

	_, err = Parse([]byte(`{"keys": {}}`), WithMetrics(metrics))
	require.Error(t, err)

	assert.Equal(t, float64(1), counterValue(t, metrics.keysTotal, OutcomeSigner))
	assert.Equal(t, float64(1), counterValue(t, metrics.keysTotal, OutcomeVerifier))
	assert.Equal(t, float64(1), counterValue(t, metrics.keysTotal, OutcomeDuplicate))
	assert.Equal(t, float64(1), counterValue(t, metrics.keysTotal, OutcomeSkipped))
	assert.Equal(t, float64(1), counterValue(t, metrics.parseTotal, StatusSuccess))
	assert.Equal(t, float64(1), counterValue(t, metrics.parseTotal, StatusError))
}

func TestMetrics_MustRegisterIsRepeatable(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("test")
	registry := prometheus.NewRegistry()

	assert.NotPanics(t, func() {
		metrics.MustRegister(registry)
		metrics.MustRegister(registry)
	})

	metrics.RecordKey(OutcomeSigner)
	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestGetSharedMetrics(t *testing.T) {
	t.Parallel()

	assert.Same(t, GetSharedMetrics(), GetSharedMetrics())
}
