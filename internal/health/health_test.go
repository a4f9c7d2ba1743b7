package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jwkset/internal/jwk"
)

func TestChecker_Health(t *testing.T) {
	t.Parallel()

	checker := NewChecker("1.2.3")

	rec := httptest.NewRecorder()
	checker.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeJSON, rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestChecker_Readiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checks     map[string]Status
		wantStatus Status
		wantCode   int
	}{
		{name: "no checks", wantStatus: StatusHealthy, wantCode: http.StatusOK},
		{
			name:       "all healthy",
			checks:     map[string]Status{"a": StatusHealthy, "b": StatusHealthy},
			wantStatus: StatusHealthy,
			wantCode:   http.StatusOK,
		},
		{
			name:       "degraded",
			checks:     map[string]Status{"a": StatusHealthy, "b": StatusDegraded},
			wantStatus: StatusDegraded,
			wantCode:   http.StatusOK,
		},
		{
			name:       "unhealthy wins",
			checks:     map[string]Status{"a": StatusUnhealthy, "b": StatusDegraded},
			wantStatus: StatusUnhealthy,
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := NewChecker("test")
			for name, status := range tt.checks {
				checker.RegisterCheck(name, func() Check { return Check{Status: status} })
			}

			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestChecker_Liveness(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewChecker("test").LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestKeySetCheck(t *testing.T) {
	t.Parallel()

	var current *jwk.Set
	check := KeySetCheck(func() *jwk.Set { return current })

	got := check()
	assert.Equal(t, StatusUnhealthy, got.Status)
	assert.Equal(t, "no key set loaded", got.Message)

	empty, err := jwk.ParseString(`{"keys":[]}`)
	require.NoError(t, err)
	current = empty
	assert.Equal(t, StatusDegraded, check().Status)

	public, err := jwk.ParseString(`{"keys":[{"kty":"RSA","kid":"k","n":"AQAB","e":"AQAB"}]}`)
	require.NoError(t, err)
	current = public
	got = check()
	assert.Equal(t, StatusHealthy, got.Status)
	assert.Equal(t, "0 signers, 1 verifiers", got.Message)
}
