package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.SignIn(SignInBypass)
	m.SignIn(SignInBypass)
	m.SignIn(SignInInvalid)
	m.GuardDecision("require_role", "redirect")

	body := scrape(t, m)
	assert.Contains(t, body, `campus_events_sign_ins_total{outcome="bypass"} 2`)
	assert.Contains(t, body, `campus_events_sign_ins_total{outcome="invalid"} 1`)
	assert.Contains(t, body, `campus_events_guard_decisions_total{outcome="redirect",rule="require_role"} 1`)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SignIn(SignInSuccess)
		m.GuardDecision("require_authenticated", "render")
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RelayEvent("published")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/dashboard/{tab}", http.StatusOK, 20*time.Millisecond)

	assert.Contains(t, scrape(t, m), `campus_events_http_request_duration_seconds_count{method="GET",route="/dashboard/{tab}",status="200"} 1`)
}
