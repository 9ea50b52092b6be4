package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordAndServe(t *testing.T) {
	m := New()

	m.SessionsCreated.Inc()
	m.StateChanges.WithLabelValues("won").Inc()
	m.StateChanges.WithLabelValues("won").Inc()
	m.MovesTotal.WithLabelValues("accepted").Add(3)
	m.PathLength.Observe(6)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StateChanges.WithLabelValues("won")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MovesTotal.WithLabelValues("accepted")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lostknight_sessions_created_total 1")
	assert.Contains(t, rec.Body.String(), `lostknight_state_changes_total{state="won"} 2`)
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := New(), New()
	a.PathQueries.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.PathQueries))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PathQueries))
}
