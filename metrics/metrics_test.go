package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := NewMetrics("tasktracker", prometheus.NewRegistry())

	m.ObserveRequest("GET", "/api/tasks", "200", 15*time.Millisecond)
	m.ObserveRequest("GET", "/api/tasks", "200", 5*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/tasks", "200")))
}

func TestEventCounters(t *testing.T) {
	m := NewMetrics("tasktracker", prometheus.NewRegistry())

	m.EventDispatched("task.created")
	m.EventDispatchFailed()
	m.SetWebSocketClients(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsDispatched.WithLabelValues("task.created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventDispatchErrors))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.WebSocketClients))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", "200", time.Millisecond)
		m.EventDispatched("task.created")
		m.EventDispatchFailed()
		m.SetWebSocketClients(1)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics("tasktracker", prometheus.NewRegistry())
	m.EventDispatched("task.deleted")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tasktracker_events_dispatched_total")
}
