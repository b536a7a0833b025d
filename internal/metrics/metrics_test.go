package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ConnectionsActive.Set(3)
	m.MessagesRelayed.Add(2)
	m.RequestsTotal.WithLabelValues("/login", "200").Inc()

	assert.Equal(t, float64(3), testutil.ToFloat64(m.ConnectionsActive))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.MessagesRelayed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/login", "200")))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	// gauge + three counters + one vec series
	assert.Equal(t, 5, count)
}

func TestNew_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestNewRegistry_ServesMetrics(t *testing.T) {
	reg, h := NewRegistry()
	m := New(reg)
	m.ConnectionsTotal.Inc()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "chat_connections_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
