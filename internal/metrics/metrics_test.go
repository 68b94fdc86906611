package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Upload("stored")
	m.Upload("stored")
	m.Upload("rejected")
	m.Analysis("done", 2*time.Second)
	m.LLMCall("analyze_risk", "ok")
	m.TaskStarted()
	m.TaskStarted()
	m.TaskFinished()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploads.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmCalls.WithLabelValues("analyze_risk", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksInFlight))
}

func TestMetrics_HandlerExposesNamespace(t *testing.T) {
	m := New()
	m.ObserveHTTP("/health", "GET", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `lexilens_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
