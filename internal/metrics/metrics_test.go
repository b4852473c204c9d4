package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"webPageProbeGO/internal/models"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.TaskStarted()
	c.SampleRecorded(models.SpeedGood, 1500*time.Millisecond)
	c.SampleRecorded(models.SpeedGood, 1200*time.Millisecond)
	c.SampleRecorded(models.SpeedError, 0)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksActive))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.samples.WithLabelValues("GOOD")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.samples.WithLabelValues("ERROR")))

	c.TaskFinished(3 * time.Second)
	assert.Equal(t, float64(0), testutil.ToFloat64(c.tasksActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.tasksTotal))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.TaskStarted()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webprobe_tasks_active 1")
}
