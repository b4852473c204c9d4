// Package metrics exports batch and sample activity to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webPageProbeGO/internal/models"
)

const namespace = "webprobe"

// Collector implements analyzer.Recorder on top of Prometheus collectors
type Collector struct {
	samples        *prometheus.CounterVec
	sampleDuration prometheus.Histogram
	tasksActive    prometheus.Gauge
	tasksTotal     prometheus.Counter
	taskDuration   prometheus.Histogram
}

// NewCollector creates the collectors and registers them with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Samples taken, by speed rating.",
		}, []string{"speed_rating"}),
		sampleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sample_duration_seconds",
			Help:      "Wall time of one fetch-and-extract sample.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 10, 30},
		}),
		tasksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_active",
			Help:      "Batches currently being processed.",
		}),
		tasksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Batches submitted.",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time of a whole batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	reg.MustRegister(c.samples, c.sampleDuration, c.tasksActive, c.tasksTotal, c.taskDuration)
	return c
}

// TaskStarted counts a new running batch
func (c *Collector) TaskStarted() {
	c.tasksTotal.Inc()
	c.tasksActive.Inc()
}

// TaskFinished records a batch's duration
func (c *Collector) TaskFinished(elapsed time.Duration) {
	c.tasksActive.Dec()
	c.taskDuration.Observe(elapsed.Seconds())
}

// SampleRecorded records one sample
func (c *Collector) SampleRecorded(rating models.SpeedRating, elapsed time.Duration) {
	c.samples.WithLabelValues(string(rating)).Inc()
	c.sampleDuration.Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
