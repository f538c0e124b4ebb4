// Package metrics records pipeline run statistics in a private Prometheus
// registry, written as a node_exporter textfile after each run and served
// over HTTP in long-running mode.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "acting_events"

// Recorder holds the run metrics.
type Recorder struct {
	registry *prometheus.Registry

	sourceEvents   *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
	events         prometheus.Gauge
	newEvents      prometheus.Gauge
	runDuration    prometheus.Gauge
	lastSuccessTS  prometheus.Gauge
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.sourceEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_events_total",
		Help:      "Events extracted per source",
	}, []string{"source"})
	r.sourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Failed page fetches per source",
	}, []string{"source"})
	r.events = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events",
		Help:      "Upcoming events in the last published feed",
	})
	r.newEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "new_events",
		Help:      "Events not present in the previous run",
	})
	r.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run",
	})
	r.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful run",
	})

	r.registry.MustRegister(
		r.sourceEvents, r.sourceFailures,
		r.events, r.newEvents, r.runDuration, r.lastSuccessTS,
	)
	return r
}

// ObserveSource adds one provider's results.
func (r *Recorder) ObserveSource(source string, events, failures int) {
	r.sourceEvents.WithLabelValues(source).Add(float64(events))
	r.sourceFailures.WithLabelValues(source).Add(float64(failures))
}

// ObserveRun records a completed run.
func (r *Recorder) ObserveRun(total, fresh int, duration time.Duration, finished time.Time) {
	r.events.Set(float64(total))
	r.newEvents.Set(float64(fresh))
	r.runDuration.Set(duration.Seconds())
	r.lastSuccessTS.Set(float64(finished.Unix()))
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes all metrics in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// Handler serves /metrics and /healthz.
func (r *Recorder) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
