// Package metrics records run statistics in a Prometheus registry and writes them as a
// node_exporter textfile.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"metro-costs/domain/transit"
)

const namespace = "metro_costs"

// Run holds the metrics of one pipeline run.
type Run struct {
	registry *prometheus.Registry
	excluded *prometheus.CounterVec
	rows     *prometheus.GaugeVec
	duration prometheus.Gauge
	finished prometheus.Gauge
}

func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		excluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "excluded_rows_total",
			Help:      "Rows left out of a pipeline stage, by reason.",
		}, []string{"stage", "reason"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "output_rows",
			Help:      "Rows written per output table.",
		}, []string{"frame"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		finished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.excluded, r.rows, r.duration, r.finished)
	return r
}

// Observe records the outputs and exclusions of a finished run.
func (r *Run) Observe(frames []transit.Frame, exclusions []transit.Exclusion, took time.Duration) {
	for _, f := range frames {
		r.rows.WithLabelValues(f.Name).Set(float64(len(f.Rows)))
	}
	for _, e := range exclusions {
		r.excluded.WithLabelValues(e.Stage, string(e.Reason)).Add(float64(e.Count))
	}
	r.duration.Set(took.Seconds())
	r.finished.SetToCurrentTime()
}

// Registry exposes the underlying gatherer.
func (r *Run) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes the registry in the text exposition format.
func (r *Run) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
