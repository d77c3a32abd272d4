package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts frame outcomes for a single run on its own registry so
// they can be written out as a node exporter textfile when the run ends.
type Metrics struct {
	registry     *prometheus.Registry
	frames       *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	filesWritten prometheus.Counter
	saveFailures prometheus.Counter
	lastFrame    prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panoexport",
			Name:      "frames_total",
			Help:      "Frames handled by the export pipeline",
		}, []string{"outcome"}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panoexport",
			Name:      "frames_skipped_total",
			Help:      "Frames skipped, by the stage that failed",
		}, []string{"stage"}),
		filesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "panoexport",
			Name:      "files_written_total",
			Help:      "Image files written",
		}),
		saveFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "panoexport",
			Name:      "save_failures_total",
			Help:      "Image files which could not be rendered or saved",
		}),
		lastFrame: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "panoexport",
			Name:      "last_frame",
			Help:      "Index of the most recently handled frame",
		}),
	}
}

func (m *Metrics) RecordFrame(o FrameOutcome) {
	m.lastFrame.Set(float64(o.Frame))
	if o.Skipped {
		m.frames.WithLabelValues("skipped").Inc()
		m.skipped.WithLabelValues(string(o.Stage)).Inc()
		return
	}
	m.frames.WithLabelValues("exported").Inc()
	m.filesWritten.Add(float64(o.Written))
	m.saveFailures.Add(float64(o.Failures))
}

// WriteTextfile writes the run's metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
