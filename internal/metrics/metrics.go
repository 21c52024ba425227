package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gdsa"

const (
	SegmentAccepted  = "accepted"
	SegmentFiltered  = "filtered"
	SegmentDiscarded = "discarded"
)

// Metrics holds the recorder counters on a private registry so they can be
// written to a textfile without an HTTP endpoint.
type Metrics struct {
	Registry *prometheus.Registry

	Segments  *prometheus.CounterVec
	Events    *prometheus.CounterVec
	Distance  prometheus.Counter
	StopTime  prometheus.Counter
	Travels   *prometheus.CounterVec
	QueueRuns *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Travel segments observed, by outcome.",
		}, []string{"result"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detection_events_total",
			Help:      "Stop and resume events raised by the detectors.",
		}, []string{"kind"}),
		Distance: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accepted_distance_meters_total",
			Help:      "Distance of accepted segments.",
		}),
		StopTime: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stop_seconds_total",
			Help:      "Stop time attributed to finished travels.",
		}),
		Travels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "travels_total",
			Help:      "Finished travels, by outcome.",
		}, []string{"result"}),
		QueueRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_queue_runs_total",
			Help:      "Queued route imports processed, by outcome.",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(m.Segments, m.Events, m.Distance, m.StopTime, m.Travels, m.QueueRuns)
	return m
}

// WriteTextfile writes the current values in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
