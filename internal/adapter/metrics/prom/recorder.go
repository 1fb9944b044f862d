package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultSuccess  = "success"
	resultConflict = "conflict"
	resultFailure  = "failure"
)

// Recorder exports operation outcomes as Prometheus counters on its own
// registry.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "turfcontrol",
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Ledger operations by name and result.",
			},
			[]string{"op", "result"},
		),
	}
	r.registry.MustRegister(r.operations)
	return r
}

func (r *Recorder) RecordSuccess(op string) {
	r.operations.WithLabelValues(op, resultSuccess).Inc()
}

func (r *Recorder) RecordConflict(op string) {
	r.operations.WithLabelValues(op, resultConflict).Inc()
}

func (r *Recorder) RecordFailure(op string) {
	r.operations.WithLabelValues(op, resultFailure).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
