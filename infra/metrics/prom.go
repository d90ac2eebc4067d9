// Package metrics implements the core metrics.Sink interface for
// Prometheus and InfluxDB.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/qdispatch/core/metrics"
)

// PromSink records optimization runs as Prometheus metrics.
type PromSink struct {
	runs       prometheus.Counter
	duration   *prometheus.HistogramVec
	assigned   prometheus.Gauge
	unassigned prometheus.Gauge
	energy     prometheus.Gauge
}

// NewPromSink registers run metrics on the default Prometheus
// registerer. The metrics server is started separately with
// StartPromServer.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimization_runs_total",
		Help: "Number of completed optimization runs",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimization_stage_duration_seconds",
		Help:    "Duration of each optimization pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
	assigned := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimization_passengers_assigned",
		Help: "Passengers assigned a driver in the last run",
	})
	unassigned := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimization_passengers_unassigned",
		Help: "Passengers left without a feasible driver in the last run",
	})
	energy := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimization_final_energy",
		Help: "Expected energy of the final search state in the last run",
	})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	for _, g := range []*prometheus.Gauge{&assigned, &unassigned, &energy} {
		if err := reg.Register(*g); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				*g = are.ExistingCollector.(prometheus.Gauge)
			} else {
				return nil, err
			}
		}
	}

	return &PromSink{runs: runs, duration: duration, assigned: assigned, unassigned: unassigned, energy: energy}, nil
}

// RecordRun updates the run metrics.
func (s *PromSink) RecordRun(r coremetrics.RunResult) error {
	s.runs.Inc()
	s.duration.WithLabelValues("build").Observe(r.BuildTime.Seconds())
	s.duration.WithLabelValues("search").Observe(r.SearchTime.Seconds())
	s.duration.WithLabelValues("collapse").Observe(r.CollapseTime.Seconds())
	s.duration.WithLabelValues("refine").Observe(r.RefineTime.Seconds())
	s.assigned.Set(float64(r.Assigned))
	s.unassigned.Set(float64(r.Unassigned()))
	s.energy.Set(r.FinalEnergy)
	return nil
}
