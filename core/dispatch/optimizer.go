package dispatch

import (
	"fmt"
	"time"

	"github.com/kilianp07/qdispatch/core/costmodel"
	"github.com/kilianp07/qdispatch/core/logger"
	"github.com/kilianp07/qdispatch/core/metrics"
	"github.com/kilianp07/qdispatch/core/model"
	"github.com/kilianp07/qdispatch/core/quantum"
	"github.com/kilianp07/qdispatch/core/route"
)

// Optimizer runs the full dispatch pipeline over a static snapshot of
// drivers and ride requests. Construct one explicitly per consumer; the
// search state of a run is local to that run and never leaks.
type Optimizer struct {
	builder   *costmodel.Builder
	engine    *quantum.Engine
	collapser Collapser
	refiner   *route.Refiner
	log       logger.Logger
	sink      metrics.Sink
}

// NewOptimizer wires the pipeline stages together. The metrics sink may
// be nil, in which case records are discarded.
func NewOptimizer(builder *costmodel.Builder, engine *quantum.Engine, refiner *route.Refiner, log logger.Logger, sink metrics.Sink) (*Optimizer, error) {
	if builder == nil || engine == nil || refiner == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewOptimizer")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Optimizer{builder: builder, engine: engine, refiner: refiner, log: log, sink: sink}, nil
}

// Optimize computes which driver serves which passenger and returns the
// refined route per driver id. Unassigned drivers map to an empty list;
// a passenger infeasible against every driver appears in no list. Empty
// inputs short-circuit to an empty map without error.
func (o *Optimizer) Optimize(drivers []model.Driver, passengers []model.Passenger) (map[string][]model.RouteSegment, error) {
	if len(drivers) == 0 || len(passengers) == 0 {
		return map[string][]model.RouteSegment{}, nil
	}
	if err := validateSnapshot(drivers, passengers); err != nil {
		return nil, err
	}

	run := metrics.RunResult{Start: time.Now(), Drivers: len(drivers), Passengers: len(passengers)}

	stage := time.Now()
	op, err := o.builder.Build(drivers, passengers)
	if err != nil {
		return nil, fmt.Errorf("build cost model: %w", err)
	}
	run.BuildTime = time.Since(stage)

	stage = time.Now()
	state := o.engine.Evolve(op, nil)
	run.SearchTime = time.Since(stage)
	run.FinalEnergy = op.Expectation(state)

	stage = time.Now()
	asn := o.collapser.Collapse(state, op, drivers, passengers)
	run.CollapseTime = time.Since(stage)
	run.Assigned = len(asn.Passengers())

	stage = time.Now()
	routes, err := o.refiner.Routes(asn, drivers, passengers)
	if err != nil {
		return nil, fmt.Errorf("refine routes: %w", err)
	}
	run.RefineTime = time.Since(stage)

	if err := o.sink.RecordRun(run); err != nil {
		o.log.Warnf("record run metrics: %v", err)
	}
	o.log.Infof("optimized %d drivers / %d passengers: %d assigned, energy %.4f in %s",
		run.Drivers, run.Passengers, run.Assigned, run.FinalEnergy, run.TotalTime())
	if unassigned := run.Unassigned(); unassigned > 0 {
		o.log.Debugf("%d passengers infeasible against all drivers", unassigned)
	}
	return routes, nil
}

// validateSnapshot fails fast on the first malformed record so the cost
// model is never built from bad input.
func validateSnapshot(drivers []model.Driver, passengers []model.Passenger) error {
	for _, d := range drivers {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	for _, p := range passengers {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
