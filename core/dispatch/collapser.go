package dispatch

import (
	"sort"

	"github.com/kilianp07/qdispatch/core/costmodel"
	"github.com/kilianp07/qdispatch/core/model"
	"github.com/kilianp07/qdispatch/core/quantum"
)

// Collapser projects the final amplitude distribution onto a concrete
// assignment. Despite the measurement vocabulary this is a deterministic
// ranking projection: identical states always collapse to identical
// assignments.
type Collapser struct{}

// Collapse sorts assignment variables by squared amplitude magnitude and
// greedily commits feasible pairings. Each variable is visited once;
// a pairing skipped as infeasible is never retried. Feasibility is
// re-checked explicitly even though the cost penalties should already
// have suppressed infeasible weight.
func (Collapser) Collapse(state quantum.State, op *costmodel.Operator, drivers []model.Driver, passengers []model.Passenger) model.Assignment {
	asn := make(model.Assignment)
	dim := op.Dim()
	if dim == 0 || len(state) != dim {
		return asn
	}

	weights := state.Weights()
	order := make([]int, dim)
	for k := range order {
		order[k] = k
	}
	// Descending by weight, ascending index on ties for determinism.
	sort.Slice(order, func(a, b int) bool {
		if weights[order[a]] != weights[order[b]] {
			return weights[order[a]] > weights[order[b]]
		}
		return order[a] < order[b]
	})

	driverTaken := make([]bool, len(drivers))
	passengerTaken := make([]bool, len(passengers))
	assigned := 0
	for _, k := range order {
		if assigned == len(passengers) {
			break
		}
		di, pi := op.Pair(k)
		if driverTaken[di] || passengerTaken[pi] {
			continue
		}
		if !drivers[di].CanServe(passengers[pi]) {
			continue
		}
		asn[drivers[di].ID] = passengers[pi].ID
		driverTaken[di] = true
		passengerTaken[pi] = true
		assigned++
	}
	return asn
}
