// Package costmodel builds the Hermitian cost operator the search engine
// evolves against. Each (driver, passenger) pairing gets a diagonal
// energy combining pickup distance, time-window violation, capacity fit
// and capability match; off-diagonal couplings link substitutable
// pairings of the same passenger.
package costmodel

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"
	"sync"
	"time"

	"github.com/kilianp07/qdispatch/core/geo"
	"github.com/kilianp07/qdispatch/core/model"
)

const (
	// capacityPenalty dominates every other term so that infeasible
	// pairings carry almost no amplitude after evolution.
	capacityPenalty   = 1000.0
	capacityFitWeight = 2.0
	latePenalty       = 100.0
	unmetTagPenalty   = 50.0
	matchedTagBonus   = 5.0
	ratingBonus       = 0.5
	couplingStrength  = 0.5
	phaseScale        = 0.01
	distancePhaseAmp  = 0.05

	// parallelThreshold is the pair count above which rows are built
	// across the worker pool.
	parallelThreshold = 256
)

// Weights balances the four energy terms of the cost operator.
type Weights struct {
	Distance   float64 `json:"distance"`
	Time       float64 `json:"time"`
	Capacity   float64 `json:"capacity"`
	Capability float64 `json:"capability"`
}

// DefaultWeights returns the standard term balance.
func DefaultWeights() Weights {
	return Weights{Distance: 0.3, Time: 0.3, Capacity: 0.2, Capability: 0.2}
}

// Validate checks that the weights are usable.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Distance, w.Time, w.Capacity, w.Capability} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("cost weights must not be negative")
		}
	}
	if w.Distance+w.Time+w.Capacity+w.Capability == 0 {
		return fmt.Errorf("at least one cost weight must be positive")
	}
	return nil
}

// Builder constructs cost operators from dispatch snapshots. A Builder is
// stateless apart from its configuration and safe for concurrent runs.
type Builder struct {
	Weights  Weights
	Workers  int // 0 means runtime.NumCPU
	provider geo.DistanceProvider
}

// NewBuilder returns a builder with default weights using the given
// travel-estimate provider.
func NewBuilder(provider geo.DistanceProvider) *Builder {
	return &Builder{Weights: DefaultWeights(), provider: provider}
}

// Build produces the Hermitian cost operator for the snapshot. Empty
// inputs yield a zero-dimension operator. The first provider error aborts
// the build.
func (b *Builder) Build(drivers []model.Driver, passengers []model.Passenger) (*Operator, error) {
	op := newOperator(len(drivers), len(passengers))
	dim := op.Dim()
	if dim == 0 {
		return op, nil
	}

	diag := make([]float64, dim)
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if dim < parallelThreshold {
		workers = 1
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	rows := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				if err := b.buildRow(op, drivers[i], i, passengers, diag); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for i := range drivers {
		rows <- i
	}
	close(rows)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	for k := 0; k < dim; k++ {
		op.set(k, k, complex(diag[k], 0))
	}
	b.couple(op, drivers, passengers)
	return op, nil
}

// buildRow computes the diagonal energies for all pairings of one driver.
// Rows are disjoint so no locking is needed.
func (b *Builder) buildRow(op *Operator, d model.Driver, i int, passengers []model.Passenger, diag []float64) error {
	for j, p := range passengers {
		dist, err := b.provider.Distance(d.Location, p.Pickup)
		if err != nil {
			return fmt.Errorf("distance %s -> %s: %w", d.ID, p.ID, err)
		}
		travel, err := b.provider.Duration(dist, p.RequestedAt)
		if err != nil {
			return fmt.Errorf("duration %s -> %s: %w", d.ID, p.ID, err)
		}
		e := b.Weights.Distance*distanceEnergy(d, p, dist) +
			b.Weights.Time*timeEnergy(d, p, travel) +
			b.Weights.Capacity*capacityEnergy(d, p) +
			b.Weights.Capability*capabilityEnergy(d, p)
		e -= d.Rating * ratingBonus
		diag[op.Index(i, j)] = e
	}
	return nil
}

// distanceEnergy rises with pickup distance. The diagonal must stay real
// for hermiticity, so the position-dependent phase enters as a cosine
// modulation that breaks exact degeneracy between equal distances.
func distanceEnergy(d model.Driver, p model.Passenger, distKm float64) float64 {
	return distKm * (1 + distancePhaseAmp*math.Cos(phaseScale*(d.Location.Lat+p.Pickup.Lng)))
}

// timeEnergy models the pairing as a superposition of an on-time and a
// late outcome; each outcome weights its cost by its probability.
func timeEnergy(d model.Driver, p model.Passenger, travel time.Duration) float64 {
	start := d.AvailableAt
	if p.RequestedAt.After(start) {
		start = p.RequestedAt
	}
	eta := start.Add(travel)
	deadline := p.RequestedAt.Add(p.MaxWait)

	scale := p.MaxWait.Minutes()
	if scale <= 0 {
		scale = 1
	}
	var pLate float64
	if eta.After(deadline) {
		late := eta.Sub(deadline).Minutes()
		pLate = 1 - math.Exp(-late/scale)
	}
	wait := eta.Sub(p.RequestedAt).Minutes()
	onTimeCost := math.Max(0, wait) / scale
	return p.PriorityWeight() * (pLate*latePenalty + (1-pLate)*onTimeCost)
}

// capacityEnergy penalizes infeasible seat counts and otherwise prefers a
// tight fit so large vehicles stay free for large groups.
func capacityEnergy(d model.Driver, p model.Passenger) float64 {
	if p.Seats > d.Capacity {
		return capacityPenalty
	}
	return float64(d.Capacity-p.Seats) * capacityFitWeight
}

func capabilityEnergy(d model.Driver, p model.Passenger) float64 {
	missing := d.Capabilities.Missing(p.Required).Count()
	matched := d.Capabilities.Intersect(p.Required).Count()
	return float64(missing)*unmetTagPenalty - float64(matched)*matchedTagBonus
}

// couple links pairings of the same passenger across equally capable
// drivers so the search can shift amplitude between cheap substitutions.
// Entries are written conjugate-symmetric.
func (b *Builder) couple(op *Operator, drivers []model.Driver, passengers []model.Passenger) {
	for j := range passengers {
		p := passengers[j]
		for a := 0; a < len(drivers); a++ {
			if !drivers[a].CanServe(p) {
				continue
			}
			for c := a + 1; c < len(drivers); c++ {
				if !drivers[c].CanServe(p) {
					continue
				}
				phase := phaseScale * (drivers[a].Location.Lat - drivers[c].Location.Lat +
					drivers[a].Location.Lng - drivers[c].Location.Lng)
				v := complex(-b.Weights.Capability*couplingStrength, 0) * cmplx.Exp(complex(0, phase))
				ka, kc := op.Index(a, j), op.Index(c, j)
				op.set(ka, kc, v)
				op.set(kc, ka, cmplx.Conj(v))
			}
		}
	}
}
