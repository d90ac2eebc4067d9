// Package route turns an assignment into per-driver route segments and
// locally improves the visiting order with 2-opt segment reversal.
package route

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/kilianp07/qdispatch/core/geo"
	"github.com/kilianp07/qdispatch/core/model"
)

// StopKind distinguishes pickups from dropoffs in a stop sequence.
type StopKind int

const (
	Pickup StopKind = iota
	Dropoff
)

// Stop is one visit in a driver's route.
type Stop struct {
	Location    model.Location
	PassengerID string
	Kind        StopKind
}

// parallelDrivers is the assignment size above which per-driver
// refinement fans out across the worker pool.
const parallelDrivers = 32

// Refiner builds and refines per-driver routes. Stateless apart from its
// configuration; safe for concurrent runs.
type Refiner struct {
	Workers int // 0 means runtime.NumCPU
	// EmissionFactor is kg CO2 per km for a fleet-average vehicle;
	// individual drivers scale it by their fuel efficiency.
	EmissionFactor float64
	provider       geo.DistanceProvider
}

// NewRefiner returns a refiner using the given travel-estimate provider.
func NewRefiner(provider geo.DistanceProvider) *Refiner {
	return &Refiner{EmissionFactor: 0.12, provider: provider}
}

// Routes builds a refined segment list for every driver in the snapshot.
// Unassigned drivers map to an empty list. Every assigned passenger's
// stops appear in exactly one driver's segments.
func (r *Refiner) Routes(asn model.Assignment, drivers []model.Driver, passengers []model.Passenger) (map[string][]model.RouteSegment, error) {
	byID := make(map[string]model.Passenger, len(passengers))
	for _, p := range passengers {
		byID[p.ID] = p
	}

	routes := make(map[string][]model.RouteSegment, len(drivers))
	type job struct {
		driver model.Driver
		stops  []Stop
	}
	var jobs []job
	for _, d := range drivers {
		routes[d.ID] = []model.RouteSegment{}
		pid, ok := asn[d.ID]
		if !ok || pid == "" {
			continue
		}
		p, ok := byID[pid]
		if !ok {
			return nil, fmt.Errorf("assignment references unknown passenger %q", pid)
		}
		stops := []Stop{
			{Location: p.Pickup, PassengerID: p.ID, Kind: Pickup},
			{Location: p.Dropoff, PassengerID: p.ID, Kind: Dropoff},
		}
		jobs = append(jobs, job{driver: d, stops: stops})
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(jobs) < parallelDrivers {
		workers = 1
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	queue := make(chan job)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				segs, err := r.driverRoute(j.driver, j.stops)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					routes[j.driver.ID] = segs
				}
				mu.Unlock()
			}
		}()
	}
	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return routes, nil
}

// driverRoute refines the stop order and materializes the segments.
func (r *Refiner) driverRoute(d model.Driver, stops []Stop) ([]model.RouteSegment, error) {
	refined, err := r.Refine(d.Location, stops)
	if err != nil {
		return nil, err
	}
	eff := d.FuelEfficiency
	if eff <= 0 {
		eff = 1
	}
	segs := make([]model.RouteSegment, 0, len(refined))
	from := d.Location
	at := d.AvailableAt
	for _, stop := range refined {
		dist, err := r.provider.Distance(from, stop.Location)
		if err != nil {
			return nil, fmt.Errorf("distance for driver %s: %w", d.ID, err)
		}
		dur, err := r.provider.Duration(dist, at)
		if err != nil {
			return nil, fmt.Errorf("duration for driver %s: %w", d.ID, err)
		}
		segs = append(segs, model.RouteSegment{
			From:        from,
			To:          stop.Location,
			DistanceKm:  dist,
			Duration:    dur,
			EmissionsKg: dist * r.EmissionFactor / eff,
		})
		from = stop.Location
		at = at.Add(dur)
	}
	return segs, nil
}

// Refine improves the visiting order with first-improvement 2-opt
// segment reversal. The stop set is preserved, reversals that would put
// a dropoff before its pickup are rejected, and the refined order's
// total distance never exceeds the original's.
func (r *Refiner) Refine(start model.Location, stops []Stop) ([]Stop, error) {
	n := len(stops)
	if n < 2 {
		return stops, nil
	}

	// Distance matrix over start (index 0) and stops (1..n); the
	// provider is only consulted here, the scan itself is pure.
	points := make([]model.Location, n+1)
	points[0] = start
	for i, s := range stops {
		points[i+1] = s.Location
	}
	dist := make([][]float64, n+1)
	for i := range dist {
		dist[i] = make([]float64, n+1)
		for j := range dist[i] {
			if i == j {
				continue
			}
			d, err := r.provider.Distance(points[i], points[j])
			if err != nil {
				return nil, err
			}
			dist[i][j] = d
		}
	}

	order := make([]int, n) // indices into stops, offset by 1 in dist
	for i := range order {
		order[i] = i
	}
	total := func(ord []int) float64 {
		sum := dist[0][ord[0]+1]
		for i := 1; i < len(ord); i++ {
			sum += dist[ord[i-1]+1][ord[i]+1]
		}
		return sum
	}

	best := total(order)
	improved := true
	for improved {
		improved = false
		for i := 0; i < n-1 && !improved; i++ {
			for j := i + 1; j < n && !improved; j++ {
				reverse(order, i, j)
				if precedenceOK(stops, order) {
					if cost := total(order); cost < best {
						best = cost
						improved = true
						continue
					}
				}
				reverse(order, i, j) // undo
			}
		}
	}

	out := make([]Stop, n)
	for i, idx := range order {
		out[i] = stops[idx]
	}
	return out, nil
}

// TotalDistance returns the travel distance of visiting the stops in
// order starting from start.
func (r *Refiner) TotalDistance(start model.Location, stops []Stop) (float64, error) {
	var sum float64
	from := start
	for _, s := range stops {
		d, err := r.provider.Distance(from, s.Location)
		if err != nil {
			return 0, err
		}
		sum += d
		from = s.Location
	}
	return sum, nil
}

func reverse(order []int, i, j int) {
	for i < j {
		order[i], order[j] = order[j], order[i]
		i++
		j--
	}
}

// precedenceOK reports whether every pickup precedes its dropoff in the
// candidate order.
func precedenceOK(stops []Stop, order []int) bool {
	seen := make(map[string]bool, len(order))
	for _, idx := range order {
		s := stops[idx]
		switch s.Kind {
		case Pickup:
			seen[s.PassengerID] = true
		case Dropoff:
			if !seen[s.PassengerID] {
				return false
			}
		}
	}
	return true
}
