package dispatch

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/kilianp07/qdispatch/core/costmodel"
	"github.com/kilianp07/qdispatch/core/model"
	"github.com/kilianp07/qdispatch/core/quantum"
)

type gridProvider struct{}

func (gridProvider) Distance(from, to model.Location) (float64, error) {
	dLat := (to.Lat - from.Lat) * 111
	dLng := (to.Lng - from.Lng) * 111
	return math.Sqrt(dLat*dLat + dLng*dLng), nil
}

func (gridProvider) Duration(distanceKm float64, _ time.Time) (time.Duration, error) {
	return time.Duration(distanceKm / 40 * float64(time.Hour)), nil
}

func buildOperator(t *testing.T, drivers []model.Driver, passengers []model.Passenger) *costmodel.Operator {
	t.Helper()
	op, err := costmodel.NewBuilder(gridProvider{}).Build(drivers, passengers)
	if err != nil {
		t.Fatalf("build operator: %v", err)
	}
	return op
}

func TestCollapse_HighestWeightWins(t *testing.T) {
	now := time.Now()
	drivers := []model.Driver{
		{ID: "d1", Location: model.Location{Lat: 48.85, Lng: 2.35}, Capacity: 4},
		{ID: "d2", Location: model.Location{Lat: 48.86, Lng: 2.36}, Capacity: 4},
	}
	passengers := []model.Passenger{
		{ID: "p1", Pickup: model.Location{Lat: 48.85, Lng: 2.35}, Dropoff: model.Location{Lat: 48.9, Lng: 2.4}, RequestedAt: now, Seats: 1, MaxWait: 10 * time.Minute},
	}
	op := buildOperator(t, drivers, passengers)

	state := make(quantum.State, op.Dim())
	state[op.Index(1, 0)] = 1 // all weight on d2/p1

	asn := Collapser{}.Collapse(state, op, drivers, passengers)
	if asn["d2"] != "p1" {
		t.Fatalf("expected d2 to take p1, got %v", asn)
	}
	if _, ok := asn["d1"]; ok {
		t.Fatalf("d1 should stay unassigned")
	}
}

func TestCollapse_Deterministic(t *testing.T) {
	now := time.Now()
	var drivers []model.Driver
	var passengers []model.Passenger
	for i := 0; i < 5; i++ {
		drivers = append(drivers, model.Driver{
			ID:       string(rune('a' + i)),
			Location: model.Location{Lat: 48.8 + float64(i)*0.01, Lng: 2.3},
			Capacity: 2,
		})
		passengers = append(passengers, model.Passenger{
			ID:          string(rune('v' + i)),
			Pickup:      model.Location{Lat: 48.82, Lng: 2.3 + float64(i)*0.01},
			Dropoff:     model.Location{Lat: 48.9, Lng: 2.4},
			RequestedAt: now,
			Seats:       1,
			MaxWait:     10 * time.Minute,
		})
	}
	op := buildOperator(t, drivers, passengers)

	rng := rand.New(rand.NewSource(99))
	state := make(quantum.State, op.Dim())
	for k := range state {
		state[k] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	state.Normalize()

	first := Collapser{}.Collapse(state, op, drivers, passengers)
	for i := 0; i < 10; i++ {
		again := Collapser{}.Collapse(state.Clone(), op, drivers, passengers)
		if len(again) != len(first) {
			t.Fatalf("run %d changed assignment size", i)
		}
		for d, p := range first {
			if again[d] != p {
				t.Fatalf("run %d diverged for driver %s: %s != %s", i, d, again[d], p)
			}
		}
	}
}

func TestCollapse_FeasibilityRecheck(t *testing.T) {
	now := time.Now()
	drivers := []model.Driver{
		{ID: "small", Location: model.Location{Lat: 48.85, Lng: 2.35}, Capacity: 1},
		{ID: "big", Location: model.Location{Lat: 48.86, Lng: 2.36}, Capacity: 4},
	}
	passengers := []model.Passenger{
		{ID: "group", Pickup: model.Location{Lat: 48.85, Lng: 2.35}, Dropoff: model.Location{Lat: 48.9, Lng: 2.4}, RequestedAt: now, Seats: 3, MaxWait: 10 * time.Minute},
	}
	op := buildOperator(t, drivers, passengers)

	// Force all weight onto the infeasible pairing; the collapser must
	// skip it and fall through to the feasible one.
	state := make(quantum.State, op.Dim())
	state[op.Index(0, 0)] = complex(0.99, 0)
	state[op.Index(1, 0)] = complex(0.14, 0)
	state.Normalize()

	asn := Collapser{}.Collapse(state, op, drivers, passengers)
	if asn["big"] != "group" {
		t.Fatalf("expected feasible driver to take the group, got %v", asn)
	}
	if _, ok := asn["small"]; ok {
		t.Fatalf("infeasible pairing committed despite recheck")
	}
}

func TestCollapse_OnePassengerPerDriver(t *testing.T) {
	now := time.Now()
	drivers := []model.Driver{
		{ID: "solo", Location: model.Location{Lat: 48.85, Lng: 2.35}, Capacity: 4},
	}
	passengers := []model.Passenger{
		{ID: "p1", Pickup: model.Location{Lat: 48.85, Lng: 2.35}, Dropoff: model.Location{Lat: 48.9, Lng: 2.4}, RequestedAt: now, Seats: 1, MaxWait: 10 * time.Minute},
		{ID: "p2", Pickup: model.Location{Lat: 48.86, Lng: 2.36}, Dropoff: model.Location{Lat: 48.9, Lng: 2.4}, RequestedAt: now, Seats: 1, MaxWait: 10 * time.Minute},
	}
	op := buildOperator(t, drivers, passengers)

	asn := Collapser{}.Collapse(quantum.Uniform(op.Dim()), op, drivers, passengers)
	if len(asn) != 1 {
		t.Fatalf("a driver serves at most one passenger per run, got %v", asn)
	}
}

func TestCollapse_EmptyState(t *testing.T) {
	op := buildOperator(t, nil, nil)
	asn := Collapser{}.Collapse(quantum.State{}, op, nil, nil)
	if len(asn) != 0 {
		t.Fatalf("expected empty assignment, got %v", asn)
	}
}
