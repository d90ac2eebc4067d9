package quantum

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/qdispatch/core/costmodel"
	"github.com/kilianp07/qdispatch/core/model"
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

func testOperator(t *testing.T) *costmodel.Operator {
	t.Helper()
	now := time.Now()
	drivers := []model.Driver{
		{ID: "d1", Location: model.Location{Lat: 48.85, Lng: 2.35}, Capacity: 4},
		{ID: "d2", Location: model.Location{Lat: 48.90, Lng: 2.40}, Capacity: 2},
		{ID: "d3", Location: model.Location{Lat: 48.80, Lng: 2.30}, Capacity: 1},
	}
	passengers := []model.Passenger{
		{ID: "p1", Pickup: model.Location{Lat: 48.86, Lng: 2.36}, Dropoff: model.Location{Lat: 48.88, Lng: 2.32}, RequestedAt: now, Seats: 1, MaxWait: 10 * time.Minute},
		{ID: "p2", Pickup: model.Location{Lat: 48.82, Lng: 2.33}, Dropoff: model.Location{Lat: 48.81, Lng: 2.38}, RequestedAt: now, Seats: 2, MaxWait: 15 * time.Minute},
	}
	op, err := costmodel.NewBuilder(gridProvider{}).Build(drivers, passengers)
	if err != nil {
		t.Fatalf("build operator: %v", err)
	}
	return op
}

// penaltyOperator builds a diagonal operator where one pairing carries
// the capacity penalty and the other a small feasible energy. With a
// single feasible driver there are no couplings, so phase separation
// must leave the weights untouched.
func penaltyOperator(t *testing.T) *costmodel.Operator {
	t.Helper()
	now := time.Now()
	drivers := []model.Driver{
		{ID: "small", Location: model.Location{Lat: 48.85, Lng: 2.35}, Capacity: 1},
		{ID: "van", Location: model.Location{Lat: 48.851, Lng: 2.351}, Capacity: 4},
	}
	passengers := []model.Passenger{
		{ID: "group", Pickup: model.Location{Lat: 48.852, Lng: 2.352}, Dropoff: model.Location{Lat: 48.86, Lng: 2.36}, RequestedAt: now, Seats: 3, MaxWait: 30 * time.Minute},
	}
	op, err := costmodel.NewBuilder(gridProvider{}).Build(drivers, passengers)
	if err != nil {
		t.Fatalf("build operator: %v", err)
	}
	return op
}

func TestEvolve_NormalizationInvariant(t *testing.T) {
	op := testOperator(t)
	// Every round count must hand back a unit vector; rounds renormalize
	// after each operator application.
	for rounds := 1; rounds <= 8; rounds++ {
		e := New(Config{Rounds: rounds, Seed: 42}, nil)
		state := e.Evolve(op, nil)
		if len(state) != op.Dim() {
			t.Fatalf("rounds=%d: unexpected state length %d", rounds, len(state))
		}
		if math.Abs(state.Norm()-1) > 1e-9 {
			t.Fatalf("rounds=%d: state norm %v outside tolerance", rounds, state.Norm())
		}
	}
}

func TestEvolve_Deterministic(t *testing.T) {
	op := testOperator(t)
	a := New(Config{Seed: 7}, nil).Evolve(op, nil)
	b := New(Config{Seed: 7}, nil).Evolve(op, nil)
	for k := range a {
		if a[k] != b[k] {
			t.Fatalf("same seed produced different states at index %d", k)
		}
	}
}

func TestEvolve_ZeroDimension(t *testing.T) {
	op, err := costmodel.NewBuilder(gridProvider{}).Build(nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	state := New(Config{}, nil).Evolve(op, nil)
	if len(state) != 0 {
		t.Fatalf("expected empty state for zero-dimension operator")
	}
}

func TestEvolve_WarmStart(t *testing.T) {
	op := testOperator(t)
	warm := make(State, op.Dim())
	warm[0] = 1

	e := New(Config{Rounds: 1, Seed: 3}, nil)
	state := e.Evolve(op, warm)
	if math.Abs(state.Norm()-1) > 1e-9 {
		t.Fatalf("warm-started state not normalized: %v", state.Norm())
	}
	// The warm start must not be mutated in place.
	if warm[0] != 1 {
		t.Fatalf("warm start mutated by Evolve")
	}

	// A mismatched warm start falls back to uniform instead of failing.
	bad := make(State, 1)
	bad[0] = 1
	state = e.Evolve(op, bad)
	if len(state) != op.Dim() {
		t.Fatalf("mismatched warm start not replaced")
	}
}

// Phase separation is a unitary rotation: on a diagonal operator it
// must not move probability mass between variables, no matter how large
// the penalty entries are. A divergent series would concentrate weight
// on the highest-energy variable instead.
func TestEvolve_PhaseRotationPreservesWeights(t *testing.T) {
	op := penaltyOperator(t)
	e := New(Config{Rounds: 1, Beta: -1, TunnelProb: -1, Seed: 9}, nil)
	state := e.Evolve(op, nil)
	for k, w := range state.Weights() {
		if w < 0.25 || w > 0.75 {
			t.Fatalf("weight %d drifted to %v from the uniform 0.5", k, w)
		}
	}
}

func TestEvolve_BiasesTowardsLowEnergy(t *testing.T) {
	op := testOperator(t)
	cfg := Config{Rounds: 6, TunnelProb: 1, TunnelBatch: 25, Temperature: 0.05, Seed: 11}
	state := New(cfg, nil).Evolve(op, nil)
	uniform := Uniform(op.Dim())
	// Tunneling every round at low temperature only accepts improving
	// jumps, so the evolved energy must end below the uniform baseline,
	// which carries equal weight on the infeasible pairings.
	if op.Expectation(state) >= op.Expectation(uniform) {
		t.Fatalf("evolved energy %v not below uniform %v",
			op.Expectation(state), op.Expectation(uniform))
	}
}

func TestEvolve_RoundsDisabled(t *testing.T) {
	op := testOperator(t)
	state := New(Config{Rounds: -1, Seed: 1}, nil).Evolve(op, nil)
	want := 1 / float64(op.Dim())
	for k, w := range state.Weights() {
		if math.Abs(w-want) > 1e-9 {
			t.Fatalf("expected uniform weights with rounds disabled, got %v at %d", w, k)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	if cfg.Rounds != 5 || cfg.TunnelBatch != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	bad := Config{Beta: 2}
	bad.SetDefaults()
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for beta > 1")
	}
	bad = Config{TunnelProb: 1.5}
	bad.SetDefaults()
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for tunnel probability above 1")
	}
}

func TestConfigSetDefaults_NegativeDisables(t *testing.T) {
	cfg := Config{Rounds: -1, Beta: -1, TunnelProb: -1}
	cfg.SetDefaults()
	if cfg.Rounds != 0 || cfg.Beta != 0 || cfg.TunnelProb != 0 {
		t.Fatalf("negative knobs not disabled: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled config rejected: %v", err)
	}
}
