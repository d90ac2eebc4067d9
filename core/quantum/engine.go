// Package quantum implements the metaheuristic search engine at the
// heart of the dispatcher. The vocabulary is quantum-inspired but the
// mechanics are ordinary complex linear algebra: a normalized amplitude
// vector evolves through alternating phase-rotation and mixing
// operators, with stochastic tunneling escapes and decaying decoherence
// noise emulating annealing cooldown.
package quantum

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/kilianp07/qdispatch/core/costmodel"
	"github.com/kilianp07/qdispatch/core/logger"
)

// phaseOrder is the truncation order of each exp(-i*theta*M) substep in
// the phase-separation stage. The full rotation is split so every
// substep angle stays at most about one radian, where six terms leave a
// remainder well below the renormalization tolerance.
const phaseOrder = 6

// Config holds the externally tunable evolution parameters.
type Config struct {
	Rounds        int     `json:"rounds"`
	Gamma         float64 `json:"gamma"`              // phase-separation angle
	Beta          float64 `json:"beta"`               // mixing fraction in [0,1]
	TunnelProb    float64 `json:"tunnel_probability"` // per-round tunneling attempt probability
	TunnelBatch   int     `json:"tunnel_batch"`       // candidate states sampled per attempt
	Temperature   float64 `json:"temperature"`        // Metropolis acceptance temperature
	CoherenceTime float64 `json:"coherence_time"`     // rounds until noise decays by 1/e
	Seed          int64   `json:"seed"`               // 0 means time-based
}

// SetDefaults applies the standard evolution parameters. Zero means
// unset; Rounds, Beta and TunnelProb accept a negative value to mean an
// explicit zero (no evolution, no mixing, no tunneling).
func (c *Config) SetDefaults() {
	switch {
	case c.Rounds < 0:
		c.Rounds = 0
	case c.Rounds == 0:
		c.Rounds = 5
	}
	if c.Gamma == 0 {
		c.Gamma = 0.5
	}
	switch {
	case c.Beta < 0:
		c.Beta = 0
	case c.Beta == 0:
		c.Beta = 0.3
	}
	switch {
	case c.TunnelProb < 0:
		c.TunnelProb = 0
	case c.TunnelProb == 0:
		c.TunnelProb = 0.1
	}
	if c.TunnelBatch == 0 {
		c.TunnelBatch = 10
	}
	if c.Temperature == 0 {
		c.Temperature = 1.0
	}
	if c.CoherenceTime == 0 {
		c.CoherenceTime = 10
	}
}

// Validate checks the parameter ranges.
func (c Config) Validate() error {
	if c.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative")
	}
	if c.Beta < 0 || c.Beta > 1 {
		return fmt.Errorf("beta must be within [0,1]")
	}
	if c.TunnelProb < 0 || c.TunnelProb > 1 {
		return fmt.Errorf("tunnel probability must be within [0,1]")
	}
	if c.TunnelBatch < 0 {
		return fmt.Errorf("tunnel batch must not be negative")
	}
	if c.Temperature < 0 {
		return fmt.Errorf("temperature must not be negative")
	}
	if c.CoherenceTime <= 0 {
		return fmt.Errorf("coherence time must be positive")
	}
	return nil
}

// Engine evolves a search state against a cost operator. An Engine is
// scoped to explicit construction; the state of one run never leaks into
// the next. It is not safe for concurrent use because of its RNG, so
// concurrent runs should each construct their own.
type Engine struct {
	cfg Config
	rng *rand.Rand
	log logger.Logger
}

// New returns an engine with the given configuration. A zero Seed draws
// one from the clock. A nil logger disables logging.
func New(cfg Config, log logger.Logger) *Engine {
	cfg.SetDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{cfg: cfg, rng: rand.New(rand.NewSource(seed)), log: log}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// Evolve runs the configured number of rounds and returns the final
// state. A nil or mismatched warm start falls back to the uniform
// superposition. A zero-dimension operator returns an empty state.
func (e *Engine) Evolve(op *costmodel.Operator, warm State) State {
	dim := op.Dim()
	if dim == 0 {
		return State{}
	}

	var state State
	if len(warm) == dim {
		state = warm.Clone()
		if !state.Normalize() {
			state = Uniform(dim)
		}
	} else {
		state = Uniform(dim)
	}

	// Penalty entries push ||M|| far past the range where a single
	// truncated expansion of exp(-i*gamma*M) converges, so the rotation
	// is composed from substeps of angle at most one radian.
	steps := 1
	if radius := op.NormInf(); radius > 0 {
		if n := int(math.Ceil(e.cfg.Gamma * radius)); n > steps {
			steps = n
		}
	}

	for round := 0; round < e.cfg.Rounds; round++ {
		e.phaseSeparate(op, state, steps)
		e.mix(state)
		if e.rng.Float64() < e.cfg.TunnelProb {
			state = e.tunnel(op, state)
		}
		e.decohere(state, round)
		e.log.Debugw("evolution round", map[string]any{
			"round":  round,
			"energy": op.Expectation(state),
		})
	}
	return state
}

// phaseSeparate applies exp(-i*gamma*M) to the state, rotating each
// amplitude's phase in proportion to its energy. The exact identity
// exp(-i*gamma*M) = exp(-i*(gamma/steps)*M)^steps lets every truncated
// expansion run at a small angle where it converges, so high-penalty
// amplitudes are rotated instead of amplified.
func (e *Engine) phaseSeparate(op *costmodel.Operator, state State, steps int) {
	dim := len(state)
	term := make(State, dim)
	next := make(State, dim)
	coef := complex(0, -e.cfg.Gamma/float64(steps))
	for s := 0; s < steps; s++ {
		acc := state.Clone()
		copy(term, state)
		for k := 1; k <= phaseOrder; k++ {
			op.MulVec(next, term)
			scale := coef / complex(float64(k), 0)
			for i := range next {
				next[i] *= scale
			}
			copy(term, next)
			for i := range acc {
				acc[i] += term[i]
			}
		}
		copy(state, acc)
	}
	e.renormalize(state)
}

// mix redistributes a beta fraction of each amplitude to its single-bit
// index neighbors, keeping the rest in place. Indices past the dimension
// (when dim is not a power of two) simply have fewer neighbors.
func (e *Engine) mix(state State) {
	dim := len(state)
	if dim < 2 {
		return
	}
	bitsNeeded := 0
	for 1<<bitsNeeded < dim {
		bitsNeeded++
	}
	next := make(State, dim)
	retain := complex(1-e.cfg.Beta, 0)
	for k := 0; k < dim; k++ {
		next[k] += retain * state[k]
		nbrs := 0
		for b := 0; b < bitsNeeded; b++ {
			if k^(1<<b) < dim {
				nbrs++
			}
		}
		if nbrs == 0 {
			next[k] += complex(e.cfg.Beta, 0) * state[k]
			continue
		}
		share := complex(e.cfg.Beta/float64(nbrs), 0)
		for b := 0; b < bitsNeeded; b++ {
			if n := k ^ (1 << b); n < dim {
				next[n] += share * state[k]
			}
		}
	}
	copy(state, next)
	e.renormalize(state)
}

// tunnel samples a batch of random candidate states and considers the
// best of them: a candidate with strictly lower expected energy is
// taken outright, one that is still worse is accepted with Metropolis
// probability exp(-dE/T). Ties keep the current state.
func (e *Engine) tunnel(op *costmodel.Operator, state State) State {
	current := op.Expectation(state)
	var best State
	bestEnergy := math.Inf(1)
	for i := 0; i < e.cfg.TunnelBatch; i++ {
		cand := e.randomState(len(state))
		if en := op.Expectation(cand); en < bestEnergy {
			best = cand
			bestEnergy = en
		}
	}
	if best == nil || bestEnergy == current {
		return state
	}
	if bestEnergy < current {
		e.log.Debugf("tunneling jump: energy %.4f -> %.4f", current, bestEnergy)
		return best
	}
	accept := 0.0
	if e.cfg.Temperature > 0 {
		accept = math.Exp(-(bestEnergy - current) / e.cfg.Temperature)
	}
	if e.rng.Float64() < accept {
		e.log.Debugf("tunneling uphill: energy %.4f -> %.4f", current, bestEnergy)
		return best
	}
	return state
}

// decohere injects Gaussian amplitude noise that decays exponentially
// with the round index, then renormalizes.
func (e *Engine) decohere(state State, round int) {
	sigma := 0.05 * math.Exp(-float64(round)/e.cfg.CoherenceTime)
	for k := range state {
		state[k] += complex(e.rng.NormFloat64()*sigma, e.rng.NormFloat64()*sigma)
	}
	e.renormalize(state)
}

// renormalize restores unit norm, falling back to the uniform state when
// all amplitudes have collapsed to zero under extreme penalty weighting.
func (e *Engine) renormalize(state State) {
	if !state.Normalize() {
		copy(state, Uniform(len(state)))
	}
}

func (e *Engine) randomState(dim int) State {
	s := make(State, dim)
	for k := range s {
		s[k] = complex(e.rng.NormFloat64(), e.rng.NormFloat64())
	}
	if !s.Normalize() {
		return Uniform(dim)
	}
	return s
}
