package quantum

import (
	"math"
	"math/cmplx"
)

// State is a complex amplitude vector over assignment variables. The
// engine keeps it normalized after every operator application; squared
// magnitudes act as heuristic probability weights.
type State []complex128

// Uniform returns the equal-superposition state of the given dimension.
func Uniform(dim int) State {
	if dim <= 0 {
		return State{}
	}
	s := make(State, dim)
	amp := complex(1/math.Sqrt(float64(dim)), 0)
	for k := range s {
		s[k] = amp
	}
	return s
}

// Norm returns the Euclidean norm of the state.
func (s State) Norm() float64 {
	var sum float64
	for _, a := range s {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// Normalize scales the state to unit norm. It reports false when the
// norm is numerically zero and leaves the state untouched in that case.
func (s State) Normalize() bool {
	n := s.Norm()
	if n < 1e-12 || math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	inv := complex(1/n, 0)
	for k := range s {
		s[k] *= inv
	}
	return true
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	cp := make(State, len(s))
	copy(cp, s)
	return cp
}

// Weights returns the squared amplitude magnitude per variable.
func (s State) Weights() []float64 {
	w := make([]float64, len(s))
	for k, a := range s {
		m := cmplx.Abs(a)
		w[k] = m * m
	}
	return w
}
