package costmodel

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Operator is the Hermitian cost matrix over assignment variables. Each
// variable k encodes one (driver, passenger) candidate pairing; the
// diagonal carries the pairing's real energy and off-diagonal entries
// couple substitutable pairings. Built once per run, read-only afterward.
type Operator struct {
	drivers    int
	passengers int
	m          *mat.CDense
}

func newOperator(drivers, passengers int) *Operator {
	op := &Operator{drivers: drivers, passengers: passengers}
	if dim := drivers * passengers; dim > 0 {
		op.m = mat.NewCDense(dim, dim, nil)
	}
	return op
}

// Dim returns the number of assignment variables.
func (o *Operator) Dim() int { return o.drivers * o.passengers }

// Index maps a (driver, passenger) pair to its variable index.
func (o *Operator) Index(driver, passenger int) int {
	return driver*o.passengers + passenger
}

// Pair maps a variable index back to its (driver, passenger) pair.
func (o *Operator) Pair(k int) (driver, passenger int) {
	return k / o.passengers, k % o.passengers
}

// At returns the matrix entry at (r, c).
func (o *Operator) At(r, c int) complex128 { return o.m.At(r, c) }

func (o *Operator) set(r, c int, v complex128) { o.m.Set(r, c, v) }

// IsHermitian reports whether the operator equals its conjugate transpose
// within the given tolerance. The builder produces Hermitian operators by
// construction; this exists for verification.
func (o *Operator) IsHermitian(tol float64) bool {
	dim := o.Dim()
	for r := 0; r < dim; r++ {
		for c := r; c < dim; c++ {
			if cmplx.Abs(o.m.At(r, c)-cmplx.Conj(o.m.At(c, r))) > tol {
				return false
			}
		}
	}
	return true
}

// NormInf returns the maximum absolute row sum. For a Hermitian matrix
// it bounds the spectral radius, which the search engine uses to keep
// its phase-rotation expansion inside its convergence range.
func (o *Operator) NormInf() float64 {
	dim := o.Dim()
	var max float64
	for r := 0; r < dim; r++ {
		var sum float64
		for c := 0; c < dim; c++ {
			sum += cmplx.Abs(o.m.At(r, c))
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

// MulVec stores M*src into dst. Both slices must have length Dim.
func (o *Operator) MulVec(dst, src []complex128) {
	dim := o.Dim()
	for r := 0; r < dim; r++ {
		var acc complex128
		for c := 0; c < dim; c++ {
			acc += o.m.At(r, c) * src[c]
		}
		dst[r] = acc
	}
}

// Expectation returns the expected energy of a state, the real part of
// the quadratic form conj(state)^T * M * state. For a Hermitian M the
// imaginary part is zero up to rounding.
func (o *Operator) Expectation(state []complex128) float64 {
	dim := o.Dim()
	if dim == 0 || len(state) != dim {
		return 0
	}
	tmp := make([]complex128, dim)
	o.MulVec(tmp, state)
	var acc complex128
	for k := 0; k < dim; k++ {
		acc += cmplx.Conj(state[k]) * tmp[k]
	}
	return real(acc)
}
