// Package dispatch orchestrates the single-shot batch optimization that
// pairs drivers with ride requests. An Optimizer drives the pipeline:
// the cost-model builder turns the snapshot into a Hermitian cost
// operator, the quantum-inspired engine evolves an amplitude vector
// against it, the Collapser projects the final distribution onto a
// feasible assignment, and the route refiner orders each driver's
// stops. Runs are synchronous, CPU-bound and independent; concurrent
// runs share no mutable state.
package dispatch
