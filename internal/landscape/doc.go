// Package landscape defines the energy-landscape contracts shared by every
// potential and minimizer in packmin.
//
// A configuration of N particles in D dimensions is a flat []float64 of
// length D·N where particle i occupies [D·i, D·i+D). Gradients have the same
// length and Hessians are row-major (D·N)×(D·N) buffers. All output buffers
// are owned by the caller and must have the exact expected length:
//
//   - [Potential]: energy and gradient, all a minimizer needs
//   - [Landscape]: adds the analytic Hessian and finite-difference checks
//   - [Coords]: small vector helpers over a configuration
//   - [ShapeError], [ConfigError]: the error taxonomy
//
// # Example
//
//	pot, _ := potential.NewHSWCA(1, 1.2, radii, 3)
//	grad := make([]float64, pot.Dof())
//	e, err := pot.EnergyGradient(x, grad)
//
// # Thread Safety
//
// Implementations in this module are immutable after construction and keep
// no scratch state, so one instance may serve concurrent callers as long as
// each caller passes its own buffers.
package landscape
