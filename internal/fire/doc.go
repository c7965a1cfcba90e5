// Package fire implements a modified FIRE (fast inertial relaxation engine)
// local minimizer over any landscape.Potential.
//
// Each iteration measures the power P = F·v with F = -∇E. While P > 0 the
// velocity is mixed toward the force direction and, after Nmin consecutive
// descent iterations, the step grows toward DtMax. When P <= 0 the velocity
// is zeroed, the step shrinks by Fdec and mixing restarts. Positions follow a
// semi-implicit Euler update with the displacement norm clipped to MaxStep.
// With Stepback a move that raises the energy is rejected.
//
// The iteration itself is the pure function [Step] over a [State], so a
// single iteration can be tested in isolation. [Minimizer] adds the run
// loop, observers and logging.
//
// # Termination
//
// A run ends Converged when the gradient norm selected by Params.Criterion
// drops below Params.Tol, or Stalled once Params.MaxIter iterations have
// passed. Stalled is a normal result and must be checked by the caller.
package fire
