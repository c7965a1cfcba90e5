package landscape

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// FiniteDifferenceStep is the fixed centered-difference step used by the
// numerical gradient and Hessian.
const FiniteDifferenceStep = 1e-7

// NumericalGradient fills grad with centered finite differences of p.Energy
// at x. It is a reference for validating analytic gradients and is too slow
// for production force evaluation.
func NumericalGradient(p Potential, x, grad []float64) error {
	if err := CheckLen("numerical gradient", len(x), grad); err != nil {
		return err
	}
	if len(x) == 0 {
		return nil
	}

	var evalErr error
	f := func(y []float64) float64 {
		e, err := p.Energy(y)
		if err != nil && evalErr == nil {
			evalErr = err
		}
		return e
	}
	fd.Gradient(grad, f, x, &fd.Settings{
		Formula: fd.Central,
		Step:    FiniteDifferenceStep,
	})
	return evalErr
}

// NumericalHessian fills the row-major hess with centered finite differences
// of p.EnergyGradient at x.
func NumericalHessian(p Potential, x, hess []float64) error {
	n := len(x)
	if err := CheckLen("numerical hessian", n*n, hess); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	var evalErr error
	g := func(grad, y []float64) {
		if _, err := p.EnergyGradient(y, grad); err != nil && evalErr == nil {
			evalErr = err
		}
	}
	fd.Jacobian(mat.NewDense(n, n, hess), g, x, &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    FiniteDifferenceStep,
	})
	return evalErr
}
