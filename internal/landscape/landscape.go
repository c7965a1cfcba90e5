package landscape

// Potential is the energy/gradient contract consumed by minimizers.
type Potential interface {
	Energy(x []float64) (float64, error)
	EnergyGradient(x, grad []float64) (float64, error)
}

// Landscape is a Potential with second derivatives and finite-difference
// references for cross-validation.
type Landscape interface {
	Potential
	// Dof is the length of the coordinate vectors the landscape accepts.
	Dof() int
	EnergyGradientHessian(x, grad, hess []float64) (float64, error)
	NumericalGradient(x, grad []float64) error
	NumericalHessian(x, hess []float64) error
}
