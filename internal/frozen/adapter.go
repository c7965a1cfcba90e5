package frozen

import (
	"github.com/san-kum/packmin/internal/landscape"
	"github.com/san-kum/packmin/internal/potential"
)

// Adapter presents a landscape over the mobile coordinates of a Reducer.
// Every method inflates its input to the full space, delegates to the wrapped
// landscape and reduces the outputs. An Adapter is itself a Landscape, so
// adapters nest.
type Adapter struct {
	pot landscape.Landscape
	r   *Reducer
}

func NewAdapter(pot landscape.Landscape, r *Reducer) (*Adapter, error) {
	if pot == nil || r == nil {
		return nil, landscape.Configf("adapter", "potential and reducer are required")
	}
	if pot.Dof() != r.FullDim() {
		return nil, landscape.Configf("reference", "length %d does not match potential dimension %d", r.FullDim(), pot.Dof())
	}
	return &Adapter{pot: pot, r: r}, nil
}

// NewHSWCA freezes frozenDOF of an open-space HS-WCA potential at the values
// in reference.
func NewHSWCA(eps, sca float64, radii []float64, dim int, reference []float64, frozenDOF []int) (*Adapter, error) {
	pot, err := potential.NewHSWCA(eps, sca, radii, dim)
	if err != nil {
		return nil, err
	}
	return newFor(pot, reference, frozenDOF)
}

// NewHSWCAPeriodic is NewHSWCA in a periodic box.
func NewHSWCAPeriodic(eps, sca float64, radii, box, reference []float64, frozenDOF []int) (*Adapter, error) {
	pot, err := potential.NewHSWCAPeriodic(eps, sca, radii, box)
	if err != nil {
		return nil, err
	}
	return newFor(pot, reference, frozenDOF)
}

func newFor(pot landscape.Landscape, reference []float64, frozenDOF []int) (*Adapter, error) {
	r, err := NewReducer(reference, frozenDOF)
	if err != nil {
		return nil, err
	}
	return NewAdapter(pot, r)
}

func (a *Adapter) Dof() int                  { return a.r.ReducedDim() }
func (a *Adapter) Reducer() *Reducer         { return a.r }
func (a *Adapter) Full() landscape.Landscape { return a.pot }

func (a *Adapter) Energy(x []float64) (float64, error) {
	full, err := a.r.InflateCoords(x)
	if err != nil {
		return 0, err
	}
	return a.pot.Energy(full)
}

func (a *Adapter) EnergyGradient(x, grad []float64) (float64, error) {
	if err := landscape.CheckLen("frozen gradient", a.Dof(), grad); err != nil {
		return 0, err
	}
	full, err := a.r.InflateCoords(x)
	if err != nil {
		return 0, err
	}

	fullGrad := make([]float64, a.r.FullDim())
	e, err := a.pot.EnergyGradient(full, fullGrad)
	if err != nil {
		return 0, err
	}
	return e, a.r.ReduceGradientInto(grad, fullGrad)
}

func (a *Adapter) EnergyGradientHessian(x, grad, hess []float64) (float64, error) {
	m := a.Dof()
	if err := landscape.CheckLen("frozen gradient", m, grad); err != nil {
		return 0, err
	}
	if err := landscape.CheckLen("frozen hessian", m*m, hess); err != nil {
		return 0, err
	}
	full, err := a.r.InflateCoords(x)
	if err != nil {
		return 0, err
	}

	n := a.r.FullDim()
	fullGrad := make([]float64, n)
	fullHess := make([]float64, n*n)
	e, err := a.pot.EnergyGradientHessian(full, fullGrad, fullHess)
	if err != nil {
		return 0, err
	}
	if err := a.r.ReduceGradientInto(grad, fullGrad); err != nil {
		return 0, err
	}
	return e, a.r.ReduceHessianInto(hess, fullHess)
}

func (a *Adapter) NumericalGradient(x, grad []float64) error {
	if err := landscape.CheckLen("frozen numerical gradient", a.Dof(), grad); err != nil {
		return err
	}
	full, err := a.r.InflateCoords(x)
	if err != nil {
		return err
	}

	fullGrad := make([]float64, a.r.FullDim())
	if err := a.pot.NumericalGradient(full, fullGrad); err != nil {
		return err
	}
	return a.r.ReduceGradientInto(grad, fullGrad)
}

func (a *Adapter) NumericalHessian(x, hess []float64) error {
	m := a.Dof()
	if err := landscape.CheckLen("frozen numerical hessian", m*m, hess); err != nil {
		return err
	}
	full, err := a.r.InflateCoords(x)
	if err != nil {
		return err
	}

	n := a.r.FullDim()
	fullHess := make([]float64, n*n)
	if err := a.pot.NumericalHessian(full, fullHess); err != nil {
		return err
	}
	return a.r.ReduceHessianInto(hess, fullHess)
}
