package potential

import (
	"math"

	"github.com/san-kum/packmin/internal/landscape"
	"gonum.org/v1/gonum/floats"
)

// Harmonic is the single-center well E = k/2·|x - origin|².
type Harmonic struct {
	origin []float64
	k      float64
}

func NewHarmonic(origin []float64, k float64) (*Harmonic, error) {
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, landscape.Configf("k", "must be positive and finite, got %g", k)
	}
	o := make([]float64, len(origin))
	copy(o, origin)
	return &Harmonic{origin: o, k: k}, nil
}

func (h *Harmonic) Dof() int { return len(h.origin) }

func (h *Harmonic) Energy(x []float64) (float64, error) {
	if err := landscape.CheckLen("harmonic energy", len(h.origin), x); err != nil {
		return 0, err
	}
	if len(x) == 0 {
		return 0, nil
	}
	d := floats.Distance(x, h.origin, 2)
	return 0.5 * h.k * d * d, nil
}

func (h *Harmonic) EnergyGradient(x, grad []float64) (float64, error) {
	e, err := h.Energy(x)
	if err != nil {
		return 0, err
	}
	if err := landscape.CheckLen("harmonic gradient", len(h.origin), grad); err != nil {
		return 0, err
	}
	floats.SubTo(grad, x, h.origin)
	floats.Scale(h.k, grad)
	return e, nil
}

func (h *Harmonic) EnergyGradientHessian(x, grad, hess []float64) (float64, error) {
	n := len(h.origin)
	if err := landscape.CheckLen("harmonic hessian", n*n, hess); err != nil {
		return 0, err
	}
	e, err := h.EnergyGradient(x, grad)
	if err != nil {
		return 0, err
	}
	clear(hess)
	for i := 0; i < n; i++ {
		hess[i*n+i] = h.k
	}
	return e, nil
}

func (h *Harmonic) NumericalGradient(x, grad []float64) error {
	return landscape.NumericalGradient(h, x, grad)
}

func (h *Harmonic) NumericalHessian(x, hess []float64) error {
	return landscape.NumericalHessian(h, x, hess)
}
