package experiment

import (
	"context"
	"math"

	"github.com/san-kum/packmin/internal/fire"
	"github.com/san-kum/packmin/internal/optim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CheckReport compares analytic derivatives against finite differences at
// the starting point. Deviations are max-abs over all entries; the scales
// are the max-abs analytic entries, for judging relative size.
type CheckReport struct {
	Dof       int
	Energy    float64
	GradDev   float64
	GradScale float64
	HessDev   float64
	HessScale float64
	// Asymmetry is the largest |H_ij - H_ji| of the analytic Hessian.
	Asymmetry float64
}

func (e *Experiment) Check() (*CheckReport, error) {
	x := e.Start()
	n := len(x)

	grad := make([]float64, n)
	hess := make([]float64, n*n)
	energy, err := e.land.EnergyGradientHessian(x, grad, hess)
	if err != nil {
		return nil, err
	}

	ngrad := make([]float64, n)
	if err := e.land.NumericalGradient(x, ngrad); err != nil {
		return nil, err
	}
	nhess := make([]float64, n*n)
	if err := e.land.NumericalHessian(x, nhess); err != nil {
		return nil, err
	}

	rep := &CheckReport{Dof: n, Energy: energy}
	if n == 0 {
		return rep, nil
	}
	rep.GradDev = maxAbsDiff(grad, ngrad)
	rep.GradScale = floats.Norm(grad, math.Inf(1))
	rep.HessDev = maxAbsDiff(hess, nhess)
	rep.HessScale = floats.Norm(hess, math.Inf(1))

	h := mat.NewDense(n, n, hess)
	var asym mat.Dense
	asym.Sub(h, h.T())
	rep.Asymmetry = floats.Norm(asym.RawMatrix().Data, math.Inf(1))
	return rep, nil
}

func maxAbsDiff(a, b []float64) float64 {
	d := make([]float64, len(a))
	floats.SubTo(d, a, b)
	return floats.Norm(d, math.Inf(1))
}

type Comparison struct {
	InitialEnergy float64
	Fire          *fire.Result
	LBFGS         *optim.Result
}

// Compare minimizes from the same start with FIRE and with the L-BFGS
// reference at the same tolerance and iteration cap.
func (e *Experiment) Compare(ctx context.Context) (*Comparison, error) {
	start := e.Start()
	e0, err := e.land.Energy(start)
	if err != nil {
		return nil, err
	}

	m, err := e.NewMinimizer()
	if err != nil {
		return nil, err
	}
	fr, err := m.Run(ctx)
	if err != nil {
		return nil, err
	}

	s := optim.DefaultSettings()
	s.Tol = e.params.Tol
	s.MaxIter = e.params.MaxIter
	lr, err := optim.LBFGS(ctx, e.land, start, s)
	if err != nil {
		return nil, err
	}

	e.logger.Info("comparison finished",
		"name", e.cfg.Name,
		"fire_energy", fr.Energy,
		"lbfgs_energy", lr.Energy,
	)
	return &Comparison{InitialEnergy: e0, Fire: fr, LBFGS: lr}, nil
}
