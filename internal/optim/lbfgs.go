// Package optim runs a reference quasi-Newton minimization over the same
// landscape contract the FIRE minimizer uses, so the two can be compared.
package optim

import (
	"context"
	"fmt"

	"github.com/san-kum/packmin/internal/fire"
	"github.com/san-kum/packmin/internal/landscape"
	"gonum.org/v1/gonum/optimize"
)

const (
	DefaultMaxIter = 10000
	DefaultMemory  = 15
)

type Settings struct {
	// Tol is compared against the max-abs gradient component, which is the
	// stopping rule gonum applies.
	Tol     float64
	MaxIter int
	Memory  int
}

func DefaultSettings() Settings {
	return Settings{
		Tol:     fire.DefaultTol,
		MaxIter: DefaultMaxIter,
		Memory:  DefaultMemory,
	}
}

type Result struct {
	X           []float64
	Energy      float64
	GradNorm    float64
	Iterations  int
	Evaluations int
	Converged   bool
	Status      string
}

func (r *Result) String() string {
	return fmt.Sprintf("%s after %d iterations: energy %.10g, grad norm %.3g", r.Status, r.Iterations, r.Energy, r.GradNorm)
}

// LBFGS minimizes pot from x0. Evaluation errors abort the run and are
// returned; hitting the iteration cap is reported through Result.Converged.
func LBFGS(ctx context.Context, pot landscape.Potential, x0 []float64, s Settings) (*Result, error) {
	if pot == nil {
		return nil, landscape.Configf("potential", "must not be nil")
	}
	if s.Tol <= 0 {
		return nil, landscape.Configf("tol", "must be positive, got %g", s.Tol)
	}
	if s.MaxIter <= 0 {
		return nil, landscape.Configf("max_iter", "must be positive, got %d", s.MaxIter)
	}

	n := len(x0)
	if n == 0 {
		e, err := pot.Energy(x0)
		if err != nil {
			return nil, err
		}
		return &Result{X: []float64{}, Energy: e, Converged: true, Status: optimize.GradientThreshold.String()}, nil
	}

	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			e, err := pot.Energy(x)
			if err != nil && evalErr == nil {
				evalErr = err
			}
			return e
		},
		Grad: func(grad, x []float64) {
			if _, err := pot.EnergyGradient(x, grad); err != nil && evalErr == nil {
				evalErr = err
			}
		},
		Status: func() (optimize.Status, error) {
			if evalErr != nil {
				return optimize.Failure, evalErr
			}
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}

	settings := optimize.Settings{
		GradientThreshold: s.Tol,
		MajorIterations:   s.MaxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Iterations: 200,
		},
	}

	res, err := optimize.Minimize(problem, x0, &settings, &optimize.LBFGS{Store: s.Memory})
	if evalErr != nil {
		return nil, fmt.Errorf("optim: lbfgs: %w", evalErr)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if res == nil {
		return nil, fmt.Errorf("optim: lbfgs: %w", err)
	}

	out := &Result{
		X:           res.X,
		Energy:      res.F,
		Iterations:  res.Stats.MajorIterations,
		Evaluations: res.Stats.FuncEvaluations + res.Stats.GradEvaluations,
		Status:      res.Status.String(),
	}
	grad := make([]float64, n)
	if _, gerr := pot.EnergyGradient(out.X, grad); gerr != nil {
		return nil, fmt.Errorf("optim: final evaluation: %w", gerr)
	}
	out.GradNorm = fire.MaxAbs.Norm(grad)
	out.Converged = out.GradNorm < s.Tol
	if err != nil && !out.Converged {
		out.Status = fmt.Sprintf("%s (%v)", out.Status, err)
	}
	return out, nil
}
