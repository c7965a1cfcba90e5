package fire

import (
	"fmt"
	"math"

	"github.com/san-kum/packmin/internal/landscape"
	"gonum.org/v1/gonum/floats"
)

type Status int

const (
	Running Status = iota
	Converged
	// Stalled means MaxIter was reached first. It is a normal outcome, not
	// an error.
	Stalled
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Stalled:
		return "stalled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is everything one FIRE iteration reads and writes. Step advances it
// in place; nothing else is hidden in the minimizer.
type State struct {
	X      []float64
	V      []float64
	G      []float64
	Energy float64

	Dt    float64
	Alpha float64
	// Since counts consecutive iterations with positive power.
	Since int

	Iter     int
	Evals    int
	Rejected int
	Status   Status

	xTrial []float64
	gTrial []float64
}

// NewState evaluates pot at a copy of x0 and starts from rest.
func NewState(pot landscape.Potential, x0 []float64, p Params) (*State, error) {
	n := len(x0)
	s := &State{
		X:      make([]float64, n),
		V:      make([]float64, n),
		G:      make([]float64, n),
		Dt:     p.DtStart,
		Alpha:  p.Astart,
		xTrial: make([]float64, n),
		gTrial: make([]float64, n),
	}
	copy(s.X, x0)

	e, err := pot.EnergyGradient(s.X, s.G)
	if err != nil {
		return nil, fmt.Errorf("fire: initial evaluation: %w", err)
	}
	s.Energy = e
	s.Evals = 1
	s.classify(p)
	return s, nil
}

// GradNorm is the convergence measure under criterion c.
func (s *State) GradNorm(c Criterion) float64 {
	return c.Norm(s.G)
}

func (s *State) classify(p Params) {
	switch {
	case s.GradNorm(p.Criterion) < p.Tol:
		s.Status = Converged
	case s.Iter >= p.MaxIter:
		s.Status = Stalled
	default:
		s.Status = Running
	}
}

// Step performs one modified FIRE iteration. It is a no-op once the state
// has left Running. On an evaluation error the state is left unchanged
// apart from velocity and step bookkeeping, and the error is returned.
func Step(pot landscape.Potential, s *State, p Params) error {
	if s.Status != Running {
		return nil
	}

	// power P = F·v with F = -g
	if power := -floats.Dot(s.G, s.V); power > 0 {
		vnorm := floats.Norm(s.V, 2)
		gnorm := floats.Norm(s.G, 2)
		if gnorm > 0 {
			floats.Scale(1-s.Alpha, s.V)
			floats.AddScaled(s.V, -s.Alpha*vnorm/gnorm, s.G)
		}
		if s.Since > p.Nmin {
			s.Dt = math.Min(s.Dt*p.Finc, p.DtMax)
			s.Alpha *= p.Fa
		}
		s.Since++
	} else {
		s.halt(p)
	}

	floats.AddScaled(s.V, -s.Dt, s.G)

	dx := s.xTrial
	floats.ScaleTo(dx, s.Dt, s.V)
	if norm := floats.Norm(dx, 2); norm > p.MaxStep {
		floats.Scale(p.MaxStep/norm, dx)
	}
	floats.Add(dx, s.X)

	e, err := pot.EnergyGradient(s.xTrial, s.gTrial)
	s.Evals++
	if err != nil {
		return fmt.Errorf("fire: iteration %d: %w", s.Iter, err)
	}
	s.Iter++

	if p.Stepback && !(e <= s.Energy) {
		s.halt(p)
		s.Rejected++
	} else {
		s.X, s.xTrial = s.xTrial, s.X
		s.G, s.gTrial = s.gTrial, s.G
		s.Energy = e
	}

	s.classify(p)
	return nil
}

// halt zeroes the velocity, shrinks the step and resets mixing.
func (s *State) halt(p Params) {
	clear(s.V)
	s.Dt = math.Max(s.Dt*p.Fdec, p.DtMin)
	s.Alpha = p.Astart
	s.Since = 0
}
