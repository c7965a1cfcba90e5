package fire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/packmin/internal/landscape"
)

// Observer is notified after every iteration, including rejected ones.
type Observer interface {
	OnStep(iter int, x []float64, energy, gradNorm float64)
}

type Option func(*Minimizer)

func WithLogger(l *slog.Logger) Option {
	return func(m *Minimizer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithLogEvery sets how many iterations pass between debug progress lines.
// Zero disables them.
func WithLogEvery(n int) Option {
	return func(m *Minimizer) { m.logEvery = n }
}

func WithObserver(o Observer) Option {
	return func(m *Minimizer) { m.observers = append(m.observers, o) }
}

// Minimizer drives a State over a potential until it converges or stalls.
// It is not safe for concurrent use; the potential may be shared.
type Minimizer struct {
	pot       landscape.Potential
	p         Params
	s         *State
	observers []Observer
	logger    *slog.Logger
	logEvery  int
}

type Result struct {
	X           []float64
	Energy      float64
	GradNorm    float64
	Iterations  int
	Evaluations int
	Rejected    int
	Status      Status
}

func New(pot landscape.Potential, x0 []float64, p Params, opts ...Option) (*Minimizer, error) {
	if pot == nil {
		return nil, landscape.Configf("potential", "must not be nil")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := &Minimizer{
		pot:      pot,
		p:        p,
		logger:   slog.Default(),
		logEvery: DefaultLogEvery,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.Reset(x0); err != nil {
		return nil, err
	}
	return m, nil
}

// Reset restarts from x0 at rest with the initial step and mixing values.
func (m *Minimizer) Reset(x0 []float64) error {
	s, err := NewState(m.pot, x0, m.p)
	if err != nil {
		return err
	}
	m.s = s
	return nil
}

func (m *Minimizer) Params() Params  { return m.p }
func (m *Minimizer) Status() Status  { return m.s.Status }
func (m *Minimizer) Energy() float64 { return m.s.Energy }

// State exposes the live iteration state. Callers must not modify it.
func (m *Minimizer) State() *State { return m.s }

// X returns a copy of the current coordinates.
func (m *Minimizer) X() []float64 {
	x := make([]float64, len(m.s.X))
	copy(x, m.s.X)
	return x
}

// Step advances one iteration and notifies observers.
func (m *Minimizer) Step() error {
	if m.s.Status != Running {
		return nil
	}
	rejected := m.s.Rejected
	if err := Step(m.pot, m.s, m.p); err != nil {
		return err
	}

	gnorm := m.s.GradNorm(m.p.Criterion)
	for _, o := range m.observers {
		o.OnStep(m.s.Iter, m.s.X, m.s.Energy, gnorm)
	}

	if m.s.Rejected > rejected {
		m.logger.Debug("step rejected", "iter", m.s.Iter, "dt", m.s.Dt)
	}
	if m.logEvery > 0 && m.s.Iter%m.logEvery == 0 {
		m.logger.Debug("fire progress",
			"iter", m.s.Iter,
			"energy", m.s.Energy,
			m.p.Criterion.String(), gnorm,
			"dt", m.s.Dt,
			"alpha", m.s.Alpha,
		)
	}
	return nil
}

// Run iterates until the state leaves Running or ctx is done. Stalled is
// reported through Result.Status with a nil error.
func (m *Minimizer) Run(ctx context.Context) (*Result, error) {
	for m.s.Status == Running {
		select {
		case <-ctx.Done():
			return m.Result(), ctx.Err()
		default:
		}
		if err := m.Step(); err != nil {
			return m.Result(), err
		}
	}

	res := m.Result()
	m.logger.Info("minimization finished",
		"status", res.Status.String(),
		"iterations", res.Iterations,
		"energy", res.Energy,
		"grad_norm", res.GradNorm,
	)
	return res, nil
}

func (m *Minimizer) Result() *Result {
	return &Result{
		X:           m.X(),
		Energy:      m.s.Energy,
		GradNorm:    m.s.GradNorm(m.p.Criterion),
		Iterations:  m.s.Iter,
		Evaluations: m.s.Evals,
		Rejected:    m.s.Rejected,
		Status:      m.s.Status,
	}
}

func (r *Result) String() string {
	return fmt.Sprintf("%s after %d iterations: energy %.10g, grad norm %.3g", r.Status, r.Iterations, r.Energy, r.GradNorm)
}
