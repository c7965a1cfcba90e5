// Package experiment turns a run description into a landscape, a starting
// point and a minimizer, and runs the CLI workflows on top of them.
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/packmin/internal/boundary"
	"github.com/san-kum/packmin/internal/config"
	"github.com/san-kum/packmin/internal/fire"
	"github.com/san-kum/packmin/internal/frozen"
	"github.com/san-kum/packmin/internal/landscape"
	"github.com/san-kum/packmin/internal/metrics"
	"github.com/san-kum/packmin/internal/potential"
)

type Experiment struct {
	cfg     *config.Config
	params  fire.Params
	pot     *potential.PairPotential
	land    landscape.Landscape
	reducer *frozen.Reducer
	x0      []float64
	logger  *slog.Logger
}

// New validates cfg and builds the potential. When coordinates are frozen
// the landscape is the reduced one and every coordinate slice the
// experiment hands out lives in the reduced space.
func New(cfg *config.Config, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := cfg.System
	var pot *potential.PairPotential
	if cfg.Periodic() {
		pot, err = potential.NewHSWCAPeriodic(s.Eps, s.Sca, s.Radii, s.Box)
	} else {
		pot, err = potential.NewHSWCA(s.Eps, s.Sca, s.Radii, s.Dim)
	}
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", cfg.Name, err)
	}

	e := &Experiment{
		cfg:    cfg,
		params: params,
		pot:    pot,
		land:   pot,
		x0:     cfg.InitialCoords(),
		logger: logger,
	}

	if dof := cfg.FrozenDOF(); len(dof) > 0 {
		r, err := frozen.NewReducer(e.x0, dof)
		if err != nil {
			return nil, fmt.Errorf("experiment %s: %w", cfg.Name, err)
		}
		ad, err := frozen.NewAdapter(pot, r)
		if err != nil {
			return nil, fmt.Errorf("experiment %s: %w", cfg.Name, err)
		}
		e.reducer = r
		e.land = ad
	}

	logger.Info("experiment ready",
		"name", cfg.Name,
		"natoms", pot.Natoms(),
		"dim", pot.Dim(),
		"periodic", cfg.Periodic(),
		"frozen", len(cfg.FrozenDOF()),
	)
	return e, nil
}

func (e *Experiment) Config() *config.Config              { return e.cfg }
func (e *Experiment) Params() fire.Params                 { return e.params }
func (e *Experiment) Potential() *potential.PairPotential { return e.pot }
func (e *Experiment) Landscape() landscape.Landscape      { return e.land }

// Reducer is nil when nothing is frozen.
func (e *Experiment) Reducer() *frozen.Reducer { return e.reducer }

// Start returns the starting point in the landscape's coordinates.
func (e *Experiment) Start() []float64 {
	if e.reducer == nil {
		return landscape.Coords(e.x0).Clone()
	}
	x, _ := e.reducer.ReduceCoords(e.x0)
	return x
}

// Inflate maps landscape coordinates back to a full configuration. Periodic
// configurations are folded into the box.
func (e *Experiment) Inflate(x []float64) ([]float64, error) {
	full := landscape.Coords(x).Clone()
	if e.reducer != nil {
		var err error
		if full, err = e.reducer.InflateCoords(x); err != nil {
			return nil, err
		}
	}
	if per, ok := e.pot.Boundary().(*boundary.Periodic); ok {
		if err := per.Wrap(full); err != nil {
			return nil, err
		}
	}
	return full, nil
}

func (e *Experiment) NewMinimizer(opts ...fire.Option) (*fire.Minimizer, error) {
	base := []fire.Option{
		fire.WithLogger(e.logger.With("experiment", e.cfg.Name)),
		fire.WithLogEvery(e.cfg.Minimizer.LogEvery),
	}
	return fire.New(e.land, e.Start(), e.params, append(base, opts...)...)
}

type Report struct {
	Name          string
	Natoms        int
	Dim           int
	Dof           int
	Frozen        int
	InitialEnergy float64
	Result        *fire.Result
	// Final is the full configuration after minimization.
	Final   []float64
	Metrics map[string]float64
	Trace   *metrics.Trace
}

// Run minimizes from the configured start. A stalled minimization is a
// successful run; inspect Report.Result.Status.
func (e *Experiment) Run(ctx context.Context, observers ...fire.Observer) (*Report, error) {
	start := e.Start()
	e0, err := e.land.Energy(start)
	if err != nil {
		return nil, err
	}

	trace := metrics.NewTrace(0)
	set := append(metrics.Default(start, e0), trace)
	opts := []fire.Option{fire.WithObserver(set)}
	for _, o := range observers {
		opts = append(opts, fire.WithObserver(o))
	}

	m, err := e.NewMinimizer(opts...)
	if err != nil {
		return nil, err
	}
	res, err := m.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", e.cfg.Name, err)
	}

	final, err := e.Inflate(res.X)
	if err != nil {
		return nil, err
	}
	return &Report{
		Name:          e.cfg.Name,
		Natoms:        e.pot.Natoms(),
		Dim:           e.pot.Dim(),
		Dof:           e.land.Dof(),
		Frozen:        e.pot.Dof() - e.land.Dof(),
		InitialEnergy: e0,
		Result:        res,
		Final:         final,
		Metrics:       set.Values(),
		Trace:         trace,
	}, nil
}
