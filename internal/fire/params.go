package fire

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/packmin/internal/landscape"
)

const (
	DefaultTol      = 1e-4
	DefaultDtStart  = 0.1
	DefaultDtMax    = 1.0
	DefaultDtMin    = 1e-10
	DefaultMaxStep  = 0.5
	DefaultNmin     = 5
	DefaultFinc     = 1.1
	DefaultFdec     = 0.5
	DefaultFa       = 0.99
	DefaultAstart   = 0.1
	DefaultMaxIter  = 10000
	DefaultLogEvery = 100
)

// Criterion selects the gradient norm compared against Params.Tol.
type Criterion int

const (
	// RMS is ‖g‖/√n.
	RMS Criterion = iota
	// MaxAbs is the largest gradient component magnitude.
	MaxAbs
)

func (c Criterion) String() string {
	switch c {
	case RMS:
		return "rms"
	case MaxAbs:
		return "maxabs"
	default:
		return fmt.Sprintf("criterion(%d)", int(c))
	}
}

func ParseCriterion(s string) (Criterion, error) {
	switch strings.ToLower(s) {
	case "", "rms":
		return RMS, nil
	case "maxabs", "max":
		return MaxAbs, nil
	default:
		return RMS, landscape.Configf("criterion", "unknown value %q (want rms or maxabs)", s)
	}
}

// Norm evaluates the criterion on g.
func (c Criterion) Norm(g []float64) float64 {
	if c == MaxAbs {
		return landscape.Coords(g).MaxAbs()
	}
	return landscape.Coords(g).RMS()
}

// Params tunes the modified FIRE iteration.
type Params struct {
	Tol     float64 // stop threshold on the gradient norm
	DtStart float64 // initial integration step
	DtMax   float64 // growth cap on the step
	DtMin   float64 // lower clamp on the step
	MaxStep float64 // max displacement norm per iteration
	Nmin    int     // descent iterations before the step may grow
	Finc    float64 // step growth factor
	Fdec    float64 // step shrink factor
	Fa      float64 // mixing coefficient decay
	Astart  float64 // initial mixing coefficient
	MaxIter int

	Criterion Criterion
	// Stepback rejects any move that raises the energy.
	Stepback bool
}

func DefaultParams() Params {
	return Params{
		Tol:       DefaultTol,
		DtStart:   DefaultDtStart,
		DtMax:     DefaultDtMax,
		DtMin:     DefaultDtMin,
		MaxStep:   DefaultMaxStep,
		Nmin:      DefaultNmin,
		Finc:      DefaultFinc,
		Fdec:      DefaultFdec,
		Fa:        DefaultFa,
		Astart:    DefaultAstart,
		MaxIter:   DefaultMaxIter,
		Criterion: RMS,
		Stepback:  true,
	}
}

func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"tol", p.Tol},
		{"dt_start", p.DtStart},
		{"dt_max", p.DtMax},
		{"dt_min", p.DtMin},
		{"max_step", p.MaxStep},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return landscape.Configf(f.name, "must be positive and finite, got %g", f.v)
		}
	}
	if p.DtMin > p.DtStart || p.DtStart > p.DtMax {
		return landscape.Configf("dt_start", "must satisfy dt_min <= dt_start <= dt_max, got %g <= %g <= %g", p.DtMin, p.DtStart, p.DtMax)
	}
	if p.Nmin < 0 {
		return landscape.Configf("nmin", "must not be negative, got %d", p.Nmin)
	}
	if !(p.Finc >= 1) {
		return landscape.Configf("finc", "must be at least 1, got %g", p.Finc)
	}
	if !(p.Fdec > 0 && p.Fdec < 1) {
		return landscape.Configf("fdec", "must be in (0, 1), got %g", p.Fdec)
	}
	if !(p.Fa > 0 && p.Fa <= 1) {
		return landscape.Configf("fa", "must be in (0, 1], got %g", p.Fa)
	}
	if !(p.Astart >= 0 && p.Astart < 1) {
		return landscape.Configf("astart", "must be in [0, 1), got %g", p.Astart)
	}
	if p.MaxIter < 1 {
		return landscape.Configf("max_iter", "must be at least 1, got %d", p.MaxIter)
	}
	if p.Criterion != RMS && p.Criterion != MaxAbs {
		return landscape.Configf("criterion", "unknown value %d", int(p.Criterion))
	}
	return nil
}
