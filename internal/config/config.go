package config

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/san-kum/packmin/internal/fire"
	"github.com/san-kum/packmin/internal/frozen"
	"github.com/san-kum/packmin/internal/landscape"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEps = 1.0
	DefaultSca = 1.2
	DefaultDim = 3
)

type Config struct {
	Name      string          `yaml:"name"`
	Seed      int64           `yaml:"seed"`
	System    SystemConfig    `yaml:"system"`
	Minimizer MinimizerConfig `yaml:"minimizer"`
}

type SystemConfig struct {
	Dim   int       `yaml:"dim"`
	Eps   float64   `yaml:"eps"`
	Sca   float64   `yaml:"sca"`
	Radii []float64 `yaml:"radii"`
	// Box switches to periodic boundaries when set.
	Box    []float64 `yaml:"box,omitempty"`
	Coords []float64 `yaml:"coords"`
	// Frozen lists individual degrees of freedom; FrozenAtoms freezes every
	// coordinate of the listed particles. Both may be given.
	Frozen      []int `yaml:"frozen,omitempty"`
	FrozenAtoms []int `yaml:"frozen_atoms,omitempty"`
	// Jitter displaces every coordinate uniformly in [-jitter, jitter],
	// seeded by Config.Seed.
	Jitter float64 `yaml:"jitter,omitempty"`
}

type MinimizerConfig struct {
	Tol       float64 `yaml:"tol"`
	DtStart   float64 `yaml:"dt_start"`
	DtMax     float64 `yaml:"dt_max"`
	DtMin     float64 `yaml:"dt_min"`
	MaxStep   float64 `yaml:"max_step"`
	Nmin      int     `yaml:"nmin"`
	Finc      float64 `yaml:"finc"`
	Fdec      float64 `yaml:"fdec"`
	Fa        float64 `yaml:"fa"`
	Astart    float64 `yaml:"astart"`
	MaxIter   int     `yaml:"max_iter"`
	Criterion string  `yaml:"criterion"`
	Stepback  bool    `yaml:"stepback"`
	LogEvery  int     `yaml:"log_every"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "custom",
		System: SystemConfig{
			Dim: DefaultDim,
			Eps: DefaultEps,
			Sca: DefaultSca,
		},
		Minimizer: MinimizerConfig{
			Tol:       fire.DefaultTol,
			DtStart:   fire.DefaultDtStart,
			DtMax:     fire.DefaultDtMax,
			DtMin:     fire.DefaultDtMin,
			MaxStep:   fire.DefaultMaxStep,
			Nmin:      fire.DefaultNmin,
			Finc:      fire.DefaultFinc,
			Fdec:      fire.DefaultFdec,
			Fa:        fire.DefaultFa,
			Astart:    fire.DefaultAstart,
			MaxIter:   fire.DefaultMaxIter,
			Criterion: fire.RMS.String(),
			Stepback:  true,
			LogEvery:  fire.DefaultLogEvery,
		},
	}
}

// Load reads a YAML run description on top of DefaultConfig and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Natoms() int { return len(c.System.Radii) }

func (c *Config) Periodic() bool { return len(c.System.Box) > 0 }

// Validate checks the structural consistency of the run description.
// Physical parameters are checked again by the constructors that use them.
func (c *Config) Validate() error {
	s := c.System
	if s.Dim < 1 {
		return landscape.Configf("system.dim", "must be at least 1, got %d", s.Dim)
	}
	if len(s.Radii) == 0 {
		return landscape.Configf("system.radii", "must list at least one particle")
	}
	if want := s.Dim * len(s.Radii); len(s.Coords) != want {
		return landscape.Configf("system.coords", "expected %d values for %d particles in %d dimensions, got %d", want, len(s.Radii), s.Dim, len(s.Coords))
	}
	if c.Periodic() && len(s.Box) != s.Dim {
		return landscape.Configf("system.box", "expected %d lengths, got %d", s.Dim, len(s.Box))
	}
	for _, a := range s.FrozenAtoms {
		if a < 0 || a >= len(s.Radii) {
			return landscape.Configf("system.frozen_atoms", "particle %d out of range [0, %d)", a, len(s.Radii))
		}
	}
	if s.Jitter < 0 {
		return landscape.Configf("system.jitter", "must not be negative, got %g", s.Jitter)
	}
	if c.Minimizer.LogEvery < 0 {
		return landscape.Configf("minimizer.log_every", "must not be negative, got %d", c.Minimizer.LogEvery)
	}
	_, err := c.Params()
	return err
}

// FrozenDOF merges Frozen and FrozenAtoms into one list of degree-of-freedom
// indices. Duplicates between the two are dropped.
func (c *Config) FrozenDOF() []int {
	seen := make(map[int]bool)
	var out []int
	add := func(k int) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range c.System.Frozen {
		add(k)
	}
	for _, k := range frozen.AtomDOF(c.System.FrozenAtoms, c.System.Dim) {
		add(k)
	}
	return out
}

// InitialCoords returns a copy of Coords with the seeded jitter applied.
func (c *Config) InitialCoords() []float64 {
	x := make([]float64, len(c.System.Coords))
	copy(x, c.System.Coords)
	if c.System.Jitter > 0 {
		rng := rand.New(rand.NewSource(c.Seed))
		for i := range x {
			x[i] += c.System.Jitter * (2*rng.Float64() - 1)
		}
	}
	return x
}

// Params converts the minimizer section and validates it.
func (c *Config) Params() (fire.Params, error) {
	m := c.Minimizer
	crit, err := fire.ParseCriterion(m.Criterion)
	if err != nil {
		return fire.Params{}, err
	}
	p := fire.Params{
		Tol:       m.Tol,
		DtStart:   m.DtStart,
		DtMax:     m.DtMax,
		DtMin:     m.DtMin,
		MaxStep:   m.MaxStep,
		Nmin:      m.Nmin,
		Finc:      m.Finc,
		Fdec:      m.Fdec,
		Fa:        m.Fa,
		Astart:    m.Astart,
		MaxIter:   m.MaxIter,
		Criterion: crit,
		Stepback:  m.Stepback,
	}
	if err := p.Validate(); err != nil {
		return fire.Params{}, err
	}
	return p, nil
}
