package config

import (
	"math/rand"
	"sort"
)

var (
	trimerRadii = []float64{0.3, 0.33, 0.27}
	trimer3D    = []float64{0.11, 0.23, 0.37, 0.74, 0.55, 0.58, 0.51, -0.07, 0.82}
	trimer2D    = []float64{0.1, 0.11, 0.795, 0.363, 0.216, 0.77}
)

const (
	latticeSide    = 6
	latticeSpacing = 0.7
	latticeJitter  = 0.03
)

var Presets = map[string]func(seed int64) *Config{
	"trimer": func(seed int64) *Config {
		return trimer("trimer", seed, 3, trimer3D)
	},
	"trimer-periodic": func(seed int64) *Config {
		cfg := trimer("trimer-periodic", seed, 3, trimer3D)
		cfg.System.Box = []float64{5, 6, 7}
		return cfg
	},
	"trimer-2d": func(seed int64) *Config {
		return trimer("trimer-2d", seed, 2, trimer2D)
	},
	"trimer-frozen": func(seed int64) *Config {
		cfg := trimer("trimer-frozen", seed, 3, trimer3D)
		cfg.System.Frozen = []int{0, 3, 4}
		return cfg
	},
	"lattice": func(seed int64) *Config {
		return lattice("lattice", seed, true)
	},
	"lattice-frozen": func(seed int64) *Config {
		cfg := lattice("lattice-frozen", seed, false)
		for i := 0; i < latticeSide; i++ {
			for j := 0; j < latticeSide; j++ {
				if i == 0 || j == 0 || i == latticeSide-1 || j == latticeSide-1 {
					cfg.System.FrozenAtoms = append(cfg.System.FrozenAtoms, i*latticeSide+j)
				}
			}
		}
		return cfg
	},
}

func trimer(name string, seed int64, dim int, coords []float64) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Seed = seed
	cfg.System.Dim = dim
	cfg.System.Radii = append([]float64(nil), trimerRadii...)
	cfg.System.Coords = append([]float64(nil), coords...)
	return cfg
}

// lattice is a square bidisperse 2D packing. Radii are drawn from the seed,
// positions are jittered from the same seed when the run starts.
func lattice(name string, seed int64, periodic bool) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Seed = seed
	cfg.System.Dim = 2
	cfg.System.Jitter = latticeJitter

	rng := rand.New(rand.NewSource(seed))
	n := latticeSide * latticeSide
	cfg.System.Radii = make([]float64, 0, n)
	cfg.System.Coords = make([]float64, 0, 2*n)
	for i := 0; i < latticeSide; i++ {
		for j := 0; j < latticeSide; j++ {
			cfg.System.Coords = append(cfg.System.Coords,
				(float64(i)+0.5)*latticeSpacing,
				(float64(j)+0.5)*latticeSpacing,
			)
			r := 0.3
			if rng.Float64() < 0.5 {
				r = 0.25
			}
			cfg.System.Radii = append(cfg.System.Radii, r)
		}
	}
	if periodic {
		side := latticeSide * latticeSpacing
		cfg.System.Box = []float64{side, side}
	}
	return cfg
}

// GetPreset builds a fresh copy of the named preset, or nil if there is none.
func GetPreset(name string, seed int64) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build(seed)
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
