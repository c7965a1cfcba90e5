package landscape

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type Coords []float64

func (c Coords) Clone() Coords {
	out := make(Coords, len(c))
	copy(out, c)
	return out
}

func (c Coords) IsValid() bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (c Coords) Norm() float64 {
	if len(c) == 0 {
		return 0
	}
	return floats.Norm(c, 2)
}

// RMS is the root-mean-square component, ‖c‖/√n. It is zero for an empty vector.
func (c Coords) RMS() float64 {
	if len(c) == 0 {
		return 0
	}
	return floats.Norm(c, 2) / math.Sqrt(float64(len(c)))
}

// MaxAbs is the largest component magnitude.
func (c Coords) MaxAbs() float64 {
	if len(c) == 0 {
		return 0
	}
	return floats.Norm(c, math.Inf(1))
}

func (c Coords) Dot(other Coords) float64 {
	return floats.Dot(c, other)
}

// Particle returns the dim-length view of particle i.
func (c Coords) Particle(i, dim int) []float64 {
	return c[dim*i : dim*i+dim : dim*i+dim]
}
