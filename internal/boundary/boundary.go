package boundary

import (
	"math"

	"github.com/san-kum/packmin/internal/landscape"
	"gonum.org/v1/gonum/floats"
)

// Model supplies the separation vector between two particles.
type Model interface {
	Dim() int
	// Separation writes the boundary-adjusted xi - xj into dst. All three
	// slices have length Dim.
	Separation(dst, xi, xj []float64)
}

// Free is open space: the separation is the raw coordinate difference.
type Free struct {
	dim int
}

func NewFree(dim int) (Free, error) {
	if dim < 1 {
		return Free{}, landscape.Configf("dim", "must be at least 1, got %d", dim)
	}
	return Free{dim: dim}, nil
}

func (f Free) Dim() int { return f.dim }

func (f Free) Separation(dst, xi, xj []float64) {
	floats.SubTo(dst, xi, xj)
}

// Periodic is an orthogonal box with the minimum-image convention applied
// independently per axis.
type Periodic struct {
	box []float64
}

func NewPeriodic(box []float64) (*Periodic, error) {
	if len(box) == 0 {
		return nil, landscape.Configf("box", "must have at least one axis")
	}
	for k, l := range box {
		if !(l > 0) || math.IsInf(l, 0) {
			return nil, landscape.Configf("box", "axis %d length must be positive and finite, got %g", k, l)
		}
	}
	b := make([]float64, len(box))
	copy(b, box)
	return &Periodic{box: b}, nil
}

func (p *Periodic) Dim() int { return len(p.box) }

// Box returns a copy of the box lengths.
func (p *Periodic) Box() []float64 {
	b := make([]float64, len(p.box))
	copy(b, p.box)
	return b
}

// Separation reduces each component so that |dst_k| <= box_k/2.
func (p *Periodic) Separation(dst, xi, xj []float64) {
	for k, l := range p.box {
		d := xi[k] - xj[k]
		dst[k] = d - l*math.Round(d/l)
	}
}

// Wrap folds every particle of x into [0, box_k) in place.
func (p *Periodic) Wrap(x []float64) error {
	dim := len(p.box)
	if len(x)%dim != 0 {
		return &landscape.ShapeError{Op: "periodic wrap", Want: len(x) - len(x)%dim, Got: len(x)}
	}
	for i, v := range x {
		l := p.box[i%dim]
		x[i] = v - l*math.Floor(v/l)
	}
	return nil
}
