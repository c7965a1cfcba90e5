// Package metrics summarizes minimizer runs. Every metric is a fire.Observer
// and can be attached with fire.WithObserver.
package metrics

import "github.com/san-kum/packmin/internal/fire"

type Metric interface {
	fire.Observer
	Name() string
	Value() float64
	Reset()
}

// Set fans a single observer slot out to several metrics.
type Set []Metric

func (s Set) OnStep(iter int, x []float64, energy, gradNorm float64) {
	for _, m := range s {
		m.OnStep(iter, x, energy, gradNorm)
	}
}

func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Default returns the metrics reported by the CLI for a run that starts at
// x0 with energy e0.
func Default(x0 []float64, e0 float64) Set {
	return Set{
		NewEnergyDrop(e0),
		NewMonotonicity(e0),
		NewMeanStep(x0),
	}
}
