package metrics

import "math"

// Trace records the energy and gradient norm of every iteration. A positive
// limit keeps only the most recent points.
type Trace struct {
	limit     int
	Iters     []int
	Energies  []float64
	GradNorms []float64
}

func NewTrace(limit int) *Trace {
	return &Trace{limit: limit}
}

func (t *Trace) Name() string { return "trace" }

func (t *Trace) OnStep(iter int, x []float64, energy, gradNorm float64) {
	t.Iters = append(t.Iters, iter)
	t.Energies = append(t.Energies, energy)
	t.GradNorms = append(t.GradNorms, gradNorm)
	if t.limit > 0 && len(t.Iters) > t.limit {
		drop := len(t.Iters) - t.limit
		t.Iters = t.Iters[drop:]
		t.Energies = t.Energies[drop:]
		t.GradNorms = t.GradNorms[drop:]
	}
}

// Value is the most recent energy, or NaN before the first iteration.
func (t *Trace) Value() float64 {
	if len(t.Energies) == 0 {
		return math.NaN()
	}
	return t.Energies[len(t.Energies)-1]
}

func (t *Trace) Len() int { return len(t.Iters) }

// LogGradNorms returns log10 of the recorded gradient norms, with zeros
// floored at -16 so the series stays plottable.
func (t *Trace) LogGradNorms() []float64 {
	out := make([]float64, len(t.GradNorms))
	for i, g := range t.GradNorms {
		out[i] = math.Log10(math.Max(g, 1e-16))
	}
	return out
}

func (t *Trace) Reset() {
	t.Iters = t.Iters[:0]
	t.Energies = t.Energies[:0]
	t.GradNorms = t.GradNorms[:0]
}

// EnergyDrop is the energy released since the starting point.
type EnergyDrop struct {
	initial float64
	current float64
}

func NewEnergyDrop(initial float64) *EnergyDrop {
	return &EnergyDrop{initial: initial, current: initial}
}

func (e *EnergyDrop) Name() string { return "energy_drop" }

func (e *EnergyDrop) OnStep(iter int, x []float64, energy, gradNorm float64) {
	e.current = energy
}

func (e *EnergyDrop) Value() float64 { return e.initial - e.current }

func (e *EnergyDrop) Reset() { e.current = e.initial }
