package metrics

// Monotonicity is the fraction of iterations that did not raise the energy,
// measured from the starting energy. With stepback enabled it stays at 1.
type Monotonicity struct {
	initial   float64
	prev      float64
	samples   int
	increases int
}

func NewMonotonicity(initial float64) *Monotonicity {
	return &Monotonicity{initial: initial, prev: initial}
}

func (m *Monotonicity) Name() string { return "monotonicity" }

func (m *Monotonicity) OnStep(iter int, x []float64, energy, gradNorm float64) {
	if energy > m.prev {
		m.increases++
	}
	m.prev = energy
	m.samples++
}

func (m *Monotonicity) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.increases)/float64(m.samples)
}

func (m *Monotonicity) Reset() {
	m.prev = m.initial
	m.samples = 0
	m.increases = 0
}
