package metrics

import "gonum.org/v1/gonum/floats"

// MeanStep is the average Euclidean displacement between consecutive
// configurations, starting from x0. Rejected iterations count as zero moves.
type MeanStep struct {
	start   []float64
	prev    []float64
	sum     float64
	samples int
}

func NewMeanStep(x0 []float64) *MeanStep {
	start := append([]float64(nil), x0...)
	return &MeanStep{start: start, prev: append([]float64(nil), start...)}
}

func (m *MeanStep) Name() string { return "mean_step" }

func (m *MeanStep) OnStep(iter int, x []float64, energy, gradNorm float64) {
	if len(m.prev) == len(x) {
		m.sum += floats.Distance(x, m.prev, 2)
		m.samples++
	}
	m.prev = append(m.prev[:0], x...)
}

func (m *MeanStep) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanStep) Reset() {
	m.prev = append(m.prev[:0], m.start...)
	m.sum = 0
	m.samples = 0
}
