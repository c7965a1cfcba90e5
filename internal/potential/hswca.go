package potential

import (
	"math"

	"github.com/san-kum/packmin/internal/landscape"
)

// HardCoreFraction sets where the HS-WCA law stops following the smooth
// repulsion: below u = HardCoreFraction·u_c the energy continues linearly in
// r² so overlapping and coincident particles stay finite. The shell diverges
// at r = r0, so the clamp has to sit just outside it (r ≈ 1.002·r0 for
// sca = 1.2). E and g are continuous there but h drops to zero, so the law
// is C¹ and not C² at the clamp point.
const HardCoreFraction = 1e-2

// Interaction is a pair law expressed in the squared separation r² of
// particles i and j. g = dE/d(r²) and h = d²E/d(r²)².
type Interaction interface {
	Natoms() int
	Energy(r2 float64, i, j int) float64
	EnergyGradient(r2 float64, i, j int) (e, g float64)
	EnergyGradientHessian(r2 float64, i, j int) (e, g, h float64)
}

// HSWCA is a hard-sphere core with a WCA-like smoothed repulsive shell.
// With r0 = r_i + r_j, u = r² - r0², u_c = (sca² - 1)·r0² and
// s = u_c³/(√2·u³):
//
//	E = 4ε(s⁴ - s²) + ε   for r0 < r < sca·r0
//	E = 0                 for r ≥ sca·r0
//
// E and its first derivative vanish at the cutoff. The law is smooth
// between the clamp point (see HardCoreFraction) and the cutoff.
type HSWCA struct {
	eps   float64
	sca   float64
	radii []float64
}

func NewHSWCALaw(eps, sca float64, radii []float64) (*HSWCA, error) {
	if !(eps > 0) || math.IsInf(eps, 0) {
		return nil, landscape.Configf("eps", "must be positive and finite, got %g", eps)
	}
	if !(sca > 1) || math.IsInf(sca, 0) {
		return nil, landscape.Configf("sca", "must be finite and greater than 1, got %g", sca)
	}
	if len(radii) == 0 {
		return nil, landscape.Configf("radii", "at least one particle is required")
	}
	for i, r := range radii {
		if !(r > 0) || math.IsInf(r, 0) {
			return nil, landscape.Configf("radii", "radius %d must be positive and finite, got %g", i, r)
		}
	}

	rs := make([]float64, len(radii))
	copy(rs, radii)
	return &HSWCA{eps: eps, sca: sca, radii: rs}, nil
}

func (w *HSWCA) Natoms() int { return len(w.radii) }

func (w *HSWCA) Radii() []float64 {
	rs := make([]float64, len(w.radii))
	copy(rs, w.radii)
	return rs
}

// Cutoff is the interaction range sca·(r_i + r_j).
func (w *HSWCA) Cutoff(i, j int) float64 {
	return w.sca * (w.radii[i] + w.radii[j])
}

func (w *HSWCA) Energy(r2 float64, i, j int) float64 {
	e, _, _ := w.EnergyGradientHessian(r2, i, j)
	return e
}

func (w *HSWCA) EnergyGradient(r2 float64, i, j int) (e, g float64) {
	e, g, _ = w.EnergyGradientHessian(r2, i, j)
	return e, g
}

func (w *HSWCA) EnergyGradientHessian(r2 float64, i, j int) (e, g, h float64) {
	r0 := w.radii[i] + w.radii[j]
	r02 := r0 * r0
	uc := (w.sca*w.sca - 1) * r02
	u := r2 - r02
	if u >= uc {
		return 0, 0, 0
	}

	umin := HardCoreFraction * uc
	if u <= umin {
		ec, gc, _ := w.shell(umin, uc)
		return ec + gc*(u-umin), gc, 0
	}
	return w.shell(u, uc)
}

func (w *HSWCA) shell(u, uc float64) (e, g, h float64) {
	s := uc * uc * uc / (math.Sqrt2 * u * u * u)
	s2 := s * s
	s4 := s2 * s2
	e = 4*w.eps*(s4-s2) + w.eps
	g = -24 * w.eps * (2*s4 - s2) / u
	h = 24 * w.eps * (26*s4 - 7*s2) / (u * u)
	return e, g, h
}
