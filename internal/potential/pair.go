package potential

import (
	"github.com/san-kum/packmin/internal/boundary"
	"github.com/san-kum/packmin/internal/landscape"
)

// PairPotential sums an Interaction over all particle pairs i<j in ascending
// order, with separations supplied by a boundary model. It keeps no scratch
// state between calls.
type PairPotential struct {
	law    Interaction
	bc     boundary.Model
	natoms int
	dim    int
}

func New(law Interaction, bc boundary.Model, natoms int) (*PairPotential, error) {
	if law == nil {
		return nil, landscape.Configf("law", "must not be nil")
	}
	if bc == nil {
		return nil, landscape.Configf("boundary", "must not be nil")
	}
	if bc.Dim() < 1 {
		return nil, landscape.Configf("dim", "must be at least 1, got %d", bc.Dim())
	}
	if natoms < 1 {
		return nil, landscape.Configf("natoms", "must be at least 1, got %d", natoms)
	}
	if n := law.Natoms(); n != natoms {
		return nil, landscape.Configf("natoms", "law holds %d particles, got %d", n, natoms)
	}
	return &PairPotential{law: law, bc: bc, natoms: natoms, dim: bc.Dim()}, nil
}

// NewHSWCA builds an HS-WCA potential in open space of dimension dim.
func NewHSWCA(eps, sca float64, radii []float64, dim int) (*PairPotential, error) {
	law, err := NewHSWCALaw(eps, sca, radii)
	if err != nil {
		return nil, err
	}
	bc, err := boundary.NewFree(dim)
	if err != nil {
		return nil, err
	}
	return New(law, bc, law.Natoms())
}

// NewHSWCAPeriodic builds an HS-WCA potential in a periodic box; the
// dimension is len(box).
func NewHSWCAPeriodic(eps, sca float64, radii, box []float64) (*PairPotential, error) {
	law, err := NewHSWCALaw(eps, sca, radii)
	if err != nil {
		return nil, err
	}
	bc, err := boundary.NewPeriodic(box)
	if err != nil {
		return nil, err
	}
	return New(law, bc, law.Natoms())
}

func (p *PairPotential) Dof() int                 { return p.natoms * p.dim }
func (p *PairPotential) Dim() int                 { return p.dim }
func (p *PairPotential) Natoms() int              { return p.natoms }
func (p *PairPotential) Boundary() boundary.Model { return p.bc }
func (p *PairPotential) Interaction() Interaction { return p.law }

// separation writes the boundary-adjusted x_i - x_j into dr and returns r².
func (p *PairPotential) separation(x []float64, i, j int, dr []float64) float64 {
	d := p.dim
	p.bc.Separation(dr, x[d*i:d*i+d], x[d*j:d*j+d])
	r2 := 0.0
	for _, v := range dr {
		r2 += v * v
	}
	return r2
}

func (p *PairPotential) Energy(x []float64) (float64, error) {
	if err := landscape.CheckLen("pair energy", p.Dof(), x); err != nil {
		return 0, err
	}

	dr := make([]float64, p.dim)
	e := 0.0
	for i := 0; i < p.natoms; i++ {
		for j := i + 1; j < p.natoms; j++ {
			e += p.law.Energy(p.separation(x, i, j, dr), i, j)
		}
	}
	return e, nil
}

func (p *PairPotential) EnergyGradient(x, grad []float64) (float64, error) {
	if err := landscape.CheckLen("pair energy", p.Dof(), x); err != nil {
		return 0, err
	}
	if err := landscape.CheckLen("pair gradient", p.Dof(), grad); err != nil {
		return 0, err
	}
	clear(grad)

	d := p.dim
	dr := make([]float64, d)
	e := 0.0
	for i := 0; i < p.natoms; i++ {
		for j := i + 1; j < p.natoms; j++ {
			eij, g := p.law.EnergyGradient(p.separation(x, i, j, dr), i, j)
			e += eij
			if g == 0 {
				continue
			}
			for k, v := range dr {
				grad[d*i+k] += 2 * g * v
				grad[d*j+k] -= 2 * g * v
			}
		}
	}
	return e, nil
}

func (p *PairPotential) EnergyGradientHessian(x, grad, hess []float64) (float64, error) {
	n := p.Dof()
	if err := landscape.CheckLen("pair energy", n, x); err != nil {
		return 0, err
	}
	if err := landscape.CheckLen("pair gradient", n, grad); err != nil {
		return 0, err
	}
	if err := landscape.CheckLen("pair hessian", n*n, hess); err != nil {
		return 0, err
	}
	clear(grad)
	clear(hess)

	d := p.dim
	dr := make([]float64, d)
	e := 0.0
	for i := 0; i < p.natoms; i++ {
		for j := i + 1; j < p.natoms; j++ {
			eij, g, h := p.law.EnergyGradientHessian(p.separation(x, i, j, dr), i, j)
			e += eij
			if g == 0 && h == 0 {
				continue
			}
			for k, v := range dr {
				grad[d*i+k] += 2 * g * v
				grad[d*j+k] -= 2 * g * v
			}
			p.addBlock(hess, i, j, dr, g, h)
		}
	}
	return e, nil
}

// addBlock adds the pair block 4h·dr·drᵀ + 2g·I to (i,i) and (j,j) and
// subtracts it from (i,j) and (j,i). Each entry is computed once and written
// to both triangles so the result is exactly symmetric.
func (p *PairPotential) addBlock(hess []float64, i, j int, dr []float64, g, h float64) {
	n := p.Dof()
	d := p.dim
	for a := 0; a < d; a++ {
		ia, ja := d*i+a, d*j+a
		for b := a; b < d; b++ {
			v := 4 * h * dr[a] * dr[b]
			if a == b {
				v += 2 * g
			}
			ib, jb := d*i+b, d*j+b
			hess[ia*n+ib] += v
			hess[ja*n+jb] += v
			hess[ia*n+jb] -= v
			hess[ja*n+ib] -= v
			if a != b {
				hess[ib*n+ia] += v
				hess[jb*n+ja] += v
				hess[jb*n+ia] -= v
				hess[ib*n+ja] -= v
			}
		}
	}
}

func (p *PairPotential) NumericalGradient(x, grad []float64) error {
	if err := landscape.CheckLen("pair energy", p.Dof(), x); err != nil {
		return err
	}
	return landscape.NumericalGradient(p, x, grad)
}

func (p *PairPotential) NumericalHessian(x, hess []float64) error {
	if err := landscape.CheckLen("pair energy", p.Dof(), x); err != nil {
		return err
	}
	return landscape.NumericalHessian(p, x, hess)
}
