package frozen

import (
	"sort"

	"github.com/san-kum/packmin/internal/landscape"
)

// Reducer maps between the full coordinate space and the reduced space of
// mobile coordinates. The frozen coordinates take fixed reference values.
// The mobile index list is built once and every mapping walks it in
// ascending full-index order.
type Reducer struct {
	ref    []float64
	frozen []int
	mobile []int
}

// NewReducer copies reference and validates frozenDOF against it. The full
// dimension is len(reference).
func NewReducer(reference []float64, frozenDOF []int) (*Reducer, error) {
	n := len(reference)
	if n == 0 {
		return nil, landscape.Configf("reference", "must not be empty")
	}

	isFrozen := make([]bool, n)
	for _, k := range frozenDOF {
		if k < 0 || k >= n {
			return nil, landscape.Configf("frozen", "index %d outside [0, %d)", k, n)
		}
		if isFrozen[k] {
			return nil, landscape.Configf("frozen", "duplicate index %d", k)
		}
		isFrozen[k] = true
	}

	r := &Reducer{
		ref:    make([]float64, n),
		frozen: make([]int, 0, len(frozenDOF)),
		mobile: make([]int, 0, n-len(frozenDOF)),
	}
	copy(r.ref, reference)
	for k, f := range isFrozen {
		if f {
			r.frozen = append(r.frozen, k)
		} else {
			r.mobile = append(r.mobile, k)
		}
	}
	return r, nil
}

// AtomDOF expands particle indices into their coordinate indices, sorted and
// without duplicates.
func AtomDOF(atoms []int, dim int) []int {
	seen := make(map[int]bool, len(atoms))
	dof := make([]int, 0, len(atoms)*dim)
	for _, a := range atoms {
		if seen[a] {
			continue
		}
		seen[a] = true
		for k := 0; k < dim; k++ {
			dof = append(dof, a*dim+k)
		}
	}
	sort.Ints(dof)
	return dof
}

func (r *Reducer) FullDim() int    { return len(r.ref) }
func (r *Reducer) ReducedDim() int { return len(r.mobile) }

// Frozen returns the frozen indices in ascending order.
func (r *Reducer) Frozen() []int {
	out := make([]int, len(r.frozen))
	copy(out, r.frozen)
	return out
}

// Mobile returns the mobile indices in ascending order.
func (r *Reducer) Mobile() []int {
	out := make([]int, len(r.mobile))
	copy(out, r.mobile)
	return out
}

func (r *Reducer) Reference() []float64 {
	out := make([]float64, len(r.ref))
	copy(out, r.ref)
	return out
}

func (r *Reducer) ReduceCoords(full []float64) ([]float64, error) {
	out := make([]float64, len(r.mobile))
	if err := r.ReduceCoordsInto(out, full); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reducer) ReduceCoordsInto(dst, full []float64) error {
	return r.selectInto("reduce coords", dst, full)
}

func (r *Reducer) InflateCoords(reduced []float64) ([]float64, error) {
	out := make([]float64, len(r.ref))
	if err := r.InflateCoordsInto(out, reduced); err != nil {
		return nil, err
	}
	return out, nil
}

// InflateCoordsInto writes the reference values and then scatters reduced
// over the mobile indices.
func (r *Reducer) InflateCoordsInto(dst, reduced []float64) error {
	if err := landscape.CheckLen("inflate coords", len(r.mobile), reduced); err != nil {
		return err
	}
	if err := landscape.CheckLen("inflate coords", len(r.ref), dst); err != nil {
		return err
	}
	copy(dst, r.ref)
	for i, k := range r.mobile {
		dst[k] = reduced[i]
	}
	return nil
}

// ReduceGradient drops frozen components. The inclusion map is linear, so no
// scaling is needed.
func (r *Reducer) ReduceGradient(fullGrad []float64) ([]float64, error) {
	out := make([]float64, len(r.mobile))
	if err := r.ReduceGradientInto(out, fullGrad); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reducer) ReduceGradientInto(dst, fullGrad []float64) error {
	return r.selectInto("reduce gradient", dst, fullGrad)
}

// ReduceHessian keeps the rows and columns of mobile indices, row-major.
func (r *Reducer) ReduceHessian(fullHess []float64) ([]float64, error) {
	m := len(r.mobile)
	out := make([]float64, m*m)
	if err := r.ReduceHessianInto(out, fullHess); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reducer) ReduceHessianInto(dst, fullHess []float64) error {
	n, m := len(r.ref), len(r.mobile)
	if err := landscape.CheckLen("reduce hessian", n*n, fullHess); err != nil {
		return err
	}
	if err := landscape.CheckLen("reduce hessian", m*m, dst); err != nil {
		return err
	}
	for i, ki := range r.mobile {
		row := fullHess[ki*n : ki*n+n]
		for j, kj := range r.mobile {
			dst[i*m+j] = row[kj]
		}
	}
	return nil
}

func (r *Reducer) selectInto(op string, dst, full []float64) error {
	if err := landscape.CheckLen(op, len(r.ref), full); err != nil {
		return err
	}
	if err := landscape.CheckLen(op, len(r.mobile), dst); err != nil {
		return err
	}
	for i, k := range r.mobile {
		dst[i] = full[k]
	}
	return nil
}
