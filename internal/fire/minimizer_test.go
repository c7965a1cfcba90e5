package fire

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/packmin/internal/frozen"
	"github.com/san-kum/packmin/internal/landscape"
	"github.com/san-kum/packmin/internal/potential"
)

var (
	trimerRadii = []float64{0.3, 0.33, 0.27}
	trimer3D    = []float64{0.11, 0.23, 0.37, 0.74, 0.55, 0.58, 0.51, -0.07, 0.82}
	trimer2D    = []float64{0.1, 0.11, 0.795, 0.363, 0.216, 0.77}
)

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func harmonic(t *testing.T, k float64, dim int) *potential.Harmonic {
	t.Helper()
	h, err := potential.NewHarmonic(make([]float64, dim), k)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

type recorder struct {
	iters    []int
	energies []float64
}

func (r *recorder) OnStep(iter int, x []float64, energy, gradNorm float64) {
	r.iters = append(r.iters, iter)
	r.energies = append(r.energies, energy)
}

func TestFirstStepFromRest(t *testing.T) {
	pot := harmonic(t, 1, 3)
	x0 := []float64{1, -2, 0.5}
	p := DefaultParams()

	s, err := NewState(pot, x0, p)
	if err != nil {
		t.Fatal(err)
	}
	if s.Status != Running {
		t.Fatalf("expected running, got %s", s.Status)
	}

	if err := Step(pot, s, p); err != nil {
		t.Fatal(err)
	}

	// zero power from rest shrinks the step before integrating
	dt := p.DtStart * p.Fdec
	if s.Dt != dt {
		t.Errorf("expected dt %g, got %g", dt, s.Dt)
	}
	if s.Since != 0 || s.Alpha != p.Astart {
		t.Errorf("expected reset mixing, got since %d alpha %g", s.Since, s.Alpha)
	}
	for i, v := range x0 {
		if math.Abs(s.V[i]+dt*v) > 1e-14 {
			t.Errorf("velocity %d: expected %g, got %g", i, -dt*v, s.V[i])
		}
		if math.Abs(s.X[i]-v*(1-dt*dt)) > 1e-14 {
			t.Errorf("position %d: expected %g, got %g", i, v*(1-dt*dt), s.X[i])
		}
	}
	if s.Iter != 1 || s.Evals != 2 {
		t.Errorf("expected 1 iteration and 2 evaluations, got %d and %d", s.Iter, s.Evals)
	}
	if x0[0] != 1 {
		t.Error("state aliases the initial coordinates")
	}
}

func TestSecondStepKeepsAlignedVelocity(t *testing.T) {
	pot := harmonic(t, 1, 2)
	p := DefaultParams()
	s, err := NewState(pot, []float64{3, 4}, p)
	if err != nil {
		t.Fatal(err)
	}
	if err := Step(pot, s, p); err != nil {
		t.Fatal(err)
	}
	v1 := append([]float64(nil), s.V...)

	if err := Step(pot, s, p); err != nil {
		t.Fatal(err)
	}
	if s.Since != 1 {
		t.Errorf("expected one descent iteration, got %d", s.Since)
	}
	if s.Dt != p.DtStart*p.Fdec {
		t.Errorf("step must not grow before nmin, got %g", s.Dt)
	}
	// mixing a velocity parallel to the force leaves its direction unchanged
	cross := v1[0]*s.V[1] - v1[1]*s.V[0]
	if math.Abs(cross) > 1e-12 {
		t.Errorf("velocity rotated, cross product %g", cross)
	}
}

func TestStepGrowsAfterNmin(t *testing.T) {
	pot := harmonic(t, 0.01, 1)
	p := DefaultParams()
	p.Nmin = 2
	s, err := NewState(pot, []float64{100}, p)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 6; i++ {
		if err := Step(pot, s, p); err != nil {
			t.Fatal(err)
		}
	}
	if !(s.Dt > p.DtStart*p.Fdec) {
		t.Errorf("expected step to grow past %g, got %g", p.DtStart*p.Fdec, s.Dt)
	}
	if !(s.Alpha < p.Astart) {
		t.Errorf("expected mixing to decay below %g, got %g", p.Astart, s.Alpha)
	}
}

func TestStepback(t *testing.T) {
	tests := []struct {
		name     string
		stepback bool
		wantX    float64
		rejected int
	}{
		{"rejects uphill move", true, 1, 1},
		{"accepts uphill move", false, -1.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pot := harmonic(t, 1000, 1)
			p := DefaultParams()
			p.MaxStep = 10
			p.Stepback = tt.stepback

			s, err := NewState(pot, []float64{1}, p)
			if err != nil {
				t.Fatal(err)
			}
			e0 := s.Energy
			if err := Step(pot, s, p); err != nil {
				t.Fatal(err)
			}
			if math.Abs(s.X[0]-tt.wantX) > 1e-12 {
				t.Errorf("expected x %g, got %g", tt.wantX, s.X[0])
			}
			if s.Rejected != tt.rejected {
				t.Errorf("expected %d rejections, got %d", tt.rejected, s.Rejected)
			}
			if tt.stepback {
				if s.Energy != e0 {
					t.Errorf("energy changed on rejected step: %g -> %g", e0, s.Energy)
				}
				if s.V[0] != 0 {
					t.Errorf("expected zero velocity after rejection, got %g", s.V[0])
				}
				if s.Dt != p.DtStart*p.Fdec*p.Fdec {
					t.Errorf("expected dt %g, got %g", p.DtStart*p.Fdec*p.Fdec, s.Dt)
				}
			}
		})
	}
}

func TestConvergesOnHarmonic(t *testing.T) {
	for _, c := range []Criterion{RMS, MaxAbs} {
		t.Run(c.String(), func(t *testing.T) {
			p := DefaultParams()
			p.Criterion = c
			m, err := New(harmonic(t, 1, 3), []float64{1, -2, 0.5}, p, quiet())
			if err != nil {
				t.Fatal(err)
			}
			res, err := m.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if res.Status != Converged {
				t.Fatalf("expected converged, got %s", res)
			}
			if res.GradNorm >= p.Tol {
				t.Errorf("grad norm %g not below tol", res.GradNorm)
			}
			if res.Iterations > 200 {
				t.Errorf("expected fast convergence, took %d iterations", res.Iterations)
			}
			if c.Norm(res.X) >= p.Tol {
				t.Errorf("final position %v not at origin", res.X)
			}
		})
	}
}

func TestStalledIsNotAnError(t *testing.T) {
	p := DefaultParams()
	p.MaxIter = 3
	m, err := New(harmonic(t, 1, 3), []float64{1, -2, 0.5}, p, quiet())
	if err != nil {
		t.Fatal(err)
	}
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("stall reported as error: %v", err)
	}
	if res.Status != Stalled {
		t.Errorf("expected stalled, got %s", res.Status)
	}
	if res.Iterations != 3 {
		t.Errorf("expected 3 iterations, got %d", res.Iterations)
	}
	if err := m.Step(); err != nil || m.State().Iter != 3 {
		t.Error("step after termination must be a no-op")
	}
}

func TestAlreadyConverged(t *testing.T) {
	m, err := New(harmonic(t, 1, 2), []float64{0, 0}, DefaultParams(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	if m.Status() != Converged {
		t.Errorf("expected converged at the minimum, got %s", m.Status())
	}
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations != 0 {
		t.Errorf("expected no iterations, got %d", res.Iterations)
	}
}

func TestEnergyNeverIncreasesWithStepback(t *testing.T) {
	pot, err := potential.NewHSWCA(1, 1.2, trimerRadii, 2)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	m, err := New(pot, trimer2D, DefaultParams(), quiet(), WithObserver(rec))
	if err != nil {
		t.Fatal(err)
	}
	e0 := m.Energy()
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != Converged {
		t.Fatalf("expected converged, got %s", res)
	}
	if len(rec.energies) != res.Iterations {
		t.Errorf("observer saw %d steps, expected %d", len(rec.energies), res.Iterations)
	}
	prev := e0
	for i, e := range rec.energies {
		if e > prev {
			t.Errorf("energy rose at step %d: %g -> %g", rec.iters[i], prev, e)
		}
		prev = e
	}
	if res.Energy > e0 {
		t.Errorf("final energy %g above initial %g", res.Energy, e0)
	}
}

func TestMinimizeTrimers(t *testing.T) {
	free, err := potential.NewHSWCA(1, 1.2, trimerRadii, 3)
	if err != nil {
		t.Fatal(err)
	}
	per, err := potential.NewHSWCAPeriodic(1, 1.2, trimerRadii, []float64{5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}

	for name, pot := range map[string]landscape.Potential{"free": free, "periodic": per} {
		t.Run(name, func(t *testing.T) {
			e0, err := pot.Energy(trimer3D)
			if err != nil {
				t.Fatal(err)
			}
			m, err := New(pot, trimer3D, DefaultParams(), quiet())
			if err != nil {
				t.Fatal(err)
			}
			res, err := m.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if res.Status != Converged {
				t.Errorf("expected converged, got %s", res)
			}
			if res.Energy > e0 {
				t.Errorf("energy rose from %g to %g", e0, res.Energy)
			}
		})
	}
}

func TestFrozenCoordinatesStayFixed(t *testing.T) {
	dof := []int{0, 3, 4}
	ad, err := frozen.NewHSWCA(1, 1.2, trimerRadii, 3, trimer3D, dof)
	if err != nil {
		t.Fatal(err)
	}
	xr, err := ad.Reducer().ReduceCoords(trimer3D)
	if err != nil {
		t.Fatal(err)
	}

	m, err := New(ad, xr, DefaultParams(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	full, err := ad.Reducer().InflateCoords(res.X)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range dof {
		if full[k] != trimer3D[k] {
			t.Errorf("frozen coordinate %d moved: %g -> %g", k, trimer3D[k], full[k])
		}
	}

	e0, _ := ad.Energy(xr)
	if res.Energy > e0 {
		t.Errorf("frozen minimization raised energy %g -> %g", e0, res.Energy)
	}

	pot, _ := potential.NewHSWCA(1, 1.2, trimerRadii, 3)
	mf, err := New(pot, trimer3D, DefaultParams(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	resFull, err := mf.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Energy < resFull.Energy-1e-12 {
		t.Errorf("frozen minimum %g below unconstrained minimum %g", res.Energy, resFull.Energy)
	}
}

func TestDeterministicRuns(t *testing.T) {
	pot, _ := potential.NewHSWCA(1, 1.2, trimerRadii, 2)
	run := func() *Result {
		m, err := New(pot, trimer2D, DefaultParams(), quiet())
		if err != nil {
			t.Fatal(err)
		}
		res, err := m.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(), run()
	if a.Energy != b.Energy || a.Iterations != b.Iterations {
		t.Errorf("runs differ: %s vs %s", a, b)
	}
	for i := range a.X {
		if a.X[i] != b.X[i] {
			t.Errorf("coordinate %d differs: %g vs %g", i, a.X[i], b.X[i])
		}
	}
}

func TestResetRestarts(t *testing.T) {
	m, err := New(harmonic(t, 1, 2), []float64{1, 1}, DefaultParams(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := m.Reset([]float64{2, -2}); err != nil {
		t.Fatal(err)
	}
	s := m.State()
	if s.Iter != 0 || s.Status != Running || s.Dt != DefaultDtStart {
		t.Errorf("reset did not restore the initial state: iter %d status %s dt %g", s.Iter, s.Status, s.Dt)
	}
	if x := m.X(); x[0] != 2 || x[1] != -2 {
		t.Errorf("expected x [2 -2], got %v", x)
	}
}

func TestRunHonorsContext(t *testing.T) {
	m, err := New(harmonic(t, 1, 2), []float64{1, 1}, DefaultParams(), quiet())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := m.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Status != Running {
		t.Error("expected partial result in running state")
	}
}

func TestShapeErrorsPropagate(t *testing.T) {
	_, err := New(harmonic(t, 1, 2), []float64{1, 2, 3}, DefaultParams(), quiet())
	if !errors.Is(err, landscape.ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
	_, err = New(nil, []float64{1}, DefaultParams())
	if !errors.Is(err, landscape.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
