package frozen

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/packmin/internal/landscape"
	"github.com/san-kum/packmin/internal/potential"
)

var (
	radii     = []float64{0.3, 0.33, 0.27}
	box       = []float64{5, 6, 7}
	frozenDOF = []int{0, 3, 4}

	overlapping = []float64{0.11, 0.23, 0.37, 0.74, 0.55, 0.58, 0.51, -0.07, 0.82}
	sparse      = []float64{0.1, 0.2, 0.3, 0.44, 0.55, 1.66, 0.88, 1.1, 3.32}
)

func beCloseToSlice(want []float64, abs, rel float64) func([]float64) {
	return func(got []float64) {
		GinkgoHelper()
		Expect(got).To(HaveLen(len(want)))
		for i := range want {
			tol := abs + rel*math.Max(math.Abs(want[i]), math.Abs(got[i]))
			Expect(got[i]).To(BeNumerically("~", want[i], tol), "component %d", i)
		}
	}
}

var _ = Describe("Adapter", func() {
	configs := []struct {
		name string
		x    []float64
	}{
		{"overlapping", overlapping},
		{"sparse", sparse},
	}

	for _, c := range configs {
		x := c.x

		Context("wrapping a free HS-WCA potential at the "+c.name+" configuration", func() {
			var (
				full *potential.PairPotential
				ad   *Adapter
				xr   []float64
			)

			BeforeEach(func() {
				var err error
				full, err = potential.NewHSWCA(1, 1.2, radii, 3)
				Expect(err).NotTo(HaveOccurred())
				ad, err = NewHSWCA(1, 1.2, radii, 3, x, frozenDOF)
				Expect(err).NotTo(HaveOccurred())
				xr, err = ad.Reducer().ReduceCoords(x)
				Expect(err).NotTo(HaveOccurred())
			})

			It("reports the reduced dimension", func() {
				Expect(ad.Dof()).To(Equal(6))
				Expect(ad.Full().Dof()).To(Equal(9))
			})

			It("passes the energy through unchanged", func() {
				want, err := full.Energy(x)
				Expect(err).NotTo(HaveOccurred())
				got, err := ad.Energy(xr)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(BeNumerically("~", want, 1e-10*math.Max(1, math.Abs(want))))
			})

			It("returns the projected gradient and Hessian", func() {
				n := full.Dof()
				g, h := make([]float64, n), make([]float64, n*n)
				e, err := full.EnergyGradientHessian(x, g, h)
				Expect(err).NotTo(HaveOccurred())

				wantG, err := ad.Reducer().ReduceGradient(g)
				Expect(err).NotTo(HaveOccurred())
				wantH, err := ad.Reducer().ReduceHessian(h)
				Expect(err).NotTo(HaveOccurred())

				m := ad.Dof()
				gr, hr := make([]float64, m), make([]float64, m*m)
				er, err := ad.EnergyGradientHessian(xr, gr, hr)
				Expect(err).NotTo(HaveOccurred())
				Expect(er).To(BeNumerically("~", e, 1e-10*math.Max(1, math.Abs(e))))
				beCloseToSlice(wantG, 1e-10, 1e-10)(gr)
				beCloseToSlice(wantH, 1e-10, 1e-10)(hr)

				gr2 := make([]float64, m)
				e2, err := ad.EnergyGradient(xr, gr2)
				Expect(err).NotTo(HaveOccurred())
				Expect(e2).To(Equal(er))
				Expect(gr2).To(Equal(gr))
			})

			It("agrees with finite differences", func() {
				m := ad.Dof()
				g, h := make([]float64, m), make([]float64, m*m)
				_, err := ad.EnergyGradientHessian(xr, g, h)
				Expect(err).NotTo(HaveOccurred())

				ng, nh := make([]float64, m), make([]float64, m*m)
				Expect(ad.NumericalGradient(xr, ng)).To(Succeed())
				Expect(ad.NumericalHessian(xr, nh)).To(Succeed())
				beCloseToSlice(g, 1e-7, 1e-8)(ng)
				beCloseToSlice(h, 1e-5, 1e-8)(nh)
			})

			It("matches the periodic variant in a large box", func() {
				per, err := NewHSWCAPeriodic(1, 1.2, radii, box, x, frozenDOF)
				Expect(err).NotTo(HaveOccurred())

				m := ad.Dof()
				gf, gp := make([]float64, m), make([]float64, m)
				ef, err := ad.EnergyGradient(xr, gf)
				Expect(err).NotTo(HaveOccurred())
				ep, err := per.EnergyGradient(xr, gp)
				Expect(err).NotTo(HaveOccurred())
				Expect(ep).To(BeNumerically("~", ef, 1e-10*math.Max(1, math.Abs(ef))))
				beCloseToSlice(gf, 1e-10, 1e-10)(gp)
			})
		})
	}

	It("nests adapters", func() {
		inner, err := NewHSWCA(1, 1.2, radii, 3, overlapping, frozenDOF)
		Expect(err).NotTo(HaveOccurred())
		innerX, err := inner.Reducer().ReduceCoords(overlapping)
		Expect(err).NotTo(HaveOccurred())

		// reduced index 0 is full index 1
		outerR, err := NewReducer(innerX, []int{0})
		Expect(err).NotTo(HaveOccurred())
		outer, err := NewAdapter(inner, outerR)
		Expect(err).NotTo(HaveOccurred())

		flat, err := NewHSWCA(1, 1.2, radii, 3, overlapping, []int{0, 1, 3, 4})
		Expect(err).NotTo(HaveOccurred())

		xo, err := outerR.ReduceCoords(innerX)
		Expect(err).NotTo(HaveOccurred())
		xf, err := flat.Reducer().ReduceCoords(overlapping)
		Expect(err).NotTo(HaveOccurred())
		Expect(xo).To(Equal(xf))

		go1, gf := make([]float64, 5), make([]float64, 5)
		eo, err := outer.EnergyGradient(xo, go1)
		Expect(err).NotTo(HaveOccurred())
		ef, err := flat.EnergyGradient(xf, gf)
		Expect(err).NotTo(HaveOccurred())
		Expect(eo).To(Equal(ef))
		Expect(go1).To(Equal(gf))
	})

	It("accepts a fully frozen system", func() {
		ad, err := NewHSWCA(1, 1.2, radii, 3, overlapping, []int{0, 1, 2, 3, 4, 5, 6, 7, 8})
		Expect(err).NotTo(HaveOccurred())
		Expect(ad.Dof()).To(BeZero())

		e, err := ad.EnergyGradientHessian(nil, nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeNumerically(">", 0))
		Expect(ad.NumericalGradient(nil, nil)).To(Succeed())
	})

	It("rejects a reference that does not match the potential", func() {
		pot, err := potential.NewHSWCA(1, 1.2, radii, 3)
		Expect(err).NotTo(HaveOccurred())
		r, err := NewReducer(make([]float64, 6), []int{0})
		Expect(err).NotTo(HaveOccurred())

		_, err = NewAdapter(pot, r)
		Expect(err).To(MatchError(landscape.ErrConfiguration))
		_, err = NewAdapter(nil, r)
		Expect(err).To(MatchError(landscape.ErrConfiguration))
		_, err = NewHSWCA(1, 1.2, radii, 3, overlapping, []int{9})
		Expect(err).To(MatchError(landscape.ErrConfiguration))
		_, err = NewHSWCA(1, 0.9, radii, 3, overlapping, frozenDOF)
		Expect(err).To(MatchError(landscape.ErrConfiguration))
	})

	It("rejects reduced buffers of the wrong length", func() {
		ad, err := NewHSWCA(1, 1.2, radii, 3, overlapping, frozenDOF)
		Expect(err).NotTo(HaveOccurred())

		_, err = ad.Energy(overlapping)
		Expect(err).To(MatchError(landscape.ErrShape))
		_, err = ad.EnergyGradient(make([]float64, 6), make([]float64, 9))
		Expect(err).To(MatchError(landscape.ErrShape))
		_, err = ad.EnergyGradientHessian(make([]float64, 6), make([]float64, 6), make([]float64, 81))
		Expect(err).To(MatchError(landscape.ErrShape))
		Expect(ad.NumericalGradient(make([]float64, 5), make([]float64, 6))).To(MatchError(landscape.ErrShape))
		Expect(ad.NumericalHessian(make([]float64, 6), make([]float64, 6))).To(MatchError(landscape.ErrShape))
	})
})
