package frozen

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/packmin/internal/landscape"
)

var _ = Describe("Reducer", func() {
	var (
		ref []float64
		r   *Reducer
	)

	BeforeEach(func() {
		ref = []float64{0.1, 0.2, 0.3, 0.44, 0.55, 1.66, 0.88, 1.1, 3.32}
		var err error
		r, err = NewReducer(ref, []int{4, 0, 3})
		Expect(err).NotTo(HaveOccurred())
	})

	It("partitions indices in ascending order", func() {
		Expect(r.FullDim()).To(Equal(9))
		Expect(r.ReducedDim()).To(Equal(6))
		Expect(r.Frozen()).To(Equal([]int{0, 3, 4}))
		Expect(r.Mobile()).To(Equal([]int{1, 2, 5, 6, 7, 8}))
	})

	It("copies the reference configuration", func() {
		ref[0] = 100
		Expect(r.Reference()[0]).To(Equal(0.1))
	})

	It("reduces coordinates and gradients by selection", func() {
		xr, err := r.ReduceCoords(ref)
		Expect(err).NotTo(HaveOccurred())
		Expect(xr).To(Equal([]float64{0.2, 0.3, 1.66, 0.88, 1.1, 3.32}))

		g := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
		gr, err := r.ReduceGradient(g)
		Expect(err).NotTo(HaveOccurred())
		Expect(gr).To(Equal([]float64{2, 3, 6, 7, 8, 9}))
	})

	It("inflates with reference values at frozen indices", func() {
		full, err := r.InflateCoords([]float64{-1, -2, -3, -4, -5, -6})
		Expect(err).NotTo(HaveOccurred())
		Expect(full).To(Equal([]float64{0.1, -1, -2, 0.44, 0.55, -3, -4, -5, -6}))
		Expect(r.Reference()).To(Equal([]float64{0.1, 0.2, 0.3, 0.44, 0.55, 1.66, 0.88, 1.1, 3.32}))
	})

	It("round-trips any reduced configuration exactly", func() {
		rng := rand.New(rand.NewSource(7))
		for trial := 0; trial < 50; trial++ {
			xr := make([]float64, r.ReducedDim())
			for i := range xr {
				xr[i] = rng.NormFloat64() * 10
			}
			full, err := r.InflateCoords(xr)
			Expect(err).NotTo(HaveOccurred())
			back, err := r.ReduceCoords(full)
			Expect(err).NotTo(HaveOccurred())
			Expect(back).To(Equal(xr))
		}
	})

	It("restricts the Hessian to mobile rows and columns", func() {
		n := r.FullDim()
		h := make([]float64, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				h[i*n+j] = float64(10*i + j)
			}
		}
		hr, err := r.ReduceHessian(h)
		Expect(err).NotTo(HaveOccurred())

		mobile := r.Mobile()
		m := len(mobile)
		Expect(hr).To(HaveLen(m * m))
		for i, ki := range mobile {
			for j, kj := range mobile {
				Expect(hr[i*m+j]).To(Equal(float64(10*ki + kj)))
			}
		}
	})

	It("rejects buffers of the wrong length", func() {
		_, err := r.ReduceCoords(make([]float64, 8))
		Expect(err).To(MatchError(landscape.ErrShape))

		_, err = r.InflateCoords(make([]float64, 9))
		Expect(err).To(BeAssignableToTypeOf(&landscape.ShapeError{}))
		Expect(err.(*landscape.ShapeError).Want).To(Equal(6))

		_, err = r.ReduceGradient(nil)
		Expect(err).To(MatchError(landscape.ErrShape))
		_, err = r.ReduceHessian(make([]float64, 9))
		Expect(err).To(MatchError(landscape.ErrShape))

		Expect(r.ReduceCoordsInto(make([]float64, 5), ref)).To(MatchError(landscape.ErrShape))
		Expect(r.InflateCoordsInto(make([]float64, 3), make([]float64, 6))).To(MatchError(landscape.ErrShape))
		Expect(r.ReduceHessianInto(make([]float64, 35), make([]float64, 81))).To(MatchError(landscape.ErrShape))
	})

	DescribeTable("invalid frozen sets",
		func(reference []float64, dof []int) {
			_, err := NewReducer(reference, dof)
			Expect(err).To(MatchError(landscape.ErrConfiguration))
		},
		Entry("index past the end", []float64{1, 2, 3}, []int{3}),
		Entry("negative index", []float64{1, 2, 3}, []int{-1}),
		Entry("duplicate index", []float64{1, 2, 3}, []int{1, 1}),
		Entry("empty reference", []float64{}, []int{}),
	)

	It("allows freezing everything or nothing", func() {
		all, err := NewReducer([]float64{1, 2}, []int{0, 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(all.ReducedDim()).To(BeZero())
		full, err := all.InflateCoords(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(full).To(Equal([]float64{1, 2}))

		none, err := NewReducer([]float64{1, 2}, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(none.Mobile()).To(Equal([]int{0, 1}))
	})
})

var _ = Describe("AtomDOF", func() {
	It("expands particles into sorted coordinate indices", func() {
		Expect(AtomDOF([]int{2, 0, 2}, 3)).To(Equal([]int{0, 1, 2, 6, 7, 8}))
		Expect(AtomDOF(nil, 2)).To(BeEmpty())
	})
})
