package fit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bmorris3/linetools/internal/fit"
)

var _ = Describe("KnotList", func() {
	var list fit.KnotList

	BeforeEach(func() {
		list = fit.NewKnotList([]fit.Knot{
			{X: 5000, Y: 0.9},
			{X: 4000, Y: 1.0},
		})
	})

	It("sorts knots by wavelength", func() {
		Expect(list.At(0).X).To(Equal(4000.0))
		Expect(list.At(1).X).To(Equal(5000.0))
		Expect(list.Version()).To(Equal(0))
	})

	Describe("Insert", func() {
		It("keeps the list sorted and bumps the version", func() {
			nl, err := list.Insert(fit.Knot{X: 4500, Y: 0.95})
			Expect(err).NotTo(HaveOccurred())
			Expect(nl.Len()).To(Equal(3))
			Expect(nl.At(1).X).To(Equal(4500.0))
			Expect(nl.Version()).To(Equal(1))
		})

		It("rejects a duplicate wavelength", func() {
			_, err := list.Insert(fit.Knot{X: 4000, Y: 2.0})
			Expect(err).To(MatchError(fit.ErrDuplicateKnot))
		})

		It("does not mutate the receiver", func() {
			_, err := list.Insert(fit.Knot{X: 4500, Y: 0.95})
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Len()).To(Equal(2))
		})
	})

	Describe("Double", func() {
		It("interpolates midpoints when no median is available", func() {
			nl := list.Double(nil)
			Expect(nl.Len()).To(Equal(3))
			mid := nl.At(1)
			Expect(mid.X).To(Equal(4500.0))
			Expect(mid.Y).To(BeNumerically("~", 0.95, 1e-12))
		})

		It("prefers the local flux median for the new y", func() {
			med := func(x float64) (float64, bool) { return 1.25, true }
			nl := list.Double(med)
			Expect(nl.At(1).Y).To(Equal(1.25))
		})

		It("grows n knots to 2n-1", func() {
			nl := list.Double(nil).Double(nil)
			Expect(nl.Len()).To(Equal(5))
		})
	})

	Describe("Halve", func() {
		It("keeps the edge anchors and every second interior knot", func() {
			nl := fit.NewKnotList([]fit.Knot{
				{X: 1}, {X: 2}, {X: 3}, {X: 4}, {X: 5}, {X: 6},
			}).Halve()
			Expect(nl.Len()).To(Equal(4))
			Expect(nl.At(0).X).To(Equal(1.0))
			Expect(nl.At(1).X).To(Equal(3.0))
			Expect(nl.At(2).X).To(Equal(5.0))
			Expect(nl.At(3).X).To(Equal(6.0))
		})

		It("leaves a two-knot list alone", func() {
			nl := list.Halve()
			Expect(nl.Len()).To(Equal(2))
		})
	})

	Describe("Nearest", func() {
		It("returns the lowest index on a tie", func() {
			nl := fit.NewKnotList([]fit.Knot{
				{X: 0, Y: 0}, {X: 2, Y: 0},
			})
			Expect(nl.Nearest(1, 0, nil)).To(Equal(0))
		})

		It("returns -1 for an empty list", func() {
			Expect(fit.NewKnotList(nil).Nearest(0, 0, nil)).To(Equal(-1))
		})

		It("measures distance in projected pixels", func() {
			// Stretch x so the knot at X=2 projects closer to px=30.
			proj := func(x, y float64) (float64, float64) { return x * 10, y }
			nl := fit.NewKnotList([]fit.Knot{
				{X: 0, Y: 0}, {X: 2, Y: 0},
			})
			Expect(nl.Nearest(30, 0, proj)).To(Equal(1))
		})
	})

	It("round-trips through Points and Interior", func() {
		nl, err := list.Insert(fit.Knot{X: 4500, Y: 0.95})
		Expect(err).NotTo(HaveOccurred())
		Expect(nl.Points()).To(HaveLen(3))
		Expect(nl.Interior()).To(Equal([]fit.Knot{{X: 4500, Y: 0.95}}))
		Expect(list.Interior()).To(BeNil())
	})
})
