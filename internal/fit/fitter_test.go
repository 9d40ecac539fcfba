package fit_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bmorris3/linetools/internal/fit"
	"github.com/bmorris3/linetools/internal/spectrum"
)

// flatSpectrum builds a 1001-pixel spectrum over 4000-5000 A with
// constant flux and error.
func flatSpectrum(flux float64) *spectrum.Spectrum {
	n := 1001
	wave := make([]float64, n)
	fl := make([]float64, n)
	er := make([]float64, n)
	for i := range wave {
		wave[i] = 4000 + float64(i)
		fl[i] = flux
		er[i] = 0.05
	}
	s, err := spectrum.New(wave, fl, er)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Fitter", func() {
	var (
		spec *spectrum.Spectrum
		f    *fit.Fitter
	)

	BeforeEach(func() {
		spec = flatSpectrum(1.0)
		var err error
		f, err = fit.New(spec, []fit.Knot{
			{X: 4100, Y: 1.0},
			{X: 4900, Y: 1.0},
		}, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("fixes the window from the knot extremes", func() {
			i0, i1 := f.Window()
			Expect(i0).To(Equal(100))
			Expect(i1).To(Equal(901))
			Expect(f.Wmin()).To(Equal(4100.0))
			Expect(f.Wmax()).To(Equal(4900.0))
			Expect(f.State()).To(Equal(fit.StateEditing))
		})

		It("snaps edge knots onto the wavelength grid", func() {
			g, err := fit.New(spec, []fit.Knot{
				{X: 4100.4, Y: 1.0},
				{X: 4899.7, Y: 1.0},
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			kl := g.Knots()
			Expect(kl.At(0).X).To(Equal(4101.0))
			Expect(kl.At(kl.Len() - 1).X).To(Equal(4900.0))
		})

		It("clamps the window one pixel inside the spectrum", func() {
			g, err := fit.New(spec, []fit.Knot{
				{X: 3000, Y: 1.0},
				{X: 6000, Y: 1.0},
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			i0, i1 := g.Window()
			Expect(i0).To(Equal(1))
			Expect(i1).To(Equal(1000))
		})

		It("rejects fewer than two knots", func() {
			_, err := fit.New(spec, []fit.Knot{{X: 4500, Y: 1}}, nil)
			Expect(err).To(MatchError(fit.ErrTooFewKnots))
		})

		It("rejects a region outside the spectrum", func() {
			_, err := fit.New(spec, []fit.Knot{
				{X: 5100, Y: 1.0},
				{X: 5200, Y: 1.0},
			}, nil)
			Expect(err).To(MatchError(fit.ErrBadRegion))
		})

		It("fits a finite continuum across the whole window", func() {
			i0, i1 := f.Window()
			cont := f.Continuum()
			for i := i0; i < i1; i++ {
				Expect(math.IsNaN(cont[i])).To(BeFalse())
			}
		})
	})

	Describe("adding knots", func() {
		It("accepts an in-window add and refits", func() {
			v0 := f.Knots().Version()
			err := f.Apply(fit.Event{Op: fit.OpAdd, X: 4500, Y: 1.0}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Knots().Len()).To(Equal(3))
			Expect(f.Knots().Version()).To(BeNumerically(">", v0))
		})

		It("rejects an add outside the fitting region", func() {
			err := f.Apply(fit.Event{Op: fit.OpAdd, X: 3999, Y: 1.0}, nil)
			Expect(err).To(MatchError(fit.ErrOutsideRegion))
			Expect(f.Knots().Len()).To(Equal(2))
		})

		It("rejects a duplicate wavelength without changing state", func() {
			v0 := f.Knots().Version()
			err := f.Apply(fit.Event{Op: fit.OpAdd, X: 4100, Y: 1.5}, nil)
			Expect(err).To(MatchError(fit.ErrDuplicateKnot))
			Expect(f.Knots().Version()).To(Equal(v0))
		})

		It("takes y from the local flux median for a median add", func() {
			err := f.Apply(fit.Event{Op: fit.OpAddMedian, X: 4500, Y: 42.0}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Knots().At(1).Y).To(BeNumerically("~", 1.0, 1e-9))
		})
	})

	Describe("deleting and moving knots", func() {
		BeforeEach(func() {
			Expect(f.Apply(fit.Event{Op: fit.OpAdd, X: 4500, Y: 1.0}, nil)).To(Succeed())
		})

		It("deletes the knot nearest the cursor", func() {
			err := f.Apply(fit.Event{Op: fit.OpDelete, Px: 4500, Py: 1.0}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Knots().Len()).To(Equal(2))
		})

		It("restores the original shape after add then delete", func() {
			before := []fit.Knot{{X: 4100, Y: 1.0}, {X: 4900, Y: 1.0}}
			Expect(f.Apply(fit.Event{Op: fit.OpDelete, Px: 4500, Py: 1.0}, nil)).To(Succeed())
			Expect(f.Knots().Points()).To(Equal(before))
		})

		It("refuses to delete an edge anchor", func() {
			err := f.Apply(fit.Event{Op: fit.OpDelete, Px: 4100, Py: 1.0}, nil)
			Expect(err).To(MatchError(fit.ErrAnchorKnot))
			Expect(f.Knots().Len()).To(Equal(3))
		})

		It("refuses to delete below two knots", func() {
			Expect(f.Apply(fit.Event{Op: fit.OpDelete, Px: 4500, Py: 1.0}, nil)).To(Succeed())
			err := f.Apply(fit.Event{Op: fit.OpDelete, Px: 4500, Py: 1.0}, nil)
			Expect(err).To(MatchError(fit.ErrTooFewKnots))
		})

		It("moves the nearest interior knot to the cursor", func() {
			err := f.Apply(fit.Event{Op: fit.OpMove, X: 4600, Y: 1.1, Px: 4500, Py: 1.0}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Knots().At(1)).To(Equal(fit.Knot{X: 4600, Y: 1.1}))
		})

		It("refuses to move an edge anchor", func() {
			err := f.Apply(fit.Event{Op: fit.OpMove, X: 4200, Y: 1.0, Px: 4100, Py: 1.0}, nil)
			Expect(err).To(MatchError(fit.ErrAnchorKnot))
		})
	})

	Describe("doubling and halving", func() {
		It("doubles n knots to 2n-1", func() {
			Expect(f.Apply(fit.Event{Op: fit.OpDouble}, nil)).To(Succeed())
			Expect(f.Knots().Len()).To(Equal(3))
			Expect(f.Apply(fit.Event{Op: fit.OpDouble}, nil)).To(Succeed())
			Expect(f.Knots().Len()).To(Equal(5))
		})

		It("halving never drops the edge anchors", func() {
			Expect(f.Apply(fit.Event{Op: fit.OpDouble}, nil)).To(Succeed())
			Expect(f.Apply(fit.Event{Op: fit.OpDouble}, nil)).To(Succeed())
			Expect(f.Apply(fit.Event{Op: fit.OpHalve}, nil)).To(Succeed())
			kl := f.Knots()
			Expect(kl.Len()).To(BeNumerically(">=", 2))
			Expect(kl.At(0).X).To(Equal(4100.0))
			Expect(kl.At(kl.Len() - 1).X).To(Equal(4900.0))
		})
	})

	Describe("residuals", func() {
		It("reports (flux-continuum)/error over the window", func() {
			g, err := fit.New(flatSpectrum(1.05), []fit.Knot{
				{X: 4100, Y: 1.0},
				{X: 4900, Y: 1.0},
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			resid := g.Residuals()
			i0, i1 := g.Window()
			Expect(resid).To(HaveLen(i1 - i0))
			for _, r := range resid {
				Expect(r).To(BeNumerically("~", 1.0, 1e-9))
			}
		})

		It("bins visible residuals between 0 and 5 sigma", func() {
			g, err := fit.New(flatSpectrum(1.05), []fit.Knot{
				{X: 4100, Y: 1.0},
				{X: 4900, Y: 1.0},
			}, nil)
			Expect(err).NotTo(HaveOccurred())

			counts, edges := g.ResidualHistogram(4000, 5000)
			Expect(edges[0]).To(Equal(0.0))
			Expect(edges[len(edges)-1]).To(BeNumerically("~", 5.0, 1e-9))
			total := 0.0
			for _, c := range counts {
				total += c
			}
			i0, i1 := g.Window()
			Expect(total).To(Equal(float64(i1 - i0)))
		})

		It("narrowing the view narrows the histogram", func() {
			g, err := fit.New(flatSpectrum(1.05), []fit.Knot{
				{X: 4100, Y: 1.0},
				{X: 4900, Y: 1.0},
			}, nil)
			Expect(err).NotTo(HaveOccurred())

			counts, _ := g.ResidualHistogram(4400, 4600)
			total := 0.0
			for _, c := range counts {
				total += c
			}
			Expect(total).To(Equal(201.0))
		})
	})

	Describe("quitting", func() {
		It("finishes the session and rejects further edits", func() {
			Expect(f.Apply(fit.Event{Op: fit.OpQuit}, nil)).To(Succeed())
			Expect(f.Finished()).To(BeTrue())
			err := f.Apply(fit.Event{Op: fit.OpAdd, X: 4500, Y: 1.0}, nil)
			Expect(err).To(MatchError(fit.ErrFinished))
		})
	})

	Describe("OpForKey", func() {
		It("maps the editing bindings", func() {
			Expect(fit.OpForKey("a")).To(Equal(fit.OpAdd))
			Expect(fit.OpForKey("3")).To(Equal(fit.OpAdd))
			Expect(fit.OpForKey("A")).To(Equal(fit.OpAddMedian))
			Expect(fit.OpForKey("+")).To(Equal(fit.OpDouble))
			Expect(fit.OpForKey("_")).To(Equal(fit.OpHalve))
			Expect(fit.OpForKey("d")).To(Equal(fit.OpDelete))
			Expect(fit.OpForKey("4")).To(Equal(fit.OpDelete))
			Expect(fit.OpForKey("m")).To(Equal(fit.OpMove))
			Expect(fit.OpForKey("M")).To(Equal(fit.OpMoveMedian))
			Expect(fit.OpForKey("q")).To(Equal(fit.OpQuit))
			Expect(fit.OpForKey("z")).To(Equal(fit.OpNone))
		})
	})
})
