package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/bmorris3/linetools/internal/config"
	"github.com/bmorris3/linetools/internal/export"
	"github.com/bmorris3/linetools/internal/fit"
	"github.com/bmorris3/linetools/internal/session"
	"github.com/bmorris3/linetools/internal/spectrum"
	"github.com/bmorris3/linetools/internal/tui"
)

var (
	knotsFile   string
	contFile    string
	configFile  string
	redshift    float64
	smoothWidth float64
	noAutosave  bool
	seedCount   int
	// Demo spectrum
	demoPixels int
	demoSeed   int64
	// Static plot size
	plotWidth  int
	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "linetools",
		Short: "interactive continuum fitting for 1d spectra",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the demo session when no command given
			return runDemo(cmd, args)
		},
	}

	fitCmd := &cobra.Command{
		Use:   "fit [spectrum]",
		Short: "fit a continuum interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runFit,
	}
	fitCmd.Flags().StringVar(&knotsFile, "knots", "", "knots session file (json)")
	fitCmd.Flags().StringVar(&contFile, "continuum", "", "prior continuum table (flux column used)")
	fitCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	fitCmd.Flags().Float64Var(&redshift, "redshift", 0, "redshift for rest-frame readout")
	fitCmd.Flags().Float64Var(&smoothWidth, "smooth", 0, "initial smoothing width (pixels)")
	fitCmd.Flags().BoolVar(&noAutosave, "no-autosave", false, "do not save knots after each edit")
	fitCmd.Flags().IntVar(&seedCount, "seed-knots", 5, "number of initial knots when no session file exists")

	plotCmd := &cobra.Command{
		Use:   "plot [spectrum]",
		Short: "plot a spectrum in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "plot height")

	knotsCmd := &cobra.Command{
		Use:   "knots [file]",
		Short: "list a saved knot file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listKnots,
	}

	exportCmd := &cobra.Command{
		Use:   "export-csv [spectrum]",
		Short: "refit from a knot file and export continuum and residuals",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCmd.Flags().StringVar(&knotsFile, "knots", session.DefaultKnotsFile, "knots session file (json)")

	svgCmd := &cobra.Command{
		Use:   "export-svg [spectrum]",
		Short: "refit from a knot file and render the plot as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVar(&knotsFile, "knots", session.DefaultKnotsFile, "knots session file (json)")
	svgCmd.Flags().IntVar(&plotWidth, "width", 960, "image width (pixels)")
	svgCmd.Flags().IntVar(&plotHeight, "height", 480, "image height (pixels)")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "fit a synthetic spectrum interactively",
		RunE:  runDemo,
	}
	demoCmd.Flags().IntVar(&demoPixels, "pixels", config.DefaultDemoPixels, "number of pixels")
	demoCmd.Flags().Int64Var(&demoSeed, "seed", config.DefaultDemoSeed, "random seed")
	demoCmd.Flags().BoolVar(&noAutosave, "no-autosave", false, "do not save knots after each edit")

	rootCmd.AddCommand(fitCmd, plotCmd, knotsCmd, exportCmd, svgCmd, demoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// seedKnots spaces n knots over the spectrum, estimating y from the
// local flux median.
func seedKnots(spec *spectrum.Spectrum, n int) []fit.Knot {
	if n < 2 {
		n = 2
	}
	knots := make([]fit.Knot, 0, n)
	for i := 0; i < n; i++ {
		j := 1 + i*(spec.Npix()-3)/(n-1)
		x := spec.Wave[j]
		y, ok := spec.LocalMedian(x, fit.MedianHalfWidth)
		if !ok {
			y = spec.Flux[j]
		}
		knots = append(knots, fit.Knot{X: x, Y: y})
	}
	return knots
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	// CLI flags override config
	if cmd.Flags().Changed("knots") {
		cfg.KnotsFile = knotsFile
	}
	if cmd.Flags().Changed("redshift") {
		cfg.Redshift = redshift
	}
	if cmd.Flags().Changed("smooth") {
		cfg.SmoothWidth = smoothWidth
	}
	if noAutosave {
		cfg.Autosave = false
	}
	return cfg, nil
}

func runSession(cfg *config.Config, spec *spectrum.Spectrum, cont []float64, knots []fit.Knot) error {
	store := session.NewStore(cfg.KnotsFile, cfg.Autosave)
	if store.Exists() && session.PromptLoad(os.Stdin, os.Stdout, store.Path) {
		loaded, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load knots: %w", err)
		}
		knots = loaded
	}

	f, err := fit.New(spec, knots, cont)
	if err != nil {
		return err
	}

	final, err := tui.Run(f, store, cfg.Redshift, cfg.SmoothWidth)
	if err != nil {
		return err
	}
	fmt.Printf("finished with %d knots\n", len(final))
	if cfg.Autosave {
		fmt.Printf("saved to %s\n", store.Path)
	}
	return nil
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	spec, cont, err := spectrum.ReadFile(args[0])
	if err != nil {
		return err
	}
	if contFile != "" {
		cs, _, err := spectrum.ReadFile(contFile)
		if err != nil {
			return fmt.Errorf("failed to read continuum: %w", err)
		}
		if cs.Npix() != spec.Npix() {
			return fmt.Errorf("continuum has %d pixels, spectrum has %d", cs.Npix(), spec.Npix())
		}
		cont = cs.Flux
	}
	return runSession(cfg, spec, cont, seedKnots(spec, seedCount))
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if noAutosave {
		cfg.Autosave = false
	}
	pixels, seed := cfg.Demo.Pixels, cfg.Demo.Seed
	if demoPixels > 0 {
		pixels = demoPixels
	}
	if demoSeed != 0 {
		seed = demoSeed
	}
	spec, cont := spectrum.Demo(pixels, seed)
	return runSession(cfg, spec, cont, seedKnots(spec, 5))
}

func runPlot(cmd *cobra.Command, args []string) error {
	spec, cont, err := spectrum.ReadFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("spectrum: %s\n", args[0])
	fmt.Printf("pixels: %d  range: %.1f-%.1f\n\n", spec.Npix(), spec.Wave[0], spec.Wave[spec.Npix()-1])

	if len(cont) == spec.Npix() {
		graph := asciigraph.PlotMany(
			[][]float64{spec.Flux, cont},
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("flux and continuum"),
		)
		fmt.Println(graph)
		return nil
	}

	graph := asciigraph.Plot(spec.Flux,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("flux"),
	)
	fmt.Println(graph)
	return nil
}

func listKnots(cmd *cobra.Command, args []string) error {
	path := session.DefaultKnotsFile
	if len(args) > 0 {
		path = args[0]
	}
	knots, err := session.LoadKnots(path)
	if err != nil {
		return err
	}
	if len(knots) == 0 {
		fmt.Println("no knots found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tWAVELENGTH\tFLUX\tROLE")
	for i, k := range knots {
		role := "knot"
		if i == 0 || i == len(knots)-1 {
			role = "anchor"
		}
		fmt.Fprintf(w, "%d\t%.4f\t%.6f\t%s\n", i, k.X, k.Y, role)
	}
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	spec, cont, err := spectrum.ReadFile(args[0])
	if err != nil {
		return err
	}
	knots, err := session.LoadKnots(knotsFile)
	if err != nil {
		return fmt.Errorf("failed to load knots: %w", err)
	}

	f, err := fit.New(spec, knots, cont)
	if err != nil {
		return err
	}

	i0, i1 := f.Window()
	resid := make([]float64, spec.Npix())
	for i := range resid {
		resid[i] = math.NaN()
	}
	copy(resid[i0:i1], f.Residuals())

	return spectrum.WriteCSV(os.Stdout, spec, []string{"continuum", "residual"}, f.Continuum(), resid)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	spec, cont, err := spectrum.ReadFile(args[0])
	if err != nil {
		return err
	}
	knots, err := session.LoadKnots(knotsFile)
	if err != nil {
		return fmt.Errorf("failed to load knots: %w", err)
	}

	f, err := fit.New(spec, knots, cont)
	if err != nil {
		return err
	}
	fmt.Println(export.SpectrumSVG(f, plotWidth, plotHeight))
	return nil
}
