package spectrum

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadFile reads a spectrum from a text table. Comma-separated files
// (by extension or content) and whitespace-separated files are both
// accepted. Rows must have 3 columns (wave, flux, error) or 4 columns
// (wave, flux, error, continuum); the optional continuum column is
// returned separately and is nil for 3-column input. Lines starting
// with '#' are skipped.
func ReadFile(path string) (*Spectrum, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	comma := strings.EqualFold(filepath.Ext(path), ".csv")
	return Read(f, comma)
}

// Read parses a spectrum table from r. When comma is true fields are
// comma-separated, otherwise whitespace-separated.
func Read(r io.Reader, comma bool) (*Spectrum, []float64, error) {
	var wave, flux, errArr, cont []float64
	ncols := 0

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var fields []string
		if comma {
			fields = strings.Split(text, ",")
			for i := range fields {
				fields[i] = strings.TrimSpace(fields[i])
			}
		} else {
			fields = strings.Fields(text)
		}
		if ncols == 0 {
			if len(fields) != 3 && len(fields) != 4 {
				return nil, nil, fmt.Errorf("spectrum: line %d: want 3 or 4 columns, got %d", line, len(fields))
			}
			ncols = len(fields)
		} else if len(fields) != ncols {
			return nil, nil, fmt.Errorf("spectrum: line %d: want %d columns, got %d", line, ncols, len(fields))
		}

		vals := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("spectrum: line %d: %w", line, err)
			}
			vals[i] = v
		}
		wave = append(wave, vals[0])
		flux = append(flux, vals[1])
		errArr = append(errArr, vals[2])
		if ncols == 4 {
			cont = append(cont, vals[3])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}

	spec, err := New(wave, flux, errArr)
	if err != nil {
		return nil, nil, err
	}
	return spec, cont, nil
}

// WriteCSV writes the spectrum and any extra aligned columns to w. The
// extras map preserves no ordering, so column names are passed in order.
func WriteCSV(w io.Writer, s *Spectrum, names []string, extras ...[]float64) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"wave", "flux", "error"}
	header = append(header, names...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < s.Npix(); i++ {
		row := []string{
			strconv.FormatFloat(s.Wave[i], 'f', 6, 64),
			strconv.FormatFloat(s.Flux[i], 'f', 6, 64),
			strconv.FormatFloat(s.Err[i], 'f', 6, 64),
		}
		for _, col := range extras {
			v := math.NaN()
			if i < len(col) {
				v = col[i]
			}
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// Demo generates a synthetic quasar-like spectrum with a sloped
// continuum, a handful of absorption lines and gaussian noise. The
// same seed always produces the same spectrum.
func Demo(npix int, seed int64) (*Spectrum, []float64) {
	if npix < 2 {
		npix = 2
	}
	rng := rand.New(rand.NewSource(seed))

	wave := make([]float64, npix)
	flux := make([]float64, npix)
	errArr := make([]float64, npix)
	cont := make([]float64, npix)

	w0, w1 := 4000.0, 5000.0
	lines := []struct{ center, depth, width float64 }{
		{4150, 0.7, 3.0},
		{4380, 0.5, 5.0},
		{4620, 0.9, 2.0},
		{4810, 0.4, 8.0},
	}

	for i := 0; i < npix; i++ {
		w := w0 + (w1-w0)*float64(i)/float64(npix-1)
		wave[i] = w
		co := 1.0 + 0.2*math.Sin((w-w0)/300.0)
		cont[i] = co

		absorbed := co
		for _, l := range lines {
			d := (w - l.center) / l.width
			absorbed *= 1 - l.depth*math.Exp(-0.5*d*d)
		}
		sigma := 0.05 * co
		flux[i] = absorbed + rng.NormFloat64()*sigma
		errArr[i] = sigma
	}

	s, _ := New(wave, flux, errArr)
	return s, cont
}
