// Package session persists the continuum knot list between fitting
// sessions as a JSON document of [x, y] pairs.
package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmorris3/linetools/internal/fit"
)

// DefaultKnotsFile matches the historical session file name.
const DefaultKnotsFile = "_knots.jsn"

var ErrExists = errors.New("session: file exists")

// SaveKnots writes the knot list to path as [[x, y], ...]. With
// overwrite false the save fails if the file already exists.
func SaveKnots(path string, knots []fit.Knot, overwrite bool) error {
	if !overwrite {
		if _, err := os.Lstat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	pairs := make([][2]float64, len(knots))
	for i, k := range knots {
		pairs[i] = [2]float64{k.X, k.Y}
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadKnots reads a knot list saved with SaveKnots.
func LoadKnots(path string) ([]fit.Knot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pairs [][2]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, err
	}
	knots := make([]fit.Knot, len(pairs))
	for i, p := range pairs {
		knots[i] = fit.Knot{X: p[0], Y: p[1]}
	}
	return knots, nil
}

// Store couples a knots file with an autosave policy. Commit is the
// explicit persistence step the editor invokes after each applied edit;
// with autosave disabled it does nothing.
type Store struct {
	Path     string
	Autosave bool
}

// NewStore returns a store writing to path, or DefaultKnotsFile when
// path is empty.
func NewStore(path string, autosave bool) *Store {
	if path == "" {
		path = DefaultKnotsFile
	}
	return &Store{Path: path, Autosave: autosave}
}

// Exists reports whether the knots file is present.
func (s *Store) Exists() bool {
	_, err := os.Lstat(s.Path)
	return err == nil
}

// Commit overwrites the knots file with the current list when autosave
// is enabled.
func (s *Store) Commit(knots fit.KnotList) error {
	if !s.Autosave {
		return nil
	}
	return SaveKnots(s.Path, knots.Points(), true)
}

// Load reads the knot list from the store's file.
func (s *Store) Load() ([]fit.Knot, error) {
	return LoadKnots(s.Path)
}

// PromptLoad asks on w whether the existing knots file should be used
// instead of the passed-in knots and reads the answer from r. Anything
// except an answer starting with 'n' means yes.
func PromptLoad(r io.Reader, w io.Writer, path string) bool {
	fmt.Fprintf(w, "knots file %s exists, use this? (y) ", path)
	reply, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && reply == "" {
		return true
	}
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "n")
}
