// Package gallery holds the precomputed face encodings the recognizer matches
// against. The artifact is produced offline by cmd/encode-gallery and loaded
// once at startup; after that the gallery is read-only.
package gallery

import (
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Unknown is the label reported when no gallery entry matches confidently.
// It is never a markable identity.
const Unknown = "Unknown"

// DefaultTolerance matches the recognition threshold the encodings were
// validated against.
const DefaultTolerance = 0.5

// artifact is the on-disk layout of the encodings file. One name per encoding;
// a person enrolled from several reference images appears once per image.
type artifact struct {
	Names     []string    `msgpack:"names"`
	Encodings [][]float64 `msgpack:"encodings"`
}

// Gallery is an immutable-after-load set of known identities.
type Gallery struct {
	names     []string
	encodings [][]float64
	tolerance float64
}

// New builds a gallery from parallel name/encoding slices.
func New(names []string, encodings [][]float64, tolerance float64) (*Gallery, error) {
	if len(names) != len(encodings) {
		return nil, fmt.Errorf("gallery: %d names but %d encodings", len(names), len(encodings))
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Gallery{names: names, encodings: encodings, tolerance: tolerance}, nil
}

// Load reads the encodings artifact at path. A missing or unreadable artifact
// is not fatal: recognition then always reports Unknown, and the condition is
// logged once here.
func Load(path string, tolerance float64) *Gallery {
	empty, _ := New(nil, nil, tolerance)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("WARNING: encodings file %q not loaded (%v); face recognition disabled", path, err)
		return empty
	}

	var a artifact
	if err := msgpack.Unmarshal(data, &a); err != nil {
		log.Printf("WARNING: encodings file %q is corrupt (%v); face recognition disabled", path, err)
		return empty
	}

	g, err := New(a.Names, a.Encodings, tolerance)
	if err != nil {
		log.Printf("WARNING: encodings file %q is inconsistent (%v); face recognition disabled", path, err)
		return empty
	}
	log.Printf("Loaded %d face encodings for %d people from %s", len(g.names), g.PeopleCount(), path)
	return g
}

// WriteArtifact saves names and encodings in the format Load expects.
func WriteArtifact(path string, names []string, encodings [][]float64) error {
	data, err := msgpack.Marshal(artifact{Names: names, Encodings: encodings})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Len returns the number of stored encodings (not distinct people).
func (g *Gallery) Len() int {
	return len(g.encodings)
}

// PeopleCount returns the number of distinct labels.
func (g *Gallery) PeopleCount() int {
	seen := make(map[string]struct{}, len(g.names))
	for _, n := range g.names {
		seen[n] = struct{}{}
	}
	return len(seen)
}

// Names returns the distinct labels in the gallery.
func (g *Gallery) Names() []string {
	seen := make(map[string]struct{}, len(g.names))
	var out []string
	for _, n := range g.names {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// Match finds the gallery entry closest to vec by Euclidean distance and
// accepts it when within tolerance; otherwise it reports Unknown. Ties are
// broken by score and then label so results do not depend on the order people
// were enrolled in.
func (g *Gallery) Match(vec []float64) (name string, distance float64, ok bool) {
	best := math.Inf(1)
	bestName := ""
	for i, enc := range g.encodings {
		d := euclidean(vec, enc)
		if d < best || (d == best && g.names[i] < bestName) {
			best = d
			bestName = g.names[i]
		}
	}
	if bestName == "" || best > g.tolerance {
		return Unknown, best, false
	}
	return bestName, best, true
}

// Contains reports whether label names someone enrolled in the gallery.
func (g *Gallery) Contains(label string) bool {
	for _, n := range g.names {
		if n == label {
			return true
		}
	}
	return false
}

// ResolveRoll maps an external roll number to a gallery label. Labels are
// either the roll number itself or "<Name>_<roll>".
func (g *Gallery) ResolveRoll(roll string) (string, bool) {
	if roll == "" {
		return "", false
	}
	for _, n := range g.names {
		if n == roll || strings.HasSuffix(n, "_"+roll) {
			return n, true
		}
	}
	return "", false
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
