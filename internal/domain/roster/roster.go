// Package roster holds the fixed competitor allow-list and identifier normalization.
package roster

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// defaultMaxSuggestDistance bounds how far a lookup may be from a roster name
// for Suggest to propose it.
const defaultMaxSuggestDistance = 3

// DefaultNames is the 2025 season allow-list.
var DefaultNames = []string{
	"alexander albon", "carlos sainz", "charles leclerc", "esteban ocon", "fernando alonso",
	"gabriel bortoleto", "george russell", "isack hadjar", "jack doohan", "kimi antonelli",
	"lance stroll", "lando norris", "lewis hamilton", "liam lawson", "max verstappen",
	"nico hulkenberg", "oliver bearman", "oscar piastri", "pierre gasly", "yuki tsunoda",
}

// Normalize lowercases and trims an identifier. Input is NFC-composed first so
// that precomposed and combining forms of the same name compare equal.
func Normalize(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return cases.Lower(language.Und).String(s)
}

// Option applies a configuration option to a Roster.
type Option func(*Roster)

// WithMaxSuggestDistance sets the edit distance limit used by Suggest.
func WithMaxSuggestDistance(d int) Option {
	return func(r *Roster) {
		if d >= 0 {
			r.maxDistance = d
		}
	}
}

// Roster is an ordered, immutable allow-list of normalized competitor names.
type Roster struct {
	names       []string
	index       map[string]int
	maxDistance int
}

// New builds a Roster. Names are normalized; duplicates and blanks are dropped
// while keeping first-seen order.
func New(names []string, opts ...Option) (*Roster, error) {
	r := &Roster{
		index:       make(map[string]int, len(names)),
		maxDistance: defaultMaxSuggestDistance,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, n := range names {
		n = Normalize(n)
		if n == "" {
			continue
		}
		if _, dup := r.index[n]; dup {
			continue
		}
		r.index[n] = len(r.names)
		r.names = append(r.names, n)
	}
	if len(r.names) == 0 {
		return nil, ErrEmpty
	}
	return r, nil
}

// Contains reports whether name (already normalized) is on the allow-list.
func (r *Roster) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Index returns the roster position of name.
func (r *Roster) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Names returns a copy of the allow-list in roster order.
func (r *Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the roster size.
func (r *Roster) Len() int { return len(r.names) }

// Suggest returns the roster name closest to name, if one lies within the
// configured edit distance. Ties resolve to the earlier roster entry.
func (r *Roster) Suggest(name string) (string, bool) {
	name = Normalize(name)
	best, bestDist := "", -1
	for _, candidate := range r.names {
		d := levenshtein.ComputeDistance(name, candidate)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist < 0 || bestDist > r.maxDistance {
		return "", false
	}
	return best, true
}
