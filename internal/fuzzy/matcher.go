// Package fuzzy collapses spelling variants of free-text names onto a set of
// canonical names.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/bjorheimar/catalog-sync/internal/textutil"
)

const DefaultThreshold = 0.8

// Substituting a letter for its own accented or unaccented form costs this
// much instead of a full edit.
const foldedSubstitutionCost = 0.1

type entry struct {
	name  string
	runes []rune
}

// Matcher is an approximate-match index. It is not safe for concurrent Add;
// concurrent Get calls are fine once the index is built.
type Matcher struct {
	threshold float64
	entries   []entry
}

// New returns an empty index. A threshold outside (0, 1] falls back to
// DefaultThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

func (m *Matcher) Threshold() float64 { return m.threshold }

func (m *Matcher) Len() int { return len(m.entries) }

func (m *Matcher) Add(name string) {
	m.entries = append(m.entries, entry{name: name, runes: normalize(name)})
}

// AddUnique adds name only when it does not already match an indexed name.
// It reports whether name was added.
func (m *Matcher) AddUnique(name string) bool {
	if _, ok := m.Get(name); ok {
		return false
	}
	m.Add(name)
	return true
}

// Get returns the best indexed name scoring at least the matcher threshold.
func (m *Matcher) Get(name string) (string, bool) {
	return m.GetWithThreshold(name, m.threshold)
}

// GetWithThreshold returns the highest scoring indexed name whose similarity
// to name is at least threshold. Ties go to the earliest added name.
func (m *Matcher) GetWithThreshold(name string, threshold float64) (string, bool) {
	q := normalize(name)
	best, bestScore := -1, -1.0
	for i, e := range m.entries {
		if upperBound(q, e.runes) < threshold {
			continue
		}
		s := score(q, e.runes)
		if s >= threshold && s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return "", false
	}
	return m.entries[best].name, true
}

// Similarity scores a against b in [0, 1]; 1 means equal ignoring case and
// surrounding whitespace.
func Similarity(a, b string) float64 {
	return score(normalize(a), normalize(b))
}

func normalize(s string) []rune {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	out := make([]rune, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, r)
	}
	return out
}

func upperBound(a, b []rune) float64 {
	la, lb := len(a), len(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/float64(longest)
}

func score(a, b []rune) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - distance(a, b)/float64(longest)
}

// distance is a Levenshtein distance where swapping a letter for a variant
// that folds to the same base letter is nearly free.
func distance(a, b []rune) float64 {
	prev := make([]float64, len(b)+1)
	cur := make([]float64, len(b)+1)
	for j := range prev {
		prev[j] = float64(j)
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = float64(i)
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1] + substitution(a[i-1], b[j-1])
			del := prev[j] + 1
			ins := cur[j-1] + 1
			cur[j] = min(sub, del, ins)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func substitution(x, y rune) float64 {
	if x == y {
		return 0
	}
	if textutil.FoldRune(x) == textutil.FoldRune(y) {
		return foldedSubstitutionCost
	}
	return 1
}
