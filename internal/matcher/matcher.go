// Package matcher resolves free-text note references against note titles
// using a tiered strategy: exact, then substring, then fuzzy.
package matcher

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/starford/notechat/internal/models"
)

// DefaultLimit caps the number of matches returned when Options.Limit is unset.
const DefaultLimit = 10

// maxDistance is the absolute ceiling for the fuzzy tier's edit distance.
const maxDistance = 2

// Type names the tier that produced a result.
type Type string

const (
	TypeExact     Type = "exact"
	TypeSubstring Type = "substring"
	TypeFuzzy     Type = "fuzzy"
	TypeNone      Type = "none"
)

// Options controls a search.
type Options struct {
	// Deleted selects the soft-deleted partition instead of the live one.
	Deleted bool
	// Limit caps the returned matches after ranking. Zero means DefaultLimit.
	Limit int
}

// Result is the outcome of a search. Matches keep candidate order within a
// tier; fuzzy matches are ordered by ascending distance first.
type Result struct {
	Matches []models.Note
	Type    Type
}

// Normalize case-folds s and collapses its whitespace. Two titles are an
// exact match when their normalized forms are equal.
func Normalize(s string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// Search matches query against the titles of candidates in the partition
// selected by opts. Candidates are expected in store order (newest first);
// that order breaks ties.
func Search(candidates []models.Note, query string, opts Options) Result {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := Normalize(query)
	if q == "" {
		return Result{Type: TypeNone}
	}

	pool := make([]models.Note, 0, len(candidates))
	for _, n := range candidates {
		if n.IsDeleted == opts.Deleted {
			pool = append(pool, n)
		}
	}

	// Tier 1: normalized equality. % and _ in the query are literal.
	var exact []models.Note
	for _, n := range pool {
		if Normalize(n.Title) == q {
			exact = append(exact, n)
		}
	}
	if len(exact) > 0 {
		return Result{Matches: truncate(exact, limit), Type: TypeExact}
	}

	// Tier 2: containment.
	var sub []models.Note
	for _, n := range pool {
		if strings.Contains(Normalize(n.Title), q) {
			sub = append(sub, n)
		}
	}
	if len(sub) > 0 {
		return Result{Matches: truncate(sub, limit), Type: TypeSubstring}
	}

	// Tier 3: bounded edit distance.
	threshold := min(maxDistance, len([]rune(q))/3)
	if threshold == 0 {
		return Result{Type: TypeNone}
	}
	type scored struct {
		note models.Note
		dist int
	}
	var fuzzy []scored
	for _, n := range pool {
		if d := Distance(q, Normalize(n.Title)); d <= threshold {
			fuzzy = append(fuzzy, scored{note: n, dist: d})
		}
	}
	if len(fuzzy) == 0 {
		return Result{Type: TypeNone}
	}
	sort.SliceStable(fuzzy, func(i, j int) bool { return fuzzy[i].dist < fuzzy[j].dist })
	out := make([]models.Note, len(fuzzy))
	for i, s := range fuzzy {
		out[i] = s.note
	}
	return Result{Matches: truncate(out, limit), Type: TypeFuzzy}
}

// Distance is the smallest edit distance between query and either the whole
// title or any run of consecutive title words as long as the query.
// Both arguments are expected to be normalized.
func Distance(query, title string) int {
	best := levenshtein.ComputeDistance(query, title)

	qWords := strings.Fields(query)
	tWords := strings.Fields(title)
	n := len(qWords)
	if n == 0 || n >= len(tWords) {
		return best
	}
	for i := 0; i+n <= len(tWords); i++ {
		window := strings.Join(tWords[i:i+n], " ")
		if d := levenshtein.ComputeDistance(query, window); d < best {
			best = d
		}
	}
	return best
}

func truncate(notes []models.Note, limit int) []models.Note {
	if len(notes) > limit {
		return notes[:limit]
	}
	return notes
}
