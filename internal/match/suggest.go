package match

import (
	"sort"
	"strings"
)

// MinSimilarity is the score a candidate needs to be suggested.
const MinSimilarity = 0.6

// DefaultLimit caps the suggestions attached to one diagnostic.
const DefaultLimit = 3

// Score rates how likely candidate is the name the user meant by name.
// Both are compared lower-cased, whole and by last segment; the better of
// the two wins.
func Score(name, candidate string) float64 {
	a, b := strings.ToLower(name), strings.ToLower(candidate)

	return max(Similarity(a, b), Similarity(lastSegment(a), lastSegment(b)))
}

// Suggest returns up to limit candidates scoring at least MinSimilarity,
// best first. Ties are broken by name so the result is stable. An exact
// match of name is never suggested.
func Suggest(name string, candidates []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	type scored struct {
		name  string
		score float64
	}

	seen := make(map[string]struct{}, len(candidates))

	var ranked []scored

	for _, c := range candidates {
		if c == name {
			continue
		}

		if _, dup := seen[c]; dup {
			continue
		}

		seen[c] = struct{}{}

		if s := Score(name, c); s >= MinSimilarity {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].name < ranked[j].name
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for i := 0; i < len(ranked) && i < limit; i++ {
		out = append(out, ranked[i].name)
	}

	return out
}

func lastSegment(name string) string {
	if i := strings.LastIndexAny(name, "/.$"); i >= 0 {
		return name[i+1:]
	}

	return name
}
