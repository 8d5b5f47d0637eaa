package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"hello", "hello", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"a", "ab", 1},
		{"abc", "ab", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Hello", "hello", 1},
		{"a/b/Foo", "a/b/Fop", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 2.0/3.0, Similarity("abc", "abd"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}

func TestScore(t *testing.T) {
	assert.InDelta(t, 1.0, Score("foo", "FOO"), 1e-9)
	assert.InDelta(t, 1.0, Score("a/b/Foo", "x/y/Foo"), 1e-9, "same simple name in another package")
	assert.InDelta(t, 1.0, Score("a.b.Foo", "x/y/Foo"), 1e-9)
	assert.Less(t, Score("a/b/Foo", "a/b/Bar"), MinSimilarity)
}

func TestSuggest(t *testing.T) {
	candidates := []string{"x/y/Foo", "a/b/Bar", "a/b/Fop", "zzz", "x/y/Foo", "a/b/Foo"}

	assert.Equal(t, []string{"x/y/Foo", "a/b/Fop"}, Suggest("a/b/Foo", candidates, 0))
	assert.Equal(t, []string{"x/y/Foo"}, Suggest("a/b/Foo", candidates, 1))
	assert.Empty(t, Suggest("q/Unrelated", candidates, 3))
	assert.Empty(t, Suggest("a/b/Foo", nil, 3))
}

func TestSuggestTiesAreSortedByName(t *testing.T) {
	got := Suggest("Foo", []string{"p/Foo", "a/Foo", "m/Foo"}, 5)

	assert.Equal(t, []string{"a/Foo", "m/Foo", "p/Foo"}, got)
}
