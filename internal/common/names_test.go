package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalName(t *testing.T) {
	assert.Equal(t, "a/b/C", InternalName("a.b.C"))
	assert.Equal(t, "a/b/C$D", InternalName("a.b.C$D"))
	assert.Equal(t, "a/b/C", InternalName("a/b/C"))
	assert.Equal(t, "a.b.C", DottedName("a/b/C"))
}

func TestSplitInner(t *testing.T) {
	tests := []struct {
		name  string
		outer string
		inner string
		ok    bool
	}{
		{"a/Outer$Inner", "a/Outer", "Inner", true},
		{"a/Outer$Mid$Inner", "a/Outer$Mid", "Inner", true},
		{"a/Outer", "", "", false},
		{"$Lead", "", "", false},
		{"Trail$", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outer, inner, ok := SplitInner(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.outer, outer)
			assert.Equal(t, tt.inner, inner)
		})
	}
}

func TestNestedSuffix(t *testing.T) {
	assert.Equal(t, "Inner", NestedSuffix("x/Outer2", "x/Outer2$Inner"))
	assert.Equal(t, "Mid$Inner", NestedSuffix("x/Outer2", "x/Outer2$Mid$Inner"))
	assert.Equal(t, "Cell", NestedSuffix("x/Outer2", "y/Other$Cell"))
	assert.Equal(t, "Top", NestedSuffix("x/Outer2", "y/Top"))
}

func TestClassEntryName(t *testing.T) {
	name, ok := ClassEntryName("a/b/C.class")
	assert.True(t, ok)
	assert.Equal(t, "a/b/C", name)

	_, ok = ClassEntryName("data.txt")
	assert.False(t, ok)

	_, ok = ClassEntryName(".class")
	assert.False(t, ok)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
}
