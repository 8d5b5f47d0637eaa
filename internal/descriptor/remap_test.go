package descriptor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemap(t *testing.T) {
	upper := func(s string) string { return strings.ToUpper(s) }

	tests := []struct {
		in   string
		want string
	}{
		{"I", "I"},
		{"La/b;", "LA/B;"},
		{"[[La/b;", "[[LA/B;"},
		{"(ILa/b;[Lc;)Ld;", "(ILA/B;[LC;)LD;"},
		{"()V", "()V"},
		{"(La/b", "(La/b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Remap(tt.in, upper))
		})
	}
}

func TestRemapType(t *testing.T) {
	mapper := func(s string) string {
		if s == "a/B" {
			return "x/Y"
		}

		return s
	}

	assert.Equal(t, "x/Y", RemapType("a/B", mapper))
	assert.Equal(t, "[Lx/Y;", RemapType("[La/B;", mapper))
	assert.Equal(t, "[I", RemapType("[I", mapper))
	assert.True(t, IsMethod("()V"))
	assert.False(t, IsMethod("I"))
	assert.Equal(t, "new", ToNewNames.String())
}
