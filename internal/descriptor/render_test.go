package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-remapper/internal/mapping"
)

// fakeNames is a two-way name table for tests.
type fakeNames map[string]string

func (f fakeNames) Map(name string) string {
	if v, ok := f[name]; ok {
		return v
	}

	return name
}

func (f fakeNames) Unmap(name string) string {
	for k, v := range f {
		if v == name {
			return k
		}
	}

	return name
}

func TestRenderPrimitives(t *testing.T) {
	for keyword, code := range map[string]string{
		"boolean": "Z", "byte": "B", "char": "C", "short": "S",
		"int": "I", "long": "J", "float": "F", "double": "D",
	} {
		got, err := Render(mapping.Primitive{Name: keyword}, ToNewNames, nil)
		require.NoError(t, err)
		assert.Equal(t, code, got, keyword)
	}
}

func TestRenderDirections(t *testing.T) {
	names := fakeNames{"a/b/C": "x/y/Z"}

	typ := mapping.ArrayType{Elem: mapping.ClassType{Name: "a.b.C"}}

	got, err := Render(typ, ToNewNames, names)
	require.NoError(t, err)
	assert.Equal(t, "[Lx/y/Z;", got)

	// The old name is already old; Unmap leaves it alone.
	got, err = Render(typ, ToOldNames, names)
	require.NoError(t, err)
	assert.Equal(t, "[La/b/C;", got)

	// Written in the new naming, it renders back to the old one.
	got, err = Render(mapping.ClassType{Name: "x.y.Z"}, ToOldNames, names)
	require.NoError(t, err)
	assert.Equal(t, "La/b/C;", got)

	got, err = Render(mapping.ClassType{Name: "q.R"}, ToNewNames, names)
	require.NoError(t, err)
	assert.Equal(t, "Lq/R;", got)
}

func TestRenderMethod(t *testing.T) {
	names := fakeNames{"a/b/C": "x/y/Z"}
	params := []mapping.Type{
		mapping.Primitive{Name: "int"},
		mapping.ArrayType{Elem: mapping.ArrayType{Elem: mapping.ClassType{Name: "java.lang.String"}}},
		mapping.ClassType{Name: "a.b.C"},
	}

	got, err := RenderMethod(params, nil, ToNewNames, names)
	require.NoError(t, err)
	assert.Equal(t, "(I[[Ljava/lang/String;Lx/y/Z;)V", got)

	got, err = RenderMethod(nil, mapping.ClassType{Name: "a.b.C"}, ToOldNames, names)
	require.NoError(t, err)
	assert.Equal(t, "()La/b/C;", got)
}

func TestRenderMalformed(t *testing.T) {
	tests := []struct {
		name string
		typ  mapping.Type
	}{
		{"unknown primitive", mapping.Primitive{Name: "integer"}},
		{"array without element", mapping.ArrayType{}},
		{"nil", nil},
		{"empty class", mapping.ClassType{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.typ, ToNewNames, nil)
			assert.ErrorIs(t, err, ErrMalformedType)
		})
	}

	_, err := RenderMethod([]mapping.Type{mapping.Primitive{Name: "void"}}, nil, ToNewNames, nil)
	require.ErrorIs(t, err, ErrMalformedType)
	assert.Contains(t, err.Error(), "parameter 0")
}
