package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"class-remapper/internal/classfile"
	"class-remapper/internal/classfile/classtest"
)

func jar(t *testing.T, dir, name string, classes ...*classtest.Builder) string {
	t.Helper()

	var entries []classtest.Entry

	for _, b := range classes {
		cf := b.ClassFile()
		entries = append(entries, classtest.Entry{Name: cf.Name() + ".class", Data: b.Bytes()})
	}

	entries = append(entries, classtest.Entry{Name: "README", Data: []byte("not a class")})

	path := filepath.Join(dir, name)
	require.NoError(t, classtest.WriteJar(path, entries...))

	return path
}

func TestFromClass(t *testing.T) {
	b := classtest.New("a/Derived", "a/Base", "a/IFace", "a/Other")
	b.Field(classfile.AccPrivate, "secret", "I")
	b.Method(classfile.AccPublic|classfile.AccStatic, "make", "()La/Derived;")

	md := FromClass(b.ClassFile())

	assert.Equal(t, &ClassMetadata{
		Name:       "a/Derived",
		SuperName:  "a/Base",
		Interfaces: []string{"a/IFace", "a/Other"},
		Access:     classfile.AccPublic | classfile.AccSuper,
		Fields:     []Member{{Name: "secret", Desc: "I", Access: classfile.AccPrivate}},
		Methods:    []Member{{Name: "make", Desc: "()La/Derived;", Access: classfile.AccPublic | classfile.AccStatic}},
	}, md)

	m, ok := md.Member("make", "()La/Derived;", true)
	assert.True(t, ok)
	assert.Equal(t, "make", m.Name)

	_, ok = md.Member("make", "()La/Derived;", false)
	assert.False(t, ok)
}

func TestStore(t *testing.T) {
	s := NewStore()
	s.Put(&ClassMetadata{Name: "a/B", Fields: []Member{{Name: "x", Desc: "I", Access: classfile.AccStatic}}})
	s.Put(&ClassMetadata{Name: "a/A"})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a/A", "a/B"}, s.Names())

	access, ok := s.Member("a/B", "x", "I", false)
	assert.True(t, ok)
	assert.Equal(t, uint16(classfile.AccStatic), access)

	_, ok = s.Member("a/C", "x", "I", false)
	assert.False(t, ok)

	s.Put(&ClassMetadata{Name: "a/B", SuperName: "a/A"})

	md, ok := s.Get("a/B")
	require.True(t, ok)
	assert.Equal(t, "a/A", md.SuperName)

	s.Reset()
	assert.Zero(t, s.Len())
}

func TestLoadContainer(t *testing.T) {
	path := jar(t, t.TempDir(), "app.jar",
		classtest.New("a/Base", "java/lang/Object"),
		classtest.New("a/Derived", "a/Base"))

	s := NewStore()
	n, err := s.LoadContainer(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	md, ok := s.Get("a/Derived")
	require.True(t, ok)
	assert.Equal(t, "a/Base", md.SuperName)
}

func TestLoadLibrariesToleratesFailures(t *testing.T) {
	dir := t.TempDir()
	first := jar(t, dir, "1-first.jar", classtest.New("lib/Shared", "lib/One"), classtest.New("lib/OnlyFirst", "java/lang/Object"))
	second := jar(t, dir, "2-second.jar", classtest.New("lib/Shared", "lib/Two"))

	corrupt := filepath.Join(dir, "3-corrupt.jar")
	require.NoError(t, os.WriteFile(corrupt, []byte("PK not really"), 0o644))

	missing := filepath.Join(dir, "4-missing.jar")

	s := NewStore()
	diags, err := s.LoadLibraries(context.Background(), []string{first, second, corrupt, missing}, LoadOptions{
		Jobs:   4,
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	require.Len(t, diags.Warnings, 2)
	assert.Equal(t, corrupt, diags.Warnings[0].Subject)
	assert.Equal(t, missing, diags.Warnings[1].Subject)
	assert.False(t, diags.HasErrors())

	md, ok := s.Get("lib/Shared")
	require.True(t, ok)
	assert.Equal(t, "lib/Two", md.SuperName, "later libraries win")

	_, ok = s.Get("lib/OnlyFirst")
	assert.True(t, ok)
}

func TestLoadLibrariesCancelled(t *testing.T) {
	path := jar(t, t.TempDir(), "lib.jar", classtest.New("lib/A", "java/lang/Object"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().LoadLibraries(ctx, []string{path}, LoadOptions{Jobs: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFindLibraries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))

	for _, name := range []string{"b.jar", "a.ZIP", "notes.txt", "nested/c.jar"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	libs, err := FindLibraries(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.ZIP"),
		filepath.Join(dir, "b.jar"),
		filepath.Join(dir, "nested", "c.jar"),
	}, libs)

	_, err = FindLibraries(filepath.Join(dir, "absent"))
	require.Error(t, err)

	_, err = FindLibraries(filepath.Join(dir, "b.jar"))
	require.Error(t, err)
}
