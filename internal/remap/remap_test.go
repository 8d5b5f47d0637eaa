package remap

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"class-remapper/internal/classfile"
	"class-remapper/internal/classfile/classtest"
	"class-remapper/internal/container"
	"class-remapper/internal/mapping"
)

const sampleMapping = `
class a.b.C -> x.y.Z {
    int foo -> bar;
    void touch(a.b.C) -> poke;
}
class a.Base {
    long counter -> ticks;
}
`

var payload = bytes.Repeat([]byte("opaque resource bytes\n"), 32)

type fixture struct {
	dir     string
	input   string
	mapping string
	library string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		dir:     dir,
		input:   filepath.Join(dir, "in.jar"),
		mapping: filepath.Join(dir, "rules.map"),
		library: filepath.Join(dir, "lib.jar"),
	}

	require.NoError(t, os.WriteFile(f.mapping, []byte(sampleMapping), 0o644))

	c := classtest.New("a/b/C", "java/lang/Object")
	c.Field(0, "foo", "I")
	c.Method(classfile.AccPublic, "read", "()I",
		[]byte{classtest.ALoad0},
		c.FieldInsn(classtest.GetField, "a/b/C", "foo", "I"),
		[]byte{classtest.IReturn},
	)
	c.Method(classfile.AccPublic, "touch", "(La/b/C;)V", []byte{classtest.Return})

	derived := classtest.New("a/Derived", "a/Base")
	derived.Method(classfile.AccPublic, "tick", "()V",
		[]byte{classtest.ALoad0},
		derived.FieldInsn(classtest.GetField, "a/Derived", "counter", "J"),
		[]byte{classtest.Return},
	)

	require.NoError(t, classtest.WriteJar(f.input,
		classtest.Entry{Name: "META-INF/"},
		classtest.Entry{Name: "a/b/C.class", Data: c.Bytes()},
		classtest.Entry{Name: "data.txt", Data: payload},
		classtest.Entry{Name: "a/Derived.class", Data: derived.Bytes()},
	))

	base := classtest.New("a/Base", "java/lang/Object")
	base.Field(classfile.AccProtected, "counter", "J")
	require.NoError(t, classtest.WriteJar(f.library, classtest.Entry{Name: "a/Base.class", Data: base.Bytes()}))

	return f
}

func (f *fixture) options(t *testing.T, output string) Options {
	return Options{
		Input:     f.input,
		Output:    filepath.Join(f.dir, output),
		Mappings:  []string{f.mapping},
		Libraries: []string{f.library},
		Jobs:      4,
		Logger:    zaptest.NewLogger(t),
	}
}

type entry struct {
	name     string
	modified time.Time
	data     []byte
	raw      []byte
}

func readJar(t *testing.T, path string) []entry {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)

	defer zr.Close()

	var out []entry

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		rr, err := f.OpenRaw()
		require.NoError(t, err)
		raw, err := io.ReadAll(rr)
		require.NoError(t, err)

		out = append(out, entry{name: f.Name, modified: f.Modified, data: data, raw: raw})
	}

	return out
}

func find(entries []entry, name string) (entry, bool) {
	for _, e := range entries {
		if e.name == name {
			return e, true
		}
	}

	return entry{}, false
}

func names(entries []entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.name)
	}

	return out
}

func memberRefs(t *testing.T, cf *classfile.ClassFile) []string {
	t.Helper()

	var out []string

	for _, c := range cf.Pool.Entries() {
		if c.Tag != classfile.TagFieldref && c.Tag != classfile.TagMethodref {
			continue
		}

		owner, err := cf.Pool.ClassName(c.A)
		require.NoError(t, err)

		name, desc, err := cf.Pool.NameAndType(c.B)
		require.NoError(t, err)

		out = append(out, owner+"."+name+":"+desc)
	}

	return out
}

func TestRunEndToEnd(t *testing.T) {
	f := newFixture(t)
	opts := f.options(t, "out.jar")

	report, err := Run(context.Background(), opts)
	require.NoError(t, err, spew.Sdump(report))

	assert.Equal(t, 2, report.Classes)
	assert.Equal(t, 1, report.Renamed)
	assert.Equal(t, 1, report.Resources)
	assert.Equal(t, 1, report.Libraries)
	assert.False(t, report.Diagnostics.HasErrors())

	out := readJar(t, opts.Output)
	assert.Equal(t, []string{"data.txt", "x/y/Z.class", "a/Derived.class"}, names(out))

	for _, e := range out {
		assert.True(t, e.modified.Equal(container.FixedTime), e.name)
	}

	data, ok := find(out, "data.txt")
	require.True(t, ok)
	assert.Equal(t, payload, data.data)

	in := readJar(t, f.input)
	orig, _ := find(in, "data.txt")
	assert.Equal(t, orig.raw, data.raw, "resources are copied without recompression")

	z, ok := find(out, "x/y/Z.class")
	require.True(t, ok)

	cf, err := classfile.Parse(z.data)
	require.NoError(t, err)
	assert.Equal(t, "x/y/Z", cf.Name())
	assert.Equal(t, "java/lang/Object", cf.SuperName())
	assert.Equal(t, []classfile.Member{{Name: "bar", Desc: "I"}}, cf.Fields())
	assert.Equal(t, []classfile.Member{
		{Access: classfile.AccPublic, Name: "read", Desc: "()I"},
		{Access: classfile.AccPublic, Name: "poke", Desc: "(Lx/y/Z;)V"},
	}, cf.Methods())
	assert.Equal(t, []string{"x/y/Z.bar:I"}, memberRefs(t, cf))

	d, ok := find(out, "a/Derived.class")
	require.True(t, ok)

	cf, err = classfile.Parse(d.data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/Derived.ticks:J"}, memberRefs(t, cf),
		"inherited field resolved through library metadata")

	_, err = os.Stat(f.input)
	require.NoError(t, err, "input is left in place")
}

func TestRunIsDeterministic(t *testing.T) {
	f := newFixture(t)

	first := f.options(t, "one.jar")
	_, err := Run(context.Background(), first)
	require.NoError(t, err)

	second := f.options(t, "two.jar")
	second.Jobs = 1
	_, err = Run(context.Background(), second)
	require.NoError(t, err)

	a, err := os.ReadFile(first.Output)
	require.NoError(t, err)

	b, err := os.ReadFile(second.Output)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRunResourceOnlyContainer(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, classtest.WriteJar(f.input,
		classtest.Entry{Name: "a.txt", Data: []byte("alpha")},
		classtest.Entry{Name: "nested/b.bin", Data: payload},
	))

	opts := f.options(t, "out.jar")
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	in, out := readJarsRaw(t, f.input, opts.Output)
	assert.Equal(t, in, out)
}

func readJarsRaw(t *testing.T, paths ...string) (map[string][]byte, map[string][]byte) {
	t.Helper()

	var maps []map[string][]byte

	for _, p := range paths {
		m := map[string][]byte{}

		zr, err := zip.OpenReader(p)
		require.NoError(t, err)

		for _, f := range zr.File {
			rr, err := f.OpenRaw()
			require.NoError(t, err)

			raw, err := io.ReadAll(rr)
			require.NoError(t, err)

			m[f.Name] = raw
		}

		require.NoError(t, zr.Close())

		maps = append(maps, m)
	}

	return maps[0], maps[1]
}

func TestRunReverse(t *testing.T) {
	f := newFixture(t)

	forward := f.options(t, "forward.jar")
	_, err := Run(context.Background(), forward)
	require.NoError(t, err)

	back := f.options(t, "back.jar")
	back.Input = forward.Output
	back.Reverse = true
	back.Libraries = nil

	report, err := Run(context.Background(), back)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Renamed)

	out := readJar(t, back.Output)
	c, ok := find(out, "a/b/C.class")
	require.True(t, ok, spew.Sdump(names(out)))

	cf, err := classfile.Parse(c.data)
	require.NoError(t, err)
	assert.Equal(t, []classfile.Member{{Name: "foo", Desc: "I"}}, cf.Fields())
	assert.Equal(t, []string{"a/b/C.foo:I"}, memberRefs(t, cf))
}

func TestRunToleratesBrokenLibraries(t *testing.T) {
	f := newFixture(t)
	broken := filepath.Join(f.dir, "broken.jar")
	require.NoError(t, os.WriteFile(broken, []byte("garbage"), 0o644))

	opts := f.options(t, "out.jar")
	opts.Libraries = []string{broken, filepath.Join(f.dir, "missing.jar")}

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, report.Diagnostics.Warnings, 2)
	assert.Equal(t, 0, report.Libraries)

	d, ok := find(readJar(t, opts.Output), "a/Derived.class")
	require.True(t, ok)

	cf, err := classfile.Parse(d.data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/Derived.ticks:J"}, memberRefs(t, cf),
		"the superclass rule applies without library metadata")
}

func TestRunAncestorRuleNeedsLibraryMetadata(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.mapping, []byte(`
class a.Root {
    long counter -> ticks;
}
`), 0o644))

	root := classtest.New("a/Root", "java/lang/Object")
	root.Field(classfile.AccProtected, "counter", "J")
	base := classtest.New("a/Base", "a/Root")
	require.NoError(t, classtest.WriteJar(f.library,
		classtest.Entry{Name: "a/Base.class", Data: base.Bytes()},
		classtest.Entry{Name: "a/Root.class", Data: root.Bytes()},
	))

	broken := filepath.Join(f.dir, "broken.jar")
	require.NoError(t, os.WriteFile(broken, []byte("garbage"), 0o644))

	derivedRefs := func(opts Options) []string {
		t.Helper()

		_, err := Run(context.Background(), opts)
		require.NoError(t, err)

		d, ok := find(readJar(t, opts.Output), "a/Derived.class")
		require.True(t, ok)

		cf, err := classfile.Parse(d.data)
		require.NoError(t, err)

		return memberRefs(t, cf)
	}

	assert.Equal(t, []string{"a/Derived.ticks:J"}, derivedRefs(f.options(t, "full.jar")),
		"a/Root is reached through the library's a/Base")

	degraded := f.options(t, "degraded.jar")
	degraded.Libraries = []string{broken}
	assert.Equal(t, []string{"a/Derived.counter:J"}, derivedRefs(degraded),
		"without a/Base metadata the walk stops before a/Root")
}

func TestRunDuplicateOutputName(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, classtest.WriteJar(f.input,
		classtest.Entry{Name: "a/b/C.class", Data: classtest.New("a/b/C", "java/lang/Object").Bytes()},
		classtest.Entry{Name: "x/y/Z.class", Data: classtest.New("x/y/Z", "java/lang/Object").Bytes()},
	))

	opts := f.options(t, "out.jar")
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.Len(t, report.Diagnostics.Warnings, 1)
	assert.Equal(t, "duplicate_entry", report.Diagnostics.Warnings[0].Code)
	assert.Equal(t, []string{"x/y/Z.class"}, names(readJar(t, opts.Output)))
}

func TestRunErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		f := newFixture(t)
		opts := f.options(t, "out.jar")
		opts.Input = filepath.Join(f.dir, "absent.jar")

		_, err := Run(context.Background(), opts)
		require.ErrorIs(t, err, ErrPrimaryRead)

		_, err = os.Stat(opts.Output)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("corrupt class", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, classtest.WriteJar(f.input, classtest.Entry{Name: "a/Bad.class", Data: []byte{0xCA, 0xFE}}))

		opts := f.options(t, "out.jar")
		_, err := Run(context.Background(), opts)
		require.ErrorIs(t, err, ErrPrimaryRead)
		require.ErrorIs(t, err, classfile.ErrFormat)

		leftovers, err := filepath.Glob(filepath.Join(f.dir, "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("unwritable output", func(t *testing.T) {
		f := newFixture(t)
		opts := f.options(t, filepath.Join("no", "such", "dir", "out.jar"))

		_, err := Run(context.Background(), opts)
		require.ErrorIs(t, err, ErrOutputWrite)
	})

	t.Run("malformed mapping", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.WriteFile(f.mapping, []byte("class a.A { int x -> ; }"), 0o644))

		_, err := Run(context.Background(), f.options(t, "out.jar"))
		require.ErrorIs(t, err, mapping.ErrMalformed)
	})
}
