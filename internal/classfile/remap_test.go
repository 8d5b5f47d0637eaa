package classfile_test

import (
	"encoding/binary"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-remapper/internal/classfile"
	"class-remapper/internal/classfile/classtest"
)

// mapRemapper renames through plain maps keyed by "owner.name:desc".
type mapRemapper struct {
	classes map[string]string
	fields  map[string]string
	methods map[string]string
	refs    []classfile.MemberRef
}

func (m *mapRemapper) MapClass(name string) string {
	if v, ok := m.classes[name]; ok {
		return v
	}

	return name
}

func (m *mapRemapper) MapFieldName(ref classfile.MemberRef) string {
	m.refs = append(m.refs, ref)
	if v, ok := m.fields[ref.Owner+"."+ref.Name+":"+ref.Desc]; ok {
		return v
	}

	return ref.Name
}

func (m *mapRemapper) MapMethodName(ref classfile.MemberRef) string {
	m.refs = append(m.refs, ref)
	if v, ok := m.methods[ref.Owner+"."+ref.Name+":"+ref.Desc]; ok {
		return v
	}

	return ref.Name
}

func newMapRemapper() *mapRemapper {
	return &mapRemapper{
		classes: map[string]string{"a/b/C": "x/y/Z", "a/b/Helper": "x/y/Aid", "a/b/C$Inner": "x/y/Z$Nested"},
		fields:  map[string]string{"a/b/C.foo:I": "bar", "a/b/Helper.count:La/b/C;": "total"},
		methods: map[string]string{"a/b/Helper.help:(La/b/C;)V": "assist", "a/b/C.run:()V": "go"},
	}
}

// refs lists every field and method reference entry as "owner.name:desc".
func refs(t *testing.T, cf *classfile.ClassFile) []string {
	t.Helper()

	var out []string

	for _, c := range cf.Pool.Entries() {
		switch c.Tag {
		case classfile.TagFieldref, classfile.TagMethodref, classfile.TagInterfaceMethodref:
			owner, err := cf.Pool.ClassName(c.A)
			require.NoError(t, err)

			name, desc, err := cf.Pool.NameAndType(c.B)
			require.NoError(t, err)

			out = append(out, owner+"."+name+":"+desc)
		}
	}

	return out
}

func remapped(t *testing.T, b *classtest.Builder, r classfile.Remapper, opts classfile.Options) *classfile.ClassFile {
	t.Helper()

	cf := b.ClassFile()
	require.NoError(t, cf.Remap(r, opts))

	data, err := cf.Bytes()
	require.NoError(t, err)

	out, err := classfile.Parse(data)
	require.NoError(t, err)

	return out
}

func TestRemapRenamesDeclarationsAndReferences(t *testing.T) {
	b := classtest.New("a/b/C", "java/lang/Object", "a/b/Helper")
	b.Pool().AddString("foo")
	b.Field(classfile.AccPrivate, "foo", "I")
	b.Field(0, "self", "La/b/C;")
	b.Method(classfile.AccPublic, "<init>", "()V",
		[]byte{classtest.ALoad0},
		b.MethodInsn(classtest.InvokeSpecial, "java/lang/Object", "<init>", "()V"),
		[]byte{classtest.Return},
	)
	b.Method(classfile.AccPublic, "run", "()V",
		[]byte{classtest.ALoad0},
		b.FieldInsn(classtest.GetField, "a/b/C", "foo", "I"),
		b.FieldInsn(classtest.GetStatic, "a/b/Helper", "count", "La/b/C;"),
		b.MethodInsn(classtest.InvokeInterface, "a/b/Helper", "help", "(La/b/C;)V"),
		[]byte{classtest.Return},
	)

	r := newMapRemapper()
	cf := remapped(t, b, r, classfile.Options{})

	assert.Equal(t, "x/y/Z", cf.Name())
	assert.Equal(t, []string{"x/y/Aid"}, cf.Interfaces())
	assert.Equal(t, []classfile.Member{
		{Access: classfile.AccPrivate, Name: "bar", Desc: "I"},
		{Access: 0, Name: "self", Desc: "Lx/y/Z;"},
	}, cf.Fields())
	assert.Equal(t, []classfile.Member{
		{Access: classfile.AccPublic, Name: "<init>", Desc: "()V"},
		{Access: classfile.AccPublic, Name: "go", Desc: "()V"},
	}, cf.Methods())

	assert.ElementsMatch(t, []string{
		"java/lang/Object.<init>:()V",
		"x/y/Z.bar:I",
		"x/y/Aid.total:Lx/y/Z;",
		"x/y/Aid.assist:(Lx/y/Z;)V",
	}, refs(t, cf))

	var literal string

	for _, c := range cf.Pool.Entries() {
		if c.Tag == classfile.TagString {
			literal, _ = cf.Pool.UTF8(c.A)
		}
	}

	assert.Equal(t, "foo", literal, "string literals sharing a renamed name keep their text")

	var declared, referenced int

	for _, ref := range r.refs {
		if ref.Declared {
			declared++
		} else {
			referenced++
		}
	}

	assert.Equal(t, 3, declared, "two fields and run; <init> is never offered")
	assert.Equal(t, 3, referenced)
}

func TestRemapIdentityKeepsBytes(t *testing.T) {
	b := classtest.New("q/Untouched", "java/lang/Object")
	b.Field(0, "v", "J")
	b.SourceFile("Untouched.java")
	data := b.Bytes()

	cf, err := classfile.Parse(data)
	require.NoError(t, err)
	require.NoError(t, cf.Remap(newMapRemapper(), classfile.Options{KeepSource: true}))

	out, err := cf.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestRemapSourceAttributes(t *testing.T) {
	build := func() *classtest.Builder {
		b := classtest.New("a/b/C", "java/lang/Object")
		b.SourceFile("C.java")
		b.ClassAttr(b.Attr(classfile.AttrSourceDebugExtension, []byte("SMAP")))

		return b
	}

	stripped := remapped(t, build(), newMapRemapper(), classfile.Options{})
	assert.Empty(t, stripped.Attributes)

	kept := remapped(t, build(), newMapRemapper(), classfile.Options{KeepSource: true})
	require.Len(t, kept.Attributes, 2)

	a, ok := kept.FindAttribute(kept.Attributes, classfile.AttrSourceFile)
	require.True(t, ok)

	name, err := kept.Pool.UTF8(binary.BigEndian.Uint16(a.Data))
	require.NoError(t, err)
	assert.Equal(t, "C.java", name)
}

func TestRemapSignatureAndInnerClasses(t *testing.T) {
	b := classtest.New("a/b/C$Inner", "java/lang/Object")
	b.ClassAttr(b.UTF8Attr(classfile.AttrSignature, "Ljava/lang/Object;Ljava/lang/Comparable<La/b/C;>;"))
	b.InnerClass("a/b/C$Inner", "a/b/C", "Inner", classfile.AccPublic|classfile.AccStatic)
	b.InnerClass("a/b/C$Other", "a/b/C", "Other", 0)
	b.InnerClass("a/b/C$1", "", "", 0)
	b.Field(0, "items", "Ljava/util/List;", b.UTF8Attr(classfile.AttrSignature, "Ljava/util/List<La/b/C;>;"))

	cf := remapped(t, b, newMapRemapper(), classfile.Options{})

	assert.Equal(t, "x/y/Z$Nested", cf.Name())

	sig, ok := cf.FindAttribute(cf.Attributes, classfile.AttrSignature)
	require.True(t, ok)

	text, err := cf.Pool.UTF8(binary.BigEndian.Uint16(sig.Data))
	require.NoError(t, err)
	assert.Equal(t, "Ljava/lang/Object;Ljava/lang/Comparable<Lx/y/Z;>;", text)

	fieldSig, ok := cf.FindAttribute(cf.FieldInfos[0].Attributes, classfile.AttrSignature)
	require.True(t, ok)

	text, err = cf.Pool.UTF8(binary.BigEndian.Uint16(fieldSig.Data))
	require.NoError(t, err)
	assert.Equal(t, "Ljava/util/List<Lx/y/Z;>;", text)

	inner, ok := cf.FindAttribute(cf.Attributes, classfile.AttrInnerClasses)
	require.True(t, ok)

	type record struct{ inner, outer, simple string }

	var got []record

	for i := 0; i < int(binary.BigEndian.Uint16(inner.Data)); i++ {
		off := 2 + i*8
		rec := record{}
		rec.inner, _ = cf.Pool.ClassName(binary.BigEndian.Uint16(inner.Data[off:]))

		if idx := binary.BigEndian.Uint16(inner.Data[off+2:]); idx != 0 {
			rec.outer, _ = cf.Pool.ClassName(idx)
		}

		if idx := binary.BigEndian.Uint16(inner.Data[off+4:]); idx != 0 {
			rec.simple, _ = cf.Pool.UTF8(idx)
		}

		got = append(got, rec)
	}

	assert.Equal(t, []record{
		{"x/y/Z$Nested", "x/y/Z", "Nested"},
		{"a/b/C$Other", "x/y/Z", "Other"},
		{"a/b/C$1", "", ""},
	}, got)
}

func TestRemapPoolOverflow(t *testing.T) {
	b := classtest.New("a/b/C", "java/lang/Object")

	for i := 0; b.Pool().Count() < classfile.MaxPoolSize-1; i++ {
		b.Pool().AddUTF8(strconv.Itoa(i))
	}

	cf := b.ClassFile()
	require.LessOrEqual(t, cf.Pool.Count(), classfile.MaxPoolSize)

	err := cf.Remap(&mapRemapper{classes: map[string]string{"a/b/C": "x/y/Z", "java/lang/Object": "x/y/Base"}},
		classfile.Options{})
	require.ErrorIs(t, err, classfile.ErrFormat)
}
