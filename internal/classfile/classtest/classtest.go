// Package classtest assembles small class files and jars for tests.
package classtest

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"class-remapper/internal/classfile"
)

// Opcodes used by the instruction helpers.
const (
	ALoad0          = 0x2a
	IReturn         = 0xac
	Return          = 0xb1
	GetStatic       = 0xb2
	PutStatic       = 0xb3
	GetField        = 0xb4
	PutField        = 0xb5
	InvokeVirtual   = 0xb6
	InvokeSpecial   = 0xb7
	InvokeStatic    = 0xb8
	InvokeInterface = 0xb9
)

// Builder assembles a class file.
type Builder struct {
	cf    *classfile.ClassFile
	inner []byte
	count uint16
}

// New starts a public class. super may be empty for java/lang/Object
// itself.
func New(name, super string, interfaces ...string) *Builder {
	pool := classfile.NewPool()
	cf := &classfile.ClassFile{
		Major:  52,
		Pool:   pool,
		Access: classfile.AccPublic | classfile.AccSuper,
		This:   pool.AddClass(name),
	}

	if super != "" {
		cf.Super = pool.AddClass(super)
	}

	for _, i := range interfaces {
		cf.Implements = append(cf.Implements, pool.AddClass(i))
	}

	return &Builder{cf: cf}
}

// Access sets the class access flags.
func (b *Builder) Access(flags uint16) *Builder {
	b.cf.Access = flags
	return b
}

// Pool exposes the constant pool being built.
func (b *Builder) Pool() *classfile.Pool {
	return b.cf.Pool
}

// Field declares a field.
func (b *Builder) Field(access uint16, name, desc string, attrs ...classfile.Attribute) *Builder {
	b.cf.FieldInfos = append(b.cf.FieldInfos, classfile.MemberInfo{
		Access:     access,
		NameIndex:  b.cf.Pool.AddUTF8(name),
		DescIndex:  b.cf.Pool.AddUTF8(desc),
		Attributes: attrs,
	})

	return b
}

// Method declares a method. Without code the method gets no Code
// attribute, as an abstract method would.
func (b *Builder) Method(access uint16, name, desc string, code ...[]byte) *Builder {
	m := classfile.MemberInfo{
		Access:    access,
		NameIndex: b.cf.Pool.AddUTF8(name),
		DescIndex: b.cf.Pool.AddUTF8(desc),
	}

	if len(code) > 0 {
		m.Attributes = append(m.Attributes, b.code(code))
	}

	b.cf.MethodInfos = append(b.cf.MethodInfos, m)

	return b
}

// MethodWith declares a method with explicit attributes.
func (b *Builder) MethodWith(access uint16, name, desc string, attrs ...classfile.Attribute) *Builder {
	b.cf.MethodInfos = append(b.cf.MethodInfos, classfile.MemberInfo{
		Access:     access,
		NameIndex:  b.cf.Pool.AddUTF8(name),
		DescIndex:  b.cf.Pool.AddUTF8(desc),
		Attributes: attrs,
	})

	return b
}

func (b *Builder) code(parts [][]byte) classfile.Attribute {
	var body []byte
	for _, p := range parts {
		body = append(body, p...)
	}

	data := binary.BigEndian.AppendUint16(nil, 4) // max_stack
	data = binary.BigEndian.AppendUint16(data, 4) // max_locals
	data = binary.BigEndian.AppendUint32(data, uint32(len(body)))
	data = append(data, body...)
	data = binary.BigEndian.AppendUint16(data, 0) // exception table
	data = binary.BigEndian.AppendUint16(data, 0) // attributes

	return b.Attr(classfile.AttrCode, data)
}

// Attr builds an attribute whose name is added to the pool.
func (b *Builder) Attr(name string, data []byte) classfile.Attribute {
	return classfile.Attribute{NameIndex: b.cf.Pool.AddUTF8(name), Data: data}
}

// UTF8Attr builds an attribute holding a single Utf8 index, such as
// Signature or SourceFile.
func (b *Builder) UTF8Attr(name, value string) classfile.Attribute {
	return b.Attr(name, binary.BigEndian.AppendUint16(nil, b.cf.Pool.AddUTF8(value)))
}

// ClassAttr adds a class level attribute.
func (b *Builder) ClassAttr(a classfile.Attribute) *Builder {
	b.cf.Attributes = append(b.cf.Attributes, a)
	return b
}

// SourceFile adds a SourceFile attribute.
func (b *Builder) SourceFile(name string) *Builder {
	return b.ClassAttr(b.UTF8Attr(classfile.AttrSourceFile, name))
}

// InnerClass adds a record to the InnerClasses attribute. An empty outer
// or simple name is written as index 0.
func (b *Builder) InnerClass(inner, outer, simple string, access uint16) *Builder {
	pool := b.cf.Pool
	b.inner = binary.BigEndian.AppendUint16(b.inner, pool.AddClass(inner))

	var outerIdx, simpleIdx uint16
	if outer != "" {
		outerIdx = pool.AddClass(outer)
	}

	if simple != "" {
		simpleIdx = pool.AddUTF8(simple)
	}

	b.inner = binary.BigEndian.AppendUint16(b.inner, outerIdx)
	b.inner = binary.BigEndian.AppendUint16(b.inner, simpleIdx)
	b.inner = binary.BigEndian.AppendUint16(b.inner, access)
	b.count++

	return b
}

// FieldInsn returns a field instruction referring to owner.name:desc.
func (b *Builder) FieldInsn(op byte, owner, name, desc string) []byte {
	idx := b.cf.Pool.AddRef(classfile.TagFieldref, owner, name, desc)
	return binary.BigEndian.AppendUint16([]byte{op}, idx)
}

// MethodInsn returns an invoke instruction referring to owner.name:desc.
// InvokeInterface refers to an InterfaceMethodref.
func (b *Builder) MethodInsn(op byte, owner, name, desc string) []byte {
	if op == InvokeInterface {
		idx := b.cf.Pool.AddRef(classfile.TagInterfaceMethodref, owner, name, desc)
		return append(binary.BigEndian.AppendUint16([]byte{op}, idx), 1, 0)
	}

	idx := b.cf.Pool.AddRef(classfile.TagMethodref, owner, name, desc)

	return binary.BigEndian.AppendUint16([]byte{op}, idx)
}

// Bytes encodes the class. It panics if the class cannot be written.
func (b *Builder) Bytes() []byte {
	cf := *b.cf
	cf.Attributes = append([]classfile.Attribute(nil), b.cf.Attributes...)

	if b.count > 0 {
		data := binary.BigEndian.AppendUint16(nil, b.count)
		cf.Attributes = append(cf.Attributes, b.Attr(classfile.AttrInnerClasses, append(data, b.inner...)))
	}

	data, err := cf.Bytes()
	if err != nil {
		panic(fmt.Sprintf("classtest: %v", err))
	}

	return data
}

// ClassFile returns a freshly parsed copy of the class, independent of the
// builder.
func (b *Builder) ClassFile() *classfile.ClassFile {
	cf, err := classfile.Parse(b.Bytes())
	if err != nil {
		panic(fmt.Sprintf("classtest: %v", err))
	}

	return cf
}

// Entry is one jar entry. Entries whose name ends in "/" are directories.
type Entry struct {
	Name string
	Data []byte
}

// WriteJar writes entries, in order, to a new zip file at path.
func WriteJar(path string, entries ...Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)

	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: time.Date(2020, time.March, 4, 5, 6, 8, 0, time.UTC),
		})
		if err != nil {
			f.Close()
			return err
		}

		if _, err := w.Write(e.Data); err != nil {
			f.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
