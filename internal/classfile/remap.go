package classfile

import (
	"encoding/binary"
	"fmt"
	"strings"

	"class-remapper/internal/common"
	"class-remapper/internal/descriptor"
)

// MemberRef identifies a field or method by the names found in the class
// being rewritten.
type MemberRef struct {
	Owner string
	Name  string
	Desc  string
	// Access holds the declared access flags when Declared is set. For
	// references from method bodies it is zero and the implementation is
	// expected to look the declaration up.
	Access   uint16
	Declared bool
}

// Remapper supplies new names during Remap.
type Remapper interface {
	// MapClass translates an internal class name.
	MapClass(name string) string
	// MapFieldName returns the new simple name of a field.
	MapFieldName(ref MemberRef) string
	// MapMethodName returns the new simple name of a method.
	MapMethodName(ref MemberRef) string
}

// Options controls Remap.
type Options struct {
	// KeepSource keeps SourceFile and SourceDebugExtension attributes.
	KeepSource bool
}

// Remap renames every class, field and method the class declares or refers
// to. All lookups use the names of the unmodified class.
func (cf *ClassFile) Remap(r Remapper, opts Options) error {
	rw := &rewriter{
		cf:    cf,
		orig:  cf.Pool.clone(),
		r:     r,
		opts:  opts,
		owner: cf.Name(),
	}

	if err := rw.rewritePool(); err != nil {
		return err
	}

	if err := rw.rewriteMembers(cf.FieldInfos, false); err != nil {
		return err
	}

	if err := rw.rewriteMembers(cf.MethodInfos, true); err != nil {
		return err
	}

	attrs, err := rw.rewriteAttributes(cf.Attributes)
	if err != nil {
		return fmt.Errorf("class %s: %w", rw.owner, err)
	}

	cf.Attributes = attrs

	if n := cf.Pool.Count(); n > MaxPoolSize {
		return fmt.Errorf("%w: class %s needs %d constant pool slots after renaming, limit is %d",
			ErrFormat, rw.owner, n, MaxPoolSize)
	}

	return nil
}

type rewriter struct {
	cf    *ClassFile
	orig  *Pool
	r     Remapper
	opts  Options
	owner string
}

func (rw *rewriter) mapDesc(desc string) string {
	return descriptor.Remap(desc, rw.r.MapClass)
}

func isSpecialMethod(name string) bool {
	return name == ConstructorName || name == StaticInitializerName
}

func (rw *rewriter) memberName(ref MemberRef, method bool) string {
	switch {
	case method && isSpecialMethod(ref.Name):
		return ref.Name
	case strings.HasPrefix(ref.Owner, "["):
		// clone() and length on arrays.
		return ref.Name
	case method:
		return rw.r.MapMethodName(ref)
	default:
		return rw.r.MapFieldName(ref)
	}
}

// rewritePool re-points reference entries at appended entries. Only the
// entries of the original pool are visited.
func (rw *rewriter) rewritePool() error {
	pool := rw.cf.Pool
	entries := rw.orig.entries

	for i := 1; i < len(entries); i++ {
		c := entries[i]
		idx := uint16(i)

		switch c.Tag {
		case TagClass:
			name, err := rw.orig.UTF8(c.A)
			if err != nil {
				return err
			}

			if mapped := descriptor.RemapType(name, rw.r.MapClass); mapped != name {
				c.A = pool.AddUTF8(mapped)
				pool.Set(idx, c)
			}
		case TagMethodType:
			desc, err := rw.orig.UTF8(c.A)
			if err != nil {
				return err
			}

			if mapped := rw.mapDesc(desc); mapped != desc {
				c.A = pool.AddUTF8(mapped)
				pool.Set(idx, c)
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			owner, err := rw.orig.ClassName(c.A)
			if err != nil {
				return err
			}

			name, desc, err := rw.orig.NameAndType(c.B)
			if err != nil {
				return err
			}

			ref := MemberRef{Owner: owner, Name: name, Desc: desc}
			newName := rw.memberName(ref, c.Tag != TagFieldref)
			newDesc := rw.mapDesc(desc)

			if newName != name || newDesc != desc {
				c.B = pool.AddNameAndType(newName, newDesc)
				pool.Set(idx, c)
			}
		case TagDynamic, TagInvokeDynamic:
			name, desc, err := rw.orig.NameAndType(c.B)
			if err != nil {
				return err
			}

			if newDesc := rw.mapDesc(desc); newDesc != desc {
				c.B = pool.AddNameAndType(name, newDesc)
				pool.Set(idx, c)
			}
		}
	}

	return nil
}

func (rw *rewriter) rewriteMembers(list []MemberInfo, method bool) error {
	pool := rw.cf.Pool

	for i := range list {
		m := &list[i]

		name, err := rw.orig.UTF8(m.NameIndex)
		if err != nil {
			return err
		}

		desc, err := rw.orig.UTF8(m.DescIndex)
		if err != nil {
			return err
		}

		ref := MemberRef{Owner: rw.owner, Name: name, Desc: desc, Access: m.Access, Declared: true}

		if newName := rw.memberName(ref, method); newName != name {
			m.NameIndex = pool.AddUTF8(newName)
		}

		if newDesc := rw.mapDesc(desc); newDesc != desc {
			m.DescIndex = pool.AddUTF8(newDesc)
		}

		attrs, err := rw.rewriteAttributes(m.Attributes)
		if err != nil {
			return fmt.Errorf("member %s.%s%s: %w", rw.owner, name, desc, err)
		}

		m.Attributes = attrs
	}

	return nil
}

func (rw *rewriter) rewriteAttributes(attrs []Attribute) ([]Attribute, error) {
	if len(attrs) == 0 {
		return attrs, nil
	}

	out := make([]Attribute, 0, len(attrs))

	for _, a := range attrs {
		name, err := rw.orig.UTF8(a.NameIndex)
		if err != nil {
			return nil, err
		}

		var data []byte

		switch name {
		case AttrSourceFile, AttrSourceDebugExtension:
			if !rw.opts.KeepSource {
				continue
			}

			data = a.Data
		case AttrSignature:
			data, err = rw.rewriteSignature(a.Data)
		case AttrInnerClasses:
			data, err = rw.rewriteInnerClasses(a.Data)
		case AttrEnclosingMethod:
			data, err = rw.rewriteEnclosingMethod(a.Data)
		case AttrCode:
			data, err = rw.rewriteCode(a.Data)
		case AttrLocalVariableTable:
			data, err = rw.rewriteLocalVariables(a.Data, rw.mapDesc)
		case AttrLocalVariableTypeTable:
			data, err = rw.rewriteLocalVariables(a.Data, rw.mapSignature)
		case AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations:
			data, err = rw.patch(a.Data, (*patcher).annotations)
		case AttrRuntimeVisibleParameterAnnotations, AttrRuntimeInvisibleParameterAnnotations:
			data, err = rw.patch(a.Data, (*patcher).parameterAnnotations)
		case AttrAnnotationDefault:
			data, err = rw.patch(a.Data, (*patcher).elementValue)
		default:
			data = a.Data
		}

		if err != nil {
			return nil, fmt.Errorf("%s attribute: %w", name, err)
		}

		out = append(out, Attribute{NameIndex: a.NameIndex, Data: data})
	}

	return out, nil
}

func (rw *rewriter) mapSignature(sig string) string {
	return descriptor.RemapSignature(sig, rw.r.MapClass)
}

// remapUTF8 maps the text of the Utf8 entry at idx and returns the index of
// an entry holding the result.
func (rw *rewriter) remapUTF8(idx uint16, fn func(string) string) (uint16, error) {
	s, err := rw.orig.UTF8(idx)
	if err != nil {
		return 0, err
	}

	if mapped := fn(s); mapped != s {
		return rw.cf.Pool.AddUTF8(mapped), nil
	}

	return idx, nil
}

func (rw *rewriter) rewriteSignature(data []byte) ([]byte, error) {
	if len(data) != 2 {
		return nil, fmt.Errorf("%w: length %d", ErrFormat, len(data))
	}

	idx, err := rw.remapUTF8(binary.BigEndian.Uint16(data), rw.mapSignature)
	if err != nil {
		return nil, err
	}

	return binary.BigEndian.AppendUint16(nil, idx), nil
}

func (rw *rewriter) rewriteInnerClasses(data []byte) ([]byte, error) {
	r := &reader{buf: data}
	n := int(r.u2())

	out := append([]byte(nil), data...)

	for i := 0; i < n; i++ {
		off := r.off
		innerInfo := r.u2()
		outerInfo := r.u2()
		nameIdx := r.u2()
		r.u2()

		if r.err != nil {
			return nil, r.err
		}

		if nameIdx == 0 {
			continue
		}

		inner, err := rw.orig.ClassName(innerInfo)
		if err != nil {
			return nil, err
		}

		newInner := rw.r.MapClass(inner)
		if newInner == inner {
			continue
		}

		outer := ""
		if outerInfo != 0 {
			if outer, err = rw.orig.ClassName(outerInfo); err != nil {
				return nil, err
			}

			outer = rw.r.MapClass(outer)
		}

		simple, err := rw.orig.UTF8(nameIdx)
		if err != nil {
			return nil, err
		}

		if newSimple := common.NestedSuffix(outer, newInner); newSimple != simple {
			binary.BigEndian.PutUint16(out[off+4:], rw.cf.Pool.AddUTF8(newSimple))
		}
	}

	if !r.done() {
		return nil, fmt.Errorf("%w: bad length", ErrFormat)
	}

	return out, nil
}

func (rw *rewriter) rewriteEnclosingMethod(data []byte) ([]byte, error) {
	r := &reader{buf: data}
	classIdx := r.u2()
	natIdx := r.u2()

	if !r.done() {
		return nil, fmt.Errorf("%w: bad length", ErrFormat)
	}

	if natIdx == 0 {
		return data, nil
	}

	owner, err := rw.orig.ClassName(classIdx)
	if err != nil {
		return nil, err
	}

	name, desc, err := rw.orig.NameAndType(natIdx)
	if err != nil {
		return nil, err
	}

	newName := rw.memberName(MemberRef{Owner: owner, Name: name, Desc: desc}, true)
	newDesc := rw.mapDesc(desc)

	if newName == name && newDesc == desc {
		return data, nil
	}

	out := binary.BigEndian.AppendUint16(nil, classIdx)

	return binary.BigEndian.AppendUint16(out, rw.cf.Pool.AddNameAndType(newName, newDesc)), nil
}

func (rw *rewriter) rewriteCode(data []byte) ([]byte, error) {
	r := &reader{buf: data}
	r.take(4) // max_stack, max_locals
	r.take(int(r.u4()))
	r.take(8 * int(r.u2()))

	head := r.off
	attrs := readAttributes(r)

	if r.err != nil {
		return nil, r.err
	}

	if !r.done() {
		return nil, fmt.Errorf("%w: bad length", ErrFormat)
	}

	attrs, err := rw.rewriteAttributes(attrs)
	if err != nil {
		return nil, err
	}

	w := &writer{buf: append(make([]byte, 0, len(data)), data[:head]...)}
	if err := writeAttributes(w, attrs); err != nil {
		return nil, err
	}

	return w.buf, nil
}

// rewriteLocalVariables handles both local variable tables; the entry at
// offset 6 of each record is a descriptor or a signature.
func (rw *rewriter) rewriteLocalVariables(data []byte, fn func(string) string) ([]byte, error) {
	r := &reader{buf: data}
	n := int(r.u2())
	out := append([]byte(nil), data...)

	for i := 0; i < n; i++ {
		off := r.off
		r.take(10)

		if r.err != nil {
			return nil, r.err
		}

		idx, err := rw.remapUTF8(binary.BigEndian.Uint16(out[off+6:]), fn)
		if err != nil {
			return nil, err
		}

		binary.BigEndian.PutUint16(out[off+6:], idx)
	}

	if !r.done() {
		return nil, fmt.Errorf("%w: bad length", ErrFormat)
	}

	return out, nil
}

func (rw *rewriter) patch(data []byte, walk func(*patcher) error) ([]byte, error) {
	p := &patcher{rw: rw, r: &reader{buf: data}, out: append([]byte(nil), data...)}

	if err := walk(p); err != nil {
		return nil, err
	}

	if p.r.err != nil {
		return nil, p.r.err
	}

	if !p.r.done() {
		return nil, fmt.Errorf("%w: bad length", ErrFormat)
	}

	return p.out, nil
}

// patcher walks annotation structures and replaces Utf8 indexes in a copy
// of the attribute. Every rewrite swaps one u2 for another, so offsets do
// not move.
type patcher struct {
	rw  *rewriter
	r   *reader
	out []byte
}

// index reads a u2 Utf8 index, maps its text and writes the result back.
func (p *patcher) index(fn func(string) string) (string, error) {
	off := p.r.off
	idx := p.r.u2()

	if p.r.err != nil {
		return "", p.r.err
	}

	s, err := p.rw.orig.UTF8(idx)
	if err != nil {
		return "", err
	}

	newIdx, err := p.rw.remapUTF8(idx, fn)
	if err != nil {
		return "", err
	}

	binary.BigEndian.PutUint16(p.out[off:], newIdx)

	return s, nil
}

func (p *patcher) annotations() error {
	n := int(p.r.u2())

	for i := 0; i < n && p.r.err == nil; i++ {
		if err := p.annotation(); err != nil {
			return err
		}
	}

	return p.r.err
}

func (p *patcher) parameterAnnotations() error {
	n := int(p.r.u1())

	for i := 0; i < n && p.r.err == nil; i++ {
		if err := p.annotations(); err != nil {
			return err
		}
	}

	return p.r.err
}

func (p *patcher) annotation() error {
	if _, err := p.index(p.rw.mapDesc); err != nil {
		return err
	}

	pairs := int(p.r.u2())

	for i := 0; i < pairs && p.r.err == nil; i++ {
		p.r.u2() // element name

		if err := p.elementValue(); err != nil {
			return err
		}
	}

	return p.r.err
}

func (p *patcher) elementValue() error {
	tag := p.r.u1()

	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		p.r.u2()
	case 'e':
		typeDesc, err := p.index(p.rw.mapDesc)
		if err != nil {
			return err
		}

		owner := strings.TrimSuffix(strings.TrimPrefix(typeDesc, "L"), ";")

		_, err = p.index(func(name string) string {
			return p.rw.memberName(MemberRef{Owner: owner, Name: name, Desc: typeDesc}, false)
		})
		if err != nil {
			return err
		}
	case 'c':
		if _, err := p.index(p.rw.mapDesc); err != nil {
			return err
		}
	case '@':
		return p.annotation()
	case '[':
		n := int(p.r.u2())

		for i := 0; i < n && p.r.err == nil; i++ {
			if err := p.elementValue(); err != nil {
				return err
			}
		}
	default:
		if p.r.err == nil {
			return fmt.Errorf("%w: unknown element value tag %q", ErrFormat, tag)
		}
	}

	return p.r.err
}
