package classfile

import (
	"encoding/binary"
	"fmt"
)

// reader is a big-endian cursor with a sticky error.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}

	if n < 0 || len(r.buf)-r.off < n {
		r.err = fmt.Errorf("%w: truncated at offset %d", ErrFormat, r.off)
		return nil
	}

	b := r.buf[r.off : r.off+n]
	r.off += n

	return b
}

func (r *reader) u1() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}

	return b[0]
}

func (r *reader) u2() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}

	return binary.BigEndian.Uint16(b)
}

func (r *reader) u4() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return binary.BigEndian.Uint32(b)
}

func (r *reader) u8() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}

	return binary.BigEndian.Uint64(b)
}

func (r *reader) bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}

	return append([]byte(nil), b...)
}

func (r *reader) done() bool {
	return r.err == nil && r.off == len(r.buf)
}

// Parse decodes a class file.
func Parse(data []byte) (*ClassFile, error) {
	r := &reader{buf: data}

	if magic := r.u4(); r.err == nil && magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrFormat, magic)
	}

	cf := &ClassFile{Minor: r.u2(), Major: r.u2()}

	pool, err := readPool(r)
	if err != nil {
		return nil, err
	}

	cf.Pool = pool
	cf.Access = r.u2()
	cf.This = r.u2()
	cf.Super = r.u2()

	n := int(r.u2())
	for i := 0; i < n && r.err == nil; i++ {
		cf.Implements = append(cf.Implements, r.u2())
	}

	cf.FieldInfos = readMembers(r)
	cf.MethodInfos = readMembers(r)
	cf.Attributes = readAttributes(r)

	if r.err != nil {
		return nil, r.err
	}

	if !r.done() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(data)-r.off)
	}

	if err := cf.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	return cf, nil
}

func readPool(r *reader) (*Pool, error) {
	count := int(r.u2())
	if r.err != nil {
		return nil, r.err
	}

	if count == 0 {
		return nil, fmt.Errorf("%w: empty constant pool", ErrFormat)
	}

	p := &Pool{entries: make([]Constant, 1, count)}

	for len(p.entries) < count {
		c, err := readConstant(r)
		if err != nil {
			return nil, fmt.Errorf("constant #%d: %w", len(p.entries), err)
		}

		p.entries = append(p.entries, c)
		if c.Tag.wide() {
			if len(p.entries) == count {
				return nil, fmt.Errorf("%w: %s constant in the last pool slot", ErrFormat, c.Tag)
			}

			p.entries = append(p.entries, Constant{})
		}
	}

	return p, nil
}

func readConstant(r *reader) (Constant, error) {
	c := Constant{Tag: Tag(r.u1())}

	switch c.Tag {
	case TagUtf8:
		c.Text = string(r.take(int(r.u2())))
	case TagInteger, TagFloat:
		c.Bits = uint64(r.u4())
	case TagLong, TagDouble:
		c.Bits = r.u8()
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		c.A = r.u2()
	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType,
		TagDynamic, TagInvokeDynamic:
		c.A = r.u2()
		c.B = r.u2()
	case TagMethodHandle:
		c.Kind = r.u1()
		c.B = r.u2()
	default:
		if r.err == nil {
			return Constant{}, fmt.Errorf("%w: unknown constant tag %d", ErrFormat, c.Tag)
		}
	}

	return c, r.err
}

func readMembers(r *reader) []MemberInfo {
	n := int(r.u2())
	out := make([]MemberInfo, 0, n)

	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, MemberInfo{
			Access:     r.u2(),
			NameIndex:  r.u2(),
			DescIndex:  r.u2(),
			Attributes: readAttributes(r),
		})
	}

	return out
}

func readAttributes(r *reader) []Attribute {
	n := int(r.u2())
	if n == 0 {
		return nil
	}

	out := make([]Attribute, 0, n)

	for i := 0; i < n && r.err == nil; i++ {
		name := r.u2()
		data := r.bytes(int(r.u4()))
		out = append(out, Attribute{NameIndex: name, Data: data})
	}

	return out
}
