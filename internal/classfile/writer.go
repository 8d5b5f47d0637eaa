package classfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// writer appends big-endian values to a byte slice.
type writer struct {
	buf []byte
}

func (w *writer) u1(v uint8)  { w.buf = append(w.buf, v) }
func (w *writer) u2(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) u4(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) u8(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

func (w *writer) raw(b []byte) { w.buf = append(w.buf, b...) }

// Bytes encodes the class file.
func (cf *ClassFile) Bytes() ([]byte, error) {
	if n := cf.Pool.Count(); n > MaxPoolSize {
		return nil, fmt.Errorf("%w: constant pool has %d slots, limit is %d", ErrFormat, n, MaxPoolSize)
	}

	w := &writer{buf: make([]byte, 0, 1024)}

	w.u4(Magic)
	w.u2(cf.Minor)
	w.u2(cf.Major)

	if err := writePool(w, cf.Pool); err != nil {
		return nil, err
	}

	w.u2(cf.Access)
	w.u2(cf.This)
	w.u2(cf.Super)
	w.u2(uint16(len(cf.Implements)))

	for _, i := range cf.Implements {
		w.u2(i)
	}

	for _, list := range [][]MemberInfo{cf.FieldInfos, cf.MethodInfos} {
		w.u2(uint16(len(list)))

		for _, m := range list {
			w.u2(m.Access)
			w.u2(m.NameIndex)
			w.u2(m.DescIndex)

			if err := writeAttributes(w, m.Attributes); err != nil {
				return nil, err
			}
		}
	}

	if err := writeAttributes(w, cf.Attributes); err != nil {
		return nil, err
	}

	return w.buf, nil
}

func writePool(w *writer, p *Pool) error {
	w.u2(uint16(p.Count()))

	for i := 1; i < len(p.entries); i++ {
		c := p.entries[i]
		w.u1(uint8(c.Tag))

		switch c.Tag {
		case TagUtf8:
			if len(c.Text) > math.MaxUint16 {
				return fmt.Errorf("%w: constant #%d is longer than %d bytes", ErrFormat, i, math.MaxUint16)
			}

			w.u2(uint16(len(c.Text)))
			w.raw([]byte(c.Text))
		case TagInteger, TagFloat:
			w.u4(uint32(c.Bits))
		case TagLong, TagDouble:
			w.u8(c.Bits)

			i++
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			w.u2(c.A)
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType,
			TagDynamic, TagInvokeDynamic:
			w.u2(c.A)
			w.u2(c.B)
		case TagMethodHandle:
			w.u1(c.Kind)
			w.u2(c.B)
		default:
			return fmt.Errorf("%w: cannot write constant #%d with tag %d", ErrFormat, i, c.Tag)
		}
	}

	return nil
}

func writeAttributes(w *writer, attrs []Attribute) error {
	w.u2(uint16(len(attrs)))

	for _, a := range attrs {
		if uint64(len(a.Data)) > math.MaxUint32 {
			return fmt.Errorf("%w: attribute too large", ErrFormat)
		}

		w.u2(a.NameIndex)
		w.u4(uint32(len(a.Data)))
		w.raw(a.Data)
	}

	return nil
}
