package classfile

import (
	"fmt"
)

// Constant is one constant pool entry. Which fields are meaningful depends
// on Tag:
//
//	Utf8                    Text
//	Integer, Float          Bits (low 32 bits)
//	Long, Double            Bits
//	Class, String, Module,
//	Package, MethodType     A (a Utf8 index)
//	Fieldref, Methodref,
//	InterfaceMethodref      A (Class), B (NameAndType)
//	NameAndType             A (name Utf8), B (descriptor Utf8)
//	MethodHandle            Kind, B (reference)
//	Dynamic, InvokeDynamic  A (bootstrap method attr index), B (NameAndType)
//
// The slot after a Long or Double holds a zero Constant.
type Constant struct {
	Tag  Tag
	Text string
	Bits uint64
	Kind uint8
	A    uint16
	B    uint16
}

// Pool is a constant pool. Index 0 is reserved, as in the class file.
type Pool struct {
	entries []Constant
	utf8    map[string]uint16
	nat     map[[2]uint16]uint16
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{entries: make([]Constant, 1)}
}

// Count returns the constant_pool_count the pool would be written with.
func (p *Pool) Count() int {
	return len(p.entries)
}

// At returns the entry at index i, or false for index 0, an unusable slot
// or an index out of range.
func (p *Pool) At(i uint16) (Constant, bool) {
	if i == 0 || int(i) >= len(p.entries) || p.entries[i].Tag == 0 {
		return Constant{}, false
	}

	return p.entries[i], true
}

// Entries returns a copy of all slots, including the reserved slot 0.
func (p *Pool) Entries() []Constant {
	return append([]Constant(nil), p.entries...)
}

// UTF8 returns the text of a Utf8 entry.
func (p *Pool) UTF8(i uint16) (string, error) {
	c, ok := p.At(i)
	if !ok || c.Tag != TagUtf8 {
		return "", fmt.Errorf("%w: constant #%d is not Utf8", ErrFormat, i)
	}

	return c.Text, nil
}

// ClassName returns the name a Class entry points at.
func (p *Pool) ClassName(i uint16) (string, error) {
	c, ok := p.At(i)
	if !ok || c.Tag != TagClass {
		return "", fmt.Errorf("%w: constant #%d is not a Class", ErrFormat, i)
	}

	return p.UTF8(c.A)
}

// NameAndType returns the name and descriptor of a NameAndType entry.
func (p *Pool) NameAndType(i uint16) (name, desc string, err error) {
	c, ok := p.At(i)
	if !ok || c.Tag != TagNameAndType {
		return "", "", fmt.Errorf("%w: constant #%d is not a NameAndType", ErrFormat, i)
	}

	if name, err = p.UTF8(c.A); err != nil {
		return "", "", err
	}

	if desc, err = p.UTF8(c.B); err != nil {
		return "", "", err
	}

	return name, desc, nil
}

// Set replaces the entry at index i. It is meant for re-pointing reference
// entries; callers must not change the text of a Utf8 entry this way.
func (p *Pool) Set(i uint16, c Constant) {
	prev := p.entries[i].Tag
	p.entries[i] = c

	if prev == TagUtf8 || prev == TagNameAndType || c.Tag == TagUtf8 || c.Tag == TagNameAndType {
		p.utf8 = nil
		p.nat = nil
	}
}

func (p *Pool) add(c Constant) uint16 {
	idx := len(p.entries)
	p.entries = append(p.entries, c)

	if c.Tag.wide() {
		p.entries = append(p.entries, Constant{})
	}

	return uint16(idx)
}

func (p *Pool) index() {
	if p.utf8 != nil {
		return
	}

	p.utf8 = make(map[string]uint16)
	p.nat = make(map[[2]uint16]uint16)

	for i, c := range p.entries {
		switch c.Tag {
		case TagUtf8:
			if _, ok := p.utf8[c.Text]; !ok {
				p.utf8[c.Text] = uint16(i)
			}
		case TagNameAndType:
			key := [2]uint16{c.A, c.B}
			if _, ok := p.nat[key]; !ok {
				p.nat[key] = uint16(i)
			}
		}
	}
}

// AddUTF8 returns the index of a Utf8 entry holding s, appending one if the
// pool has none.
func (p *Pool) AddUTF8(s string) uint16 {
	p.index()

	if i, ok := p.utf8[s]; ok {
		return i
	}

	i := p.add(Constant{Tag: TagUtf8, Text: s})
	p.utf8[s] = i

	return i
}

// AddNameAndType returns the index of a NameAndType entry for name and desc,
// appending one if needed.
func (p *Pool) AddNameAndType(name, desc string) uint16 {
	n, d := p.AddUTF8(name), p.AddUTF8(desc)
	key := [2]uint16{n, d}

	if i, ok := p.nat[key]; ok {
		return i
	}

	i := p.add(Constant{Tag: TagNameAndType, A: n, B: d})
	p.nat[key] = i

	return i
}

// AddClass appends a Class entry for an internal name.
func (p *Pool) AddClass(name string) uint16 {
	n := p.AddUTF8(name)

	for i, c := range p.entries {
		if c.Tag == TagClass && c.A == n {
			return uint16(i)
		}
	}

	return p.add(Constant{Tag: TagClass, A: n})
}

// AddRef appends a Fieldref, Methodref or InterfaceMethodref entry.
func (p *Pool) AddRef(tag Tag, owner, name, desc string) uint16 {
	cls := p.AddClass(owner)
	nat := p.AddNameAndType(name, desc)

	for i, c := range p.entries {
		if c.Tag == tag && c.A == cls && c.B == nat {
			return uint16(i)
		}
	}

	return p.add(Constant{Tag: tag, A: cls, B: nat})
}

// AddString appends a String entry.
func (p *Pool) AddString(s string) uint16 {
	return p.add(Constant{Tag: TagString, A: p.AddUTF8(s)})
}

// AddLong appends a Long entry, which takes two slots.
func (p *Pool) AddLong(v int64) uint16 {
	return p.add(Constant{Tag: TagLong, Bits: uint64(v)})
}

// AddMethodType appends a MethodType entry.
func (p *Pool) AddMethodType(desc string) uint16 {
	return p.add(Constant{Tag: TagMethodType, A: p.AddUTF8(desc)})
}

// AddInvokeDynamic appends an InvokeDynamic entry.
func (p *Pool) AddInvokeDynamic(bootstrap uint16, name, desc string) uint16 {
	return p.add(Constant{Tag: TagInvokeDynamic, A: bootstrap, B: p.AddNameAndType(name, desc)})
}

func (p *Pool) clone() *Pool {
	return &Pool{entries: p.Entries()}
}
