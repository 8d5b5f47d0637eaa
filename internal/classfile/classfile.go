package classfile

import (
	"errors"
	"fmt"
)

// ErrFormat is wrapped by every error caused by bytes that are not a valid
// class file, and by rewrites that would produce one.
var ErrFormat = errors.New("invalid class file")

// Attribute is an attribute kept as raw bytes.
type Attribute struct {
	NameIndex uint16
	Data      []byte
}

// MemberInfo is a field_info or method_info structure.
type MemberInfo struct {
	Access     uint16
	NameIndex  uint16
	DescIndex  uint16
	Attributes []Attribute
}

// Member is a resolved view of a declared field or method.
type Member struct {
	Access uint16
	Name   string
	Desc   string
}

// ClassFile is a parsed class file.
type ClassFile struct {
	Minor uint16
	Major uint16
	Pool  *Pool

	Access     uint16
	This       uint16
	Super      uint16
	Implements []uint16

	FieldInfos  []MemberInfo
	MethodInfos []MemberInfo
	Attributes  []Attribute
}

// Name returns the internal name of the class.
func (cf *ClassFile) Name() string {
	name, _ := cf.Pool.ClassName(cf.This)
	return name
}

// SuperName returns the internal name of the superclass, or "" for
// java/lang/Object and module-info.
func (cf *ClassFile) SuperName() string {
	if cf.Super == 0 {
		return ""
	}

	name, _ := cf.Pool.ClassName(cf.Super)

	return name
}

// Interfaces returns the direct superinterfaces in declaration order.
func (cf *ClassFile) Interfaces() []string {
	out := make([]string, 0, len(cf.Implements))

	for _, i := range cf.Implements {
		if name, err := cf.Pool.ClassName(i); err == nil {
			out = append(out, name)
		}
	}

	return out
}

// Fields returns the declared fields in declaration order.
func (cf *ClassFile) Fields() []Member {
	return cf.members(cf.FieldInfos)
}

// Methods returns the declared methods in declaration order.
func (cf *ClassFile) Methods() []Member {
	return cf.members(cf.MethodInfos)
}

func (cf *ClassFile) members(infos []MemberInfo) []Member {
	out := make([]Member, 0, len(infos))

	for _, m := range infos {
		name, _ := cf.Pool.UTF8(m.NameIndex)
		desc, _ := cf.Pool.UTF8(m.DescIndex)
		out = append(out, Member{Access: m.Access, Name: name, Desc: desc})
	}

	return out
}

// AttributeName returns the name of an attribute.
func (cf *ClassFile) AttributeName(a Attribute) string {
	name, _ := cf.Pool.UTF8(a.NameIndex)
	return name
}

// FindAttribute returns the first attribute with the given name.
func (cf *ClassFile) FindAttribute(attrs []Attribute, name string) (Attribute, bool) {
	for _, a := range attrs {
		if cf.AttributeName(a) == name {
			return a, true
		}
	}

	return Attribute{}, false
}

func (cf *ClassFile) validate() error {
	if _, err := cf.Pool.ClassName(cf.This); err != nil {
		return fmt.Errorf("this_class: %w", err)
	}

	if cf.Super != 0 {
		if _, err := cf.Pool.ClassName(cf.Super); err != nil {
			return fmt.Errorf("super_class: %w", err)
		}
	}

	for _, i := range cf.Implements {
		if _, err := cf.Pool.ClassName(i); err != nil {
			return fmt.Errorf("interfaces: %w", err)
		}
	}

	for _, list := range [][]MemberInfo{cf.FieldInfos, cf.MethodInfos} {
		for _, m := range list {
			if _, err := cf.Pool.UTF8(m.NameIndex); err != nil {
				return fmt.Errorf("member name: %w", err)
			}

			if _, err := cf.Pool.UTF8(m.DescIndex); err != nil {
				return fmt.Errorf("member descriptor: %w", err)
			}
		}
	}

	return nil
}
