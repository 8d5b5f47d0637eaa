package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is wrapped by every error that makes a mapping document unusable.
var ErrMalformed = errors.New("malformed mapping document")

// Pos is a position in a mapping document. The zero value means unknown.
type Pos struct {
	Line int
	Col  int
}

// IsValid reports whether the position was recorded.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// String returns "line:col".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// File is the root of a parsed mapping document.
type File struct {
	// Name is the path the document was loaded from (may be empty).
	Name string
	// Version of the YAML schema; empty for the text format.
	Version string
	// Classes are the top-level class declarations in document order.
	Classes []ClassDecl
}

// ClassDecl declares one class and, optionally, its new name.
type ClassDecl struct {
	// Old is the dotted name (top level) or single segment (nested).
	Old string
	// New is the replacement; empty means the class keeps its name.
	New string
	// Fields in declaration order.
	Fields []FieldDecl
	// Methods in declaration order.
	Methods []MethodDecl
	// Classes are nested declarations.
	Classes []ClassDecl
	Pos     Pos
}

// Target returns the new name, defaulting to the old one.
func (c *ClassDecl) Target() string {
	if c.New == "" {
		return c.Old
	}

	return c.New
}

// FieldDecl declares a field. A field without New contributes no rule.
type FieldDecl struct {
	Old  string
	New  string
	Type Type
	Pos  Pos
}

// MethodDecl declares a method. Result is nil for void.
type MethodDecl struct {
	Old    string
	New    string
	Params []Type
	Result Type
	Pos    Pos
}

// Signature renders the declaration as "name(params)result" for messages.
func (m *MethodDecl) Signature() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = TypeString(p)
	}

	return m.Old + "(" + strings.Join(params, ", ") + ")" + TypeString(m.Result)
}

// Type is a type node: Primitive, ClassType or ArrayType.
type Type interface {
	typeNode()
}

// Primitive is one of the eight primitive keywords.
type Primitive struct {
	Name string
}

// ClassType refers to a class by dotted name.
type ClassType struct {
	Name string
}

// ArrayType is one array dimension over Elem.
type ArrayType struct {
	Elem Type
}

func (Primitive) typeNode() {}
func (ClassType) typeNode() {}
func (ArrayType) typeNode() {}

// Primitives lists the primitive keywords recognized by the parsers.
var Primitives = map[string]struct{}{
	"boolean": {},
	"byte":    {},
	"char":    {},
	"short":   {},
	"int":     {},
	"long":    {},
	"float":   {},
	"double":  {},
}

// VoidKeyword names the absent method result.
const VoidKeyword = "void"

// IsPrimitive reports whether name is a primitive keyword.
func IsPrimitive(name string) bool {
	_, ok := Primitives[name]
	return ok
}

// TypeString renders a type node in document syntax ("void" for nil).
func TypeString(t Type) string {
	switch tt := t.(type) {
	case nil:
		return VoidKeyword
	case Primitive:
		return tt.Name
	case ClassType:
		return tt.Name
	case ArrayType:
		return TypeString(tt.Elem) + "[]"
	default:
		return fmt.Sprintf("<%T>", t)
	}
}
