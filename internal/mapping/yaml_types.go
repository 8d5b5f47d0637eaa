package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlFile is the on-disk shape of the YAML format.
type yamlFile struct {
	Version string      `yaml:"version,omitempty"`
	Classes []yamlClass `yaml:"classes"`
}

type yamlClass struct {
	Old     string       `yaml:"old"`
	New     string       `yaml:"new,omitempty"`
	Fields  []yamlField  `yaml:"fields,omitempty"`
	Methods []yamlMethod `yaml:"methods,omitempty"`
	Classes []yamlClass  `yaml:"classes,omitempty"`
	line    int
	col     int
}

type yamlField struct {
	Old  string  `yaml:"old"`
	New  string  `yaml:"new,omitempty"`
	Type TypeRef `yaml:"type"`
	line int
	col  int
}

type yamlMethod struct {
	Old     string    `yaml:"old"`
	New     string    `yaml:"new,omitempty"`
	Params  []TypeRef `yaml:"params,omitempty"`
	Returns TypeRef   `yaml:"returns,omitempty"`
	line    int
	col     int
}

// TypeRef is a type written as a string in YAML ("int", "a.b.C[]", "void").
type TypeRef struct {
	Type Type
}

// UnmarshalYAML implements custom YAML unmarshaling for TypeRef.
// Accepts a scalar type string; an empty scalar or "void" yields a nil Type.
func (t *TypeRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected type string, got %v", node.Line, node.Kind)
	}

	var s string

	err := node.Decode(&s)
	if err != nil {
		return err
	}

	typ, err := ParseResultType(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	t.Type = typ

	return nil
}

// MarshalYAML implements custom YAML marshaling for TypeRef.
func (t TypeRef) MarshalYAML() (any, error) {
	return TypeString(t.Type), nil
}

// UnmarshalYAML records the node position alongside the decoded class.
func (c *yamlClass) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlClass

	var v plain

	err := node.Decode(&v)
	if err != nil {
		return err
	}

	*c = yamlClass(v)
	c.line, c.col = node.Line, node.Column

	return nil
}

// UnmarshalYAML records the node position alongside the decoded field.
func (f *yamlField) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlField

	var v plain

	err := node.Decode(&v)
	if err != nil {
		return err
	}

	*f = yamlField(v)
	f.line, f.col = node.Line, node.Column

	return nil
}

// UnmarshalYAML records the node position alongside the decoded method.
func (m *yamlMethod) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlMethod

	var v plain

	err := node.Decode(&v)
	if err != nil {
		return err
	}

	*m = yamlMethod(v)
	m.line, m.col = node.Line, node.Column

	return nil
}

func (c *yamlClass) toDecl() ClassDecl {
	decl := ClassDecl{
		Old: c.Old,
		New: c.New,
		Pos: Pos{Line: c.line, Col: c.col},
	}

	for _, f := range c.Fields {
		decl.Fields = append(decl.Fields, FieldDecl{
			Old:  f.Old,
			New:  f.New,
			Type: f.Type.Type,
			Pos:  Pos{Line: f.line, Col: f.col},
		})
	}

	for _, m := range c.Methods {
		md := MethodDecl{
			Old:    m.Old,
			New:    m.New,
			Result: m.Returns.Type,
			Pos:    Pos{Line: m.line, Col: m.col},
		}

		for _, p := range m.Params {
			md.Params = append(md.Params, p.Type)
		}

		decl.Methods = append(decl.Methods, md)
	}

	for i := range c.Classes {
		decl.Classes = append(decl.Classes, c.Classes[i].toDecl())
	}

	return decl
}

func fromDecl(decl *ClassDecl) yamlClass {
	c := yamlClass{Old: decl.Old, New: decl.New}

	for _, f := range decl.Fields {
		c.Fields = append(c.Fields, yamlField{Old: f.Old, New: f.New, Type: TypeRef{Type: f.Type}})
	}

	for _, m := range decl.Methods {
		ym := yamlMethod{Old: m.Old, New: m.New, Returns: TypeRef{Type: m.Result}}
		for _, p := range m.Params {
			ym.Params = append(ym.Params, TypeRef{Type: p})
		}

		c.Methods = append(c.Methods, ym)
	}

	for i := range decl.Classes {
		c.Classes = append(c.Classes, fromDecl(&decl.Classes[i]))
	}

	return c
}
