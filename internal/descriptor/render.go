package descriptor

import (
	"errors"
	"fmt"
	"strings"

	"class-remapper/internal/common"
	"class-remapper/internal/mapping"
)

// ErrMalformedType is returned for a type node the codec cannot render.
var ErrMalformedType = errors.New("malformed type")

// Direction selects which naming a rendered descriptor uses.
type Direction int

const (
	// ToOldNames renders class names in the naming being replaced.
	ToOldNames Direction = iota
	// ToNewNames renders class names in the naming being produced.
	ToNewNames
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case ToOldNames:
		return "old"
	case ToNewNames:
		return "new"
	default:
		return common.UnknownStr
	}
}

// Names translates internal class names in both directions.
type Names interface {
	// Map translates an old name to its new name (identity when unmapped).
	Map(internal string) string
	// Unmap translates a new name back to its old name (identity when unmapped).
	Unmap(internal string) string
}

var primitiveCodes = map[string]byte{
	"boolean": 'Z',
	"byte":    'B',
	"char":    'C',
	"short":   'S',
	"int":     'I',
	"long":    'J',
	"float":   'F',
	"double":  'D',
}

// PrimitiveCode returns the descriptor character for a primitive keyword.
func PrimitiveCode(keyword string) (byte, bool) {
	c, ok := primitiveCodes[keyword]
	return c, ok
}

// Render renders a field type.
func Render(t mapping.Type, dir Direction, names Names) (string, error) {
	var sb strings.Builder

	if err := render(&sb, t, dir, names); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// RenderMethod renders "(params)result"; a nil result renders as void.
func RenderMethod(params []mapping.Type, result mapping.Type, dir Direction, names Names) (string, error) {
	var sb strings.Builder

	sb.WriteByte('(')

	for i, p := range params {
		if err := render(&sb, p, dir, names); err != nil {
			return "", fmt.Errorf("parameter %d: %w", i, err)
		}
	}

	sb.WriteByte(')')

	if result == nil {
		sb.WriteByte('V')
	} else if err := render(&sb, result, dir, names); err != nil {
		return "", fmt.Errorf("result: %w", err)
	}

	return sb.String(), nil
}

func render(sb *strings.Builder, t mapping.Type, dir Direction, names Names) error {
	switch tt := t.(type) {
	case mapping.Primitive:
		return renderPrimitive(sb, tt)
	case mapping.ClassType:
		return renderClass(sb, tt, dir, names)
	case mapping.ArrayType:
		return renderArray(sb, tt, dir, names)
	case nil:
		return fmt.Errorf("%w: missing type", ErrMalformedType)
	default:
		return fmt.Errorf("%w: unrecognized type node %T", ErrMalformedType, t)
	}
}

func renderPrimitive(sb *strings.Builder, p mapping.Primitive) error {
	code, ok := primitiveCodes[p.Name]
	if !ok {
		return fmt.Errorf("%w: unknown primitive %q", ErrMalformedType, p.Name)
	}

	sb.WriteByte(code)

	return nil
}

func renderClass(sb *strings.Builder, c mapping.ClassType, dir Direction, names Names) error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty class name", ErrMalformedType)
	}

	name := common.InternalName(c.Name)
	if names != nil {
		if dir == ToNewNames {
			name = names.Map(name)
		} else {
			name = names.Unmap(name)
		}
	}

	sb.WriteByte('L')
	sb.WriteString(name)
	sb.WriteByte(';')

	return nil
}

func renderArray(sb *strings.Builder, a mapping.ArrayType, dir Direction, names Names) error {
	if a.Elem == nil {
		return fmt.Errorf("%w: array without element type", ErrMalformedType)
	}

	sb.WriteByte('[')

	return render(sb, a.Elem, dir, names)
}
