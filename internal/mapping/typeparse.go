package mapping

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseType parses a type string such as "int", "a.b.C" or "java.lang.String[][]".
func ParseType(s string) (Type, error) {
	t, err := parseTypeString(s)
	if err != nil {
		return nil, err
	}

	if t == nil {
		return nil, fmt.Errorf("%w: %q is only valid as a method result", ErrMalformed, VoidKeyword)
	}

	return t, nil
}

// ParseResultType is ParseType that also accepts "void" (and the empty
// string) and returns a nil Type for them.
func ParseResultType(s string) (Type, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	return parseTypeString(s)
}

func parseTypeString(s string) (Type, error) {
	base := strings.TrimSpace(s)
	dims := 0

	for strings.HasSuffix(base, "]") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(base, "]"))
		if !strings.HasSuffix(trimmed, "[") {
			return nil, fmt.Errorf("%w: unbalanced brackets in type %q", ErrMalformed, s)
		}

		base = strings.TrimSpace(strings.TrimSuffix(trimmed, "["))
		dims++
	}

	if base == VoidKeyword {
		if dims > 0 {
			return nil, fmt.Errorf("%w: array of void in type %q", ErrMalformed, s)
		}

		return nil, nil
	}

	if !IsQualifiedIdent(base) {
		return nil, fmt.Errorf("%w: invalid type name %q", ErrMalformed, s)
	}

	return wrapArray(elementType(base), dims), nil
}

func elementType(name string) Type {
	if IsPrimitive(name) {
		return Primitive{Name: name}
	}

	return ClassType{Name: name}
}

func wrapArray(t Type, dims int) Type {
	for range dims {
		t = ArrayType{Elem: t}
	}

	return t
}

// IsIdent reports whether s is a single name segment.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if !isIdentRune(r, i == 0) {
			return false
		}
	}

	return true
}

// IsQualifiedIdent reports whether s is a dot-separated list of segments.
func IsQualifiedIdent(s string) bool {
	if s == "" {
		return false
	}

	for _, seg := range strings.Split(s, ".") {
		if !IsIdent(seg) {
			return false
		}
	}

	return true
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || r == '$' || unicode.IsLetter(r) {
		return true
	}

	return !first && unicode.IsDigit(r)
}
