package common

import "strings"

// UnknownStr is the String() value of out-of-range enum values.
const UnknownStr = "unknown"

// ClassSuffix is the entry name suffix of a compiled unit inside a container.
const ClassSuffix = ".class"

// InnerSeparator joins an enclosing class name and a nested class segment.
const InnerSeparator = "$"

// InternalName converts a dotted class name (a.b.C) into the slash-separated
// form used inside class files (a/b/C). Already-internal names pass through.
func InternalName(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "/")
}

// DottedName converts an internal class name back into dotted form.
func DottedName(internal string) string {
	return strings.ReplaceAll(internal, "/", ".")
}

// SplitInner splits a nested class name at its last separator.
// ok is false for names that are not nested.
func SplitInner(name string) (outer, inner string, ok bool) {
	i := strings.LastIndex(name, InnerSeparator)
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}

	return name[:i], name[i+1:], true
}

// ClassEntryName reports whether a container entry holds a compiled unit and
// returns the internal class name it declares by path.
func ClassEntryName(entry string) (string, bool) {
	if !strings.HasSuffix(entry, ClassSuffix) || len(entry) == len(ClassSuffix) {
		return "", false
	}

	return strings.TrimSuffix(entry, ClassSuffix), true
}

// NestedSuffix returns the part of a nested class name that follows its
// enclosing class. When nested does not extend outer the segment after the
// last separator is returned.
func NestedSuffix(outer, nested string) string {
	if strings.HasPrefix(nested, outer+InnerSeparator) {
		return nested[len(outer)+1:]
	}

	if i := strings.LastIndexAny(nested, InnerSeparator+"/"); i >= 0 {
		return nested[i+1:]
	}

	return nested
}
