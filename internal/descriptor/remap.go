package descriptor

import "strings"

// Remap rewrites every class name embedded in a field or method descriptor.
// Malformed input (an unterminated 'L') is returned unchanged from that
// point on; the class file keeps whatever bytes it had.
func Remap(desc string, mapClass func(string) string) string {
	if strings.IndexByte(desc, 'L') < 0 {
		return desc
	}

	var sb strings.Builder

	sb.Grow(len(desc))

	for i := 0; i < len(desc); {
		c := desc[i]
		if c != 'L' {
			sb.WriteByte(c)
			i++

			continue
		}

		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			sb.WriteString(desc[i:])
			break
		}

		sb.WriteByte('L')
		sb.WriteString(mapClass(desc[i+1 : i+end]))
		sb.WriteByte(';')

		i += end + 1
	}

	return sb.String()
}

// RemapType rewrites the name stored in a class constant, which is either an
// internal class name or, for array classes, a field descriptor.
func RemapType(name string, mapClass func(string) string) string {
	if strings.HasPrefix(name, "[") {
		return Remap(name, mapClass)
	}

	return mapClass(name)
}

// IsMethod reports whether desc is a method descriptor.
func IsMethod(desc string) bool {
	return strings.HasPrefix(desc, "(")
}
