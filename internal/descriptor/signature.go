package descriptor

import (
	"strings"

	"class-remapper/internal/common"
)

// RemapSignature rewrites the class names in a generic signature of a
// class, method or field. Inner class suffixes ("Outer<T>.Inner") are
// translated through the full binary name, so a renamed nested class keeps
// its place in the chain. A malformed signature is returned unchanged.
func RemapSignature(sig string, mapClass func(string) string) string {
	if strings.IndexByte(sig, 'L') < 0 {
		return sig
	}

	s := &sigScanner{in: sig, mapClass: mapClass}
	s.out.Grow(len(sig))

	if !s.signature() {
		return sig
	}

	return s.out.String()
}

type sigScanner struct {
	in       string
	pos      int
	out      strings.Builder
	mapClass func(string) string
}

func (s *sigScanner) peek() byte {
	if s.pos >= len(s.in) {
		return 0
	}

	return s.in[s.pos]
}

func (s *sigScanner) copyByte() {
	s.out.WriteByte(s.in[s.pos])
	s.pos++
}

// ident reads up to (not including) the first byte in stops.
func (s *sigScanner) ident(stops string) (string, bool) {
	end := strings.IndexAny(s.in[s.pos:], stops)
	if end <= 0 {
		return "", false
	}

	id := s.in[s.pos : s.pos+end]
	s.pos += end

	return id, true
}

func (s *sigScanner) signature() bool {
	if s.peek() == '<' && !s.formalTypeParameters() {
		return false
	}

	for s.pos < len(s.in) {
		switch s.peek() {
		case '(', ')', '^', 'V':
			s.copyByte()
		default:
			if !s.typeSignature() {
				return false
			}
		}
	}

	return true
}

func (s *sigScanner) formalTypeParameters() bool {
	s.copyByte()

	for {
		if s.peek() == '>' {
			s.copyByte()
			return true
		}

		id, ok := s.ident(":")
		if !ok {
			return false
		}

		s.out.WriteString(id)

		for s.peek() == ':' {
			s.copyByte()

			switch s.peek() {
			case 'L', 'T', '[':
				if !s.typeSignature() {
					return false
				}
			}
		}
	}
}

func (s *sigScanner) typeSignature() bool {
	switch s.peek() {
	case 'L':
		return s.classTypeSignature()
	case 'T':
		end := strings.IndexByte(s.in[s.pos:], ';')
		if end < 0 {
			return false
		}

		s.out.WriteString(s.in[s.pos : s.pos+end+1])
		s.pos += end + 1

		return true
	case '[':
		s.copyByte()
		return s.typeSignature()
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		s.copyByte()
		return true
	default:
		return false
	}
}

func (s *sigScanner) classTypeSignature() bool {
	s.copyByte()

	oldName, ok := s.ident("<;.")
	if !ok {
		return false
	}

	newName := s.mapClass(oldName)
	s.out.WriteString(newName)

	for {
		switch s.peek() {
		case '<':
			if !s.typeArguments() {
				return false
			}
		case '.':
			s.copyByte()

			inner, ok := s.ident("<;.")
			if !ok {
				return false
			}

			outer := newName
			oldName += common.InnerSeparator + inner
			newName = s.mapClass(oldName)

			s.out.WriteString(common.NestedSuffix(outer, newName))
		case ';':
			s.copyByte()
			return true
		default:
			return false
		}
	}
}

func (s *sigScanner) typeArguments() bool {
	s.copyByte()

	for {
		switch s.peek() {
		case '>':
			s.copyByte()
			return true
		case '*':
			s.copyByte()
		case '+', '-':
			s.copyByte()

			if !s.typeSignature() {
				return false
			}
		default:
			if !s.typeSignature() {
				return false
			}
		}
	}
}
