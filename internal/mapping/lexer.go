package mapping

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a lexical token of the text format.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenArrow
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenSemicolon
)

var tokenNames = [...]string{
	TokenEOF:       "end of file",
	TokenIdent:     "identifier",
	TokenArrow:     "'->'",
	TokenLBrace:    "'{'",
	TokenRBrace:    "'}'",
	TokenLParen:    "'('",
	TokenRParen:    "')'",
	TokenLBracket:  "'['",
	TokenRBracket:  "']'",
	TokenComma:     "','",
	TokenSemicolon: "';'",
}

// String returns a human-readable token kind.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return fmt.Sprintf("token(%d)", int(k))
}

// Token is one lexeme with its position.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    Pos
}

// SyntaxError reports a lexical or grammatical problem in a document.
type SyntaxError struct {
	File string
	Pos  Pos
	Msg  string
}

// Error implements error.
func (e *SyntaxError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, e.Msg)
	}

	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Unwrap lets errors.Is match ErrMalformed.
func (e *SyntaxError) Unwrap() error {
	return ErrMalformed
}

// lexer tokenizes the text format. Qualified names (a.b.C$D) are a single
// identifier token.
//
// A lexer is not safe for concurrent use; create one per document.
type lexer struct {
	file   string
	src    string
	offset int
	line   int
	col    int
}

func newLexer(file, src string) *lexer {
	return &lexer{file: file, src: src, line: 1, col: 1}
}

// tokenize scans the whole document. It stops at the first error.
func (l *lexer) tokenize() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) next() (Token, error) {
	l.skipSpaceAndComments()

	pos := Pos{Line: l.line, Col: l.col}
	if l.offset >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: pos}, nil
	}

	r, _ := l.peek()

	switch r {
	case '{':
		return l.single(TokenLBrace, pos), nil
	case '}':
		return l.single(TokenRBrace, pos), nil
	case '(':
		return l.single(TokenLParen, pos), nil
	case ')':
		return l.single(TokenRParen, pos), nil
	case '[':
		return l.single(TokenLBracket, pos), nil
	case ']':
		return l.single(TokenRBracket, pos), nil
	case ',':
		return l.single(TokenComma, pos), nil
	case ';':
		return l.single(TokenSemicolon, pos), nil
	case '-':
		l.advance()

		if r2, _ := l.peek(); r2 == '>' {
			l.advance()
			return Token{Kind: TokenArrow, Lexeme: "->", Pos: pos}, nil
		}

		return Token{}, l.errorf(pos, "unexpected '-' (did you mean '->'?)")
	}

	if isIdentRune(r, true) {
		return l.ident(pos)
	}

	return Token{}, l.errorf(pos, "unexpected character %q", r)
}

func (l *lexer) ident(pos Pos) (Token, error) {
	start := l.offset
	first := true

	for l.offset < len(l.src) {
		r, _ := l.peek()
		if r == '.' {
			if first {
				break
			}

			l.advance()

			first = true

			continue
		}

		if !isIdentRune(r, first) {
			break
		}

		l.advance()

		first = false
	}

	lexeme := l.src[start:l.offset]
	if first {
		return Token{}, l.errorf(pos, "qualified name %q ends with '.'", lexeme)
	}

	return Token{Kind: TokenIdent, Lexeme: lexeme, Pos: pos}, nil
}

func (l *lexer) single(kind TokenKind, pos Pos) Token {
	r := l.advance()
	return Token{Kind: kind, Lexeme: string(r), Pos: pos}
}

func (l *lexer) skipSpaceAndComments() {
	for l.offset < len(l.src) {
		r, _ := l.peek()

		switch {
		case r == '#':
			l.skipLine()
		case r == '/' && l.offset+1 < len(l.src) && l.src[l.offset+1] == '/':
			l.skipLine()
		case unicode.IsSpace(r):
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) skipLine() {
	for l.offset < len(l.src) {
		if r := l.advance(); r == '\n' {
			return
		}
	}
}

func (l *lexer) peek() (rune, int) {
	return utf8.DecodeRuneInString(l.src[l.offset:])
}

func (l *lexer) advance() rune {
	r, size := l.peek()
	l.offset += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexer) errorf(pos Pos, format string, args ...any) error {
	return &SyntaxError{File: l.file, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
