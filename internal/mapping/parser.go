package mapping

import (
	"fmt"
	"strings"
)

const classKeyword = "class"

// ParseText parses a document in the text format. name is used in error
// positions only and may be empty.
func ParseText(name string, src []byte) (*File, error) {
	tokens, err := newLexer(name, string(src)).tokenize()
	if err != nil {
		return nil, err
	}

	p := &parser{file: name, tokens: tokens}

	return p.parseFile()
}

// parser is a recursive-descent parser over a fully tokenized document.
type parser struct {
	file   string
	tokens []Token
	pos    int
}

func (p *parser) parseFile() (*File, error) {
	f := &File{Name: p.file}

	for p.peek().Kind != TokenEOF {
		decl, err := p.parseClass(true)
		if err != nil {
			return nil, err
		}

		f.Classes = append(f.Classes, decl)
	}

	return f, nil
}

// parseClass parses "class Old [-> New] ( ';' | '{' body '}' )".
func (p *parser) parseClass(topLevel bool) (ClassDecl, error) {
	kw, err := p.expect(TokenIdent)
	if err != nil {
		return ClassDecl{}, err
	}

	if kw.Lexeme != classKeyword {
		return ClassDecl{}, p.errorf(kw.Pos, "expected 'class', found %q", kw.Lexeme)
	}

	decl := ClassDecl{Pos: kw.Pos}

	if decl.Old, err = p.className(topLevel); err != nil {
		return ClassDecl{}, err
	}

	if p.accept(TokenArrow) {
		if decl.New, err = p.className(topLevel); err != nil {
			return ClassDecl{}, err
		}
	}

	if p.accept(TokenSemicolon) {
		return decl, nil
	}

	if _, err := p.expect(TokenLBrace); err != nil {
		return ClassDecl{}, err
	}

	for {
		tok := p.peek()

		switch {
		case tok.Kind == TokenRBrace:
			p.pos++
			return decl, nil
		case tok.Kind == TokenEOF:
			return ClassDecl{}, p.errorf(tok.Pos, "unterminated body of class %s", decl.Old)
		case tok.Kind == TokenIdent && tok.Lexeme == classKeyword:
			nested, err := p.parseClass(false)
			if err != nil {
				return ClassDecl{}, err
			}

			decl.Classes = append(decl.Classes, nested)
		default:
			if err := p.parseMember(&decl); err != nil {
				return ClassDecl{}, err
			}
		}
	}
}

func (p *parser) className(topLevel bool) (string, error) {
	tok, err := p.expect(TokenIdent)
	if err != nil {
		return "", err
	}

	if !topLevel && strings.Contains(tok.Lexeme, ".") {
		return "", p.errorf(tok.Pos, "nested class name %q must be a single segment", tok.Lexeme)
	}

	return tok.Lexeme, nil
}

// parseMember parses "type name [ '(' params ')' ] [-> new] ';'".
func (p *parser) parseMember(decl *ClassDecl) error {
	start := p.peek()

	typ, err := p.parseType()
	if err != nil {
		return err
	}

	name, err := p.expect(TokenIdent)
	if err != nil {
		return err
	}

	if strings.Contains(name.Lexeme, ".") {
		return p.errorf(name.Pos, "member name %q must be a single segment", name.Lexeme)
	}

	if p.peek().Kind == TokenLParen {
		params, err := p.parseParams()
		if err != nil {
			return err
		}

		m := MethodDecl{Old: name.Lexeme, Params: params, Result: typ, Pos: start.Pos}
		if m.New, err = p.renameTarget(); err != nil {
			return err
		}

		decl.Methods = append(decl.Methods, m)

		return nil
	}

	if typ == nil {
		return p.errorf(start.Pos, "field %s cannot have type void", name.Lexeme)
	}

	f := FieldDecl{Old: name.Lexeme, Type: typ, Pos: start.Pos}
	if f.New, err = p.renameTarget(); err != nil {
		return err
	}

	decl.Fields = append(decl.Fields, f)

	return nil
}

func (p *parser) renameTarget() (string, error) {
	var target string

	if p.accept(TokenArrow) {
		tok, err := p.expect(TokenIdent)
		if err != nil {
			return "", err
		}

		if strings.Contains(tok.Lexeme, ".") {
			return "", p.errorf(tok.Pos, "member name %q must be a single segment", tok.Lexeme)
		}

		target = tok.Lexeme
	}

	if _, err := p.expect(TokenSemicolon); err != nil {
		return "", err
	}

	return target, nil
}

func (p *parser) parseParams() ([]Type, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	var params []Type

	if p.accept(TokenRParen) {
		return params, nil
	}

	for {
		tok := p.peek()

		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}

		if typ == nil {
			return nil, p.errorf(tok.Pos, "parameter cannot have type void")
		}

		params = append(params, typ)

		if p.accept(TokenRParen) {
			return params, nil
		}

		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}
}

// parseType returns nil for void.
func (p *parser) parseType() (Type, error) {
	tok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}

	dims := 0

	for p.accept(TokenLBracket) {
		if _, err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}

		dims++
	}

	if tok.Lexeme == VoidKeyword {
		if dims > 0 {
			return nil, p.errorf(tok.Pos, "array of void")
		}

		return nil, nil
	}

	if tok.Lexeme == classKeyword {
		return nil, p.errorf(tok.Pos, "unexpected 'class'")
	}

	return wrapArray(elementType(tok.Lexeme), dims), nil
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) accept(kind TokenKind) bool {
	if p.peek().Kind != kind {
		return false
	}

	p.pos++

	return true
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		found := tok.Kind.String()
		if tok.Kind == TokenIdent {
			found = fmt.Sprintf("%q", tok.Lexeme)
		}

		return Token{}, p.errorf(tok.Pos, "expected %s, found %s", kind, found)
	}

	p.pos++

	return tok, nil
}

func (p *parser) errorf(pos Pos, format string, args ...any) error {
	return &SyntaxError{File: p.file, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
