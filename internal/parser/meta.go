package parser

import (
	"slices"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
)

// The meta channel collects the prefix of an item (outer attributes and
// visibility) before the item's own rule runs. Item rules receive the
// collected ast.ItemMeta and parse from their keyword onwards.

func peekOuterAttribute(pk Peeker) bool {
	return pk.Is(0, lexer.POUND) && pk.Is(1, lexer.LBRACKET)
}

func peekInnerAttribute(pk Peeker) bool {
	return pk.Is(0, lexer.POUND) && pk.Is(1, lexer.BANG) && pk.Is(2, lexer.LBRACKET)
}

// parseItemMeta collects outer attributes followed by an optional visibility.
func (p *Parser) parseItemMeta() (ast.ItemMeta, error) {
	var meta ast.ItemMeta

	attrs, err := p.parseAttributes(ast.AttrOuter)
	if err != nil {
		return meta, err
	}
	meta.Attributes = attrs

	vis, err := p.parseVisibility()
	if err != nil {
		return meta, err
	}
	meta.Visibility = vis

	return meta, nil
}

// parseInnerAttributes collects the `#![...]` attributes that open a program.
// Zero attributes is the common case.
func (p *Parser) parseInnerAttributes() ([]*ast.Attribute, error) {
	return p.parseAttributes(ast.AttrInner)
}

func (p *Parser) parseAttributes(style ast.AttrStyle) ([]*ast.Attribute, error) {
	peek := peekOuterAttribute
	if style == ast.AttrInner {
		peek = peekInnerAttribute
	}

	var attrs []*ast.Attribute
	for peek(p.stream.Peeker()) {
		attr, err := p.parseAttribute(style)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *Parser) parseAttribute(style ast.AttrStyle) (*ast.Attribute, error) {
	attr := &ast.Attribute{Style: style}

	hash, err := p.Expect(lexer.POUND)
	if err != nil {
		return nil, err
	}
	attr.Hash = hash

	if style == ast.AttrInner {
		bang, err := p.Expect(lexer.BANG)
		if err != nil {
			return nil, err
		}
		attr.Bang = &bang
	}

	if attr.Open, err = p.Expect(lexer.LBRACKET); err != nil {
		return nil, err
	}
	if attr.Path, err = p.parsePath(); err != nil {
		return nil, err
	}
	if attr.Input, err = p.collectBalanced(lexer.RBRACKET); err != nil {
		return nil, err
	}
	if attr.Close, err = p.Expect(lexer.RBRACKET); err != nil {
		return nil, err
	}

	p.logger.Debug("attribute parsed",
		"style", style.String(),
		"path", attr.Path.String())

	return attr, nil
}

func isVisRestrictionTarget(tt lexer.TokenType) bool {
	return tt == lexer.CRATE || tt == lexer.SUPER || tt == lexer.SELF
}

// parseVisibility parses an optional `pub`, `pub(crate)`, `pub(super)`,
// `pub(self)` or `pub(in path)`. Absence yields ast.VisInherited.
func (p *Parser) parseVisibility() (ast.Visibility, error) {
	var vis ast.Visibility

	pk := p.stream.Peeker()
	if !pk.Is(0, lexer.PUB) {
		return vis, nil
	}

	vis.Kind = ast.VisPublic
	vis.Pub = p.stream.advance()

	pk = p.stream.Peeker()
	if !pk.Is(0, lexer.LPAREN) {
		return vis, nil
	}

	restricted := (isVisRestrictionTarget(pk.Nth(1)) && pk.Is(2, lexer.RPAREN)) || pk.Is(1, lexer.IN)
	if !restricted {
		return vis, nil
	}

	r := &ast.VisRestriction{Open: p.stream.advance()}

	if p.stream.Peeker().Is(0, lexer.IN) {
		in := p.stream.advance()
		r.In = &in
		vis.Kind = ast.VisIn
	}

	path, err := p.parsePath()
	if err != nil {
		return vis, err
	}
	r.Path = path

	if r.In == nil {
		switch path.Segments[0].Type {
		case lexer.CRATE:
			vis.Kind = ast.VisCrate
		case lexer.SUPER:
			vis.Kind = ast.VisSuper
		case lexer.SELF:
			vis.Kind = ast.VisSelf
		}
	}

	if r.Close, err = p.Expect(lexer.RPAREN); err != nil {
		return vis, err
	}
	vis.Restriction = r

	return vis, nil
}

func isPathSegment(tt lexer.TokenType) bool {
	return tt == lexer.IDENT || isVisRestrictionTarget(tt)
}

// parsePath parses `segment (:: segment)*`.
func (p *Parser) parsePath() (*ast.Path, error) {
	first, err := p.expectAny(lexer.IDENT, lexer.CRATE, lexer.SUPER, lexer.SELF)
	if err != nil {
		return nil, err
	}
	path := &ast.Path{Segments: []lexer.Token{first}}

	for {
		pk := p.stream.Peeker()
		if !pk.Is(0, lexer.DOUBLE_COLON) || !isPathSegment(pk.Nth(1)) {
			return path, nil
		}
		path.Separators = append(path.Separators, p.stream.advance())
		path.Segments = append(path.Segments, p.stream.advance())
	}
}

func closerFor(open lexer.TokenType) lexer.TokenType {
	switch open {
	case lexer.LPAREN:
		return lexer.RPAREN
	case lexer.LBRACKET:
		return lexer.RBRACKET
	case lexer.LBRACE:
		return lexer.RBRACE
	default:
		return ""
	}
}

func isCloser(tt lexer.TokenType) bool {
	return tt == lexer.RPAREN || tt == lexer.RBRACKET || tt == lexer.RBRACE
}

// collectBalanced consumes tokens up to, but not including, the first token
// of any stop kind found outside nested delimiters. Delimiters must pair up.
// Errors name stops[0] as the expected token.
func (p *Parser) collectBalanced(stops ...lexer.TokenType) ([]lexer.Token, error) {
	var (
		out     []lexer.Token
		closers []lexer.TokenType
	)
	stop := stops[0]

	for {
		tok := p.stream.Tok(0)

		if len(closers) == 0 && slices.Contains(stops, tok.Type) {
			return out, nil
		}

		switch {
		case tok.Type == lexer.EOF:
			if len(closers) > 0 {
				return nil, p.errorf(ErrUnexpectedToken, tokenText(closers[len(closers)-1]))
			}
			return nil, p.errorf(ErrUnexpectedToken, tokenText(stop))

		case closerFor(tok.Type) != "":
			closers = append(closers, closerFor(tok.Type))

		case isCloser(tok.Type):
			if len(closers) == 0 {
				return nil, p.errorf(ErrUnexpectedToken, tokenText(stop))
			}
			if want := closers[len(closers)-1]; tok.Type != want {
				return nil, p.errorf(ErrUnexpectedToken, tokenText(want))
			}
			closers = closers[:len(closers)-1]
		}

		out = append(out, p.stream.advance())
	}
}

// parseGroup parses a delimited token tree opened by open.
func (p *Parser) parseGroup(open lexer.TokenType) (*ast.Group, error) {
	o, err := p.Expect(open)
	if err != nil {
		return nil, err
	}
	closer := closerFor(open)
	inner, err := p.collectBalanced(closer)
	if err != nil {
		return nil, err
	}
	c, err := p.Expect(closer)
	if err != nil {
		return nil, err
	}
	return &ast.Group{Open: o, Tokens: inner, Close: c}, nil
}
