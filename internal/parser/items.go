package parser

import (
	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
)

// parseItemFn parses `fn name(params) [-> output] { body }` keeping
// parameters, output and body as token trees. The output ends at `{`; a `;`
// or `mod` before the body is an error rather than part of the output.
func (p *Parser) parseItemFn(meta ast.ItemMeta) (*ast.ItemFn, error) {
	fnTok, err := p.Expect(lexer.FN)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.Expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	params, err := p.parseGroup(lexer.LPAREN)
	if err != nil {
		return nil, err
	}
	output, err := p.collectBalanced(lexer.LBRACE, lexer.SEMICOLON, lexer.MOD)
	if err != nil {
		return nil, err
	}
	body, err := p.parseGroup(lexer.LBRACE)
	if err != nil {
		return nil, err
	}

	return &ast.ItemFn{
		ItemMeta: meta,
		FnToken:  fnTok,
		Name:     ast.NewIdent(nameTok.Value, nameTok.Span),
		Params:   params,
		Output:   output,
		Body:     body,
	}, nil
}

// parseItemUse parses `use path;`.
func (p *Parser) parseItemUse(meta ast.ItemMeta) (*ast.ItemUse, error) {
	useTok, err := p.Expect(lexer.USE)
	if err != nil {
		return nil, err
	}
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	semi, err := p.Expect(lexer.SEMICOLON)
	if err != nil {
		return nil, err
	}

	return &ast.ItemUse{
		ItemMeta: meta,
		UseToken: useTok,
		Path:     path,
		Semi:     semi,
	}, nil
}

// parseItemConst parses `const NAME = tokens;`.
func (p *Parser) parseItemConst(meta ast.ItemMeta) (*ast.ItemConst, error) {
	constTok, err := p.Expect(lexer.CONST)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.Expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	assign, err := p.Expect(lexer.ASSIGN)
	if err != nil {
		return nil, err
	}
	if p.stream.Peeker().Is(0, lexer.SEMICOLON) {
		return nil, p.errorf(ErrUnexpectedToken, "expression")
	}
	value, err := p.collectBalanced(lexer.SEMICOLON)
	if err != nil {
		return nil, err
	}
	semi, err := p.Expect(lexer.SEMICOLON)
	if err != nil {
		return nil, err
	}

	return &ast.ItemConst{
		ItemMeta:   meta,
		ConstToken: constTok,
		Name:       ast.NewIdent(nameTok.Value, nameTok.Span),
		Assign:     assign,
		Value:      value,
		Semi:       semi,
	}, nil
}
