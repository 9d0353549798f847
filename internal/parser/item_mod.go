package parser

import (
	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
)

func peekItemMod(pk Peeker) bool { return pk.Is(0, lexer.MOD) }

// parseItemMod parses `mod name;` or `mod name { program }`. The meta prefix
// has already been collected by the caller.
func (p *Parser) parseItemMod(meta ast.ItemMeta) (*ast.ItemMod, error) {
	modTok, err := p.Expect(lexer.MOD)
	if err != nil {
		return nil, err
	}

	nameTok, err := p.Expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}

	body, err := p.parseItemModBody()
	if err != nil {
		return nil, err
	}

	item := &ast.ItemMod{
		ItemMeta: meta,
		ModToken: modTok,
		Name:     ast.NewIdent(nameTok.Value, nameTok.Span),
		Body:     body,
	}

	p.logger.Debug("module item parsed",
		"name", item.Name.Name,
		"inline", isInline(body),
		"attributes", len(meta.Attributes))

	return item, nil
}

func isInline(body ast.ItemModBody) bool {
	_, ok := body.(*ast.InlineBody)
	return ok
}

// itemModBodyRules: an inline body when the next token opens a brace,
// otherwise a terminating `;`.
func itemModBodyRules() []Rule[ast.ItemModBody] {
	inline := Rule[ast.ItemModBody]{
		Name: tokenText(lexer.LBRACE),
		Peek: peekInlineBody,
		Parse: func(p *Parser) (ast.ItemModBody, error) {
			body, err := p.parseInlineBody()
			if err != nil {
				return nil, err
			}
			return body, nil
		},
	}
	empty := Rule[ast.ItemModBody]{
		Name: tokenText(lexer.SEMICOLON),
		Peek: TokenRule(lexer.SEMICOLON).Peek,
		Parse: func(p *Parser) (ast.ItemModBody, error) {
			semi, err := p.Expect(lexer.SEMICOLON)
			if err != nil {
				return nil, err
			}
			return &ast.EmptyBody{Semi: semi}, nil
		},
	}
	return []Rule[ast.ItemModBody]{inline, empty}
}

func (p *Parser) parseItemModBody() (ast.ItemModBody, error) {
	return Alternate(p, itemModBodyRules()...)
}

func peekInlineBody(pk Peeker) bool { return pk.Is(0, lexer.LBRACE) }

// parseInlineBody parses `{ program }`. The nested program collects its own
// inner attributes.
func (p *Parser) parseInlineBody() (*ast.InlineBody, error) {
	open, err := p.Expect(lexer.LBRACE)
	if err != nil {
		return nil, err
	}

	file, err := p.parseFile(lexer.RBRACE)
	if err != nil {
		return nil, err
	}

	closeTok, err := p.Expect(lexer.RBRACE)
	if err != nil {
		return nil, err
	}

	return &ast.InlineBody{Open: open, File: file, Close: closeTok}, nil
}
