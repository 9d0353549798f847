package parser

import (
	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
)

// parseFile parses a program: inner attributes followed by items, up to a
// token of kind closing (EOF at top level, `}` inside an inline module). The
// closing token itself is left for the caller.
func (p *Parser) parseFile(closing lexer.TokenType) (*ast.File, error) {
	start := p.stream.Tok(0).Span
	file := ast.NewFile(lexer.Span{
		Filename: start.Filename,
		Line:     start.Line,
		Column:   start.Column,
		Start:    start.Start,
		End:      start.Start,
	})

	attrs, err := p.parseInnerAttributes()
	if err != nil {
		return nil, err
	}
	file.Attributes = attrs
	for _, attr := range attrs {
		file.SetSpan(joinFileSpan(file, attr.Span()))
	}

	for {
		pk := p.stream.Peeker()
		if pk.Is(0, closing) || pk.Is(0, lexer.EOF) {
			break
		}

		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		file.Items = append(file.Items, item)
		file.SetSpan(joinFileSpan(file, item.Span()))
	}

	return file, nil
}

// joinFileSpan grows the file span to cover span. The first addition
// replaces the zero-width placeholder.
func joinFileSpan(file *ast.File, span lexer.Span) lexer.Span {
	if file.Span().IsEmpty() {
		return span
	}
	return file.Span().Join(span)
}

// parseItem collects the item's meta prefix, then dispatches on the keyword.
func (p *Parser) parseItem() (ast.Item, error) {
	meta, err := p.parseItemMeta()
	if err != nil {
		return nil, err
	}
	return Alternate(p, itemRules(meta)...)
}

// itemRules lists the item grammars in priority order. Each rule is bound to
// the meta prefix collected for the item under construction.
func itemRules(meta ast.ItemMeta) []Rule[ast.Item] {
	return []Rule[ast.Item]{
		{
			Name: "module item",
			Peek: peekItemMod,
			Parse: func(p *Parser) (ast.Item, error) {
				return asItem(p.parseItemMod(meta))
			},
		},
		{
			Name: "function item",
			Peek: func(pk Peeker) bool { return pk.Is(0, lexer.FN) },
			Parse: func(p *Parser) (ast.Item, error) {
				return asItem(p.parseItemFn(meta))
			},
		},
		{
			Name: "use item",
			Peek: func(pk Peeker) bool { return pk.Is(0, lexer.USE) },
			Parse: func(p *Parser) (ast.Item, error) {
				return asItem(p.parseItemUse(meta))
			},
		},
		{
			Name: "const item",
			Peek: func(pk Peeker) bool { return pk.Is(0, lexer.CONST) },
			Parse: func(p *Parser) (ast.Item, error) {
				return asItem(p.parseItemConst(meta))
			},
		},
	}
}

// asItem converts a typed item result without turning a nil pointer into a
// non-nil interface.
func asItem[T ast.Item](item T, err error) (ast.Item, error) {
	if err != nil {
		return nil, err
	}
	return item, nil
}
