package ast

import "github.com/malphas-lang/runefront/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Item represents a top-level item of a program.
type Item interface {
	Node
	// Meta returns the attributes and visibility the item was declared with.
	Meta() *ItemMeta
	// IDSlot exposes the identity tag for numbering passes.
	IDSlot() *ID
	itemNode()
}

// ID distinguishes otherwise identical nodes. It is assigned by a pass that
// runs after parsing; the parser always leaves it as NoID.
type ID uint32

// NoID marks a node that has not been numbered yet.
const NoID ID = 0

// IsValid reports whether the id was assigned.
func (id ID) IsValid() bool { return id != NoID }

// ItemMeta carries the prefix of an item that is parsed through the meta
// channel rather than by the item's own rule.
type ItemMeta struct {
	Attributes []*Attribute
	Visibility Visibility
}

// Meta returns m; it is promoted into every item that embeds ItemMeta.
func (m *ItemMeta) Meta() *ItemMeta { return m }

// StartSpan returns the span of the first meta token, if any.
func (m *ItemMeta) StartSpan() (lexer.Span, bool) {
	if len(m.Attributes) > 0 {
		return m.Attributes[0].Span(), true
	}
	return m.Visibility.OptionSpan()
}

// itemSpan joins the meta prefix (when present) with the keyword and tail.
func itemSpan(meta *ItemMeta, keyword lexer.Token, tail lexer.Span) lexer.Span {
	start := keyword.Span
	if span, ok := meta.StartSpan(); ok {
		start = span
	}
	return start.Join(tail)
}

// Ident represents an identifier.
type Ident struct {
	Name string
	span lexer.Span
}

// Span returns the identifier span.
func (i *Ident) Span() lexer.Span { return i.span }

// NewIdent constructs an identifier node.
func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{
		Name: name,
		span: span,
	}
}

// Token returns the identifier as the token it was parsed from.
func (i *Ident) Token() lexer.Token {
	return lexer.Token{Type: lexer.IDENT, Raw: i.Name, Value: i.Name, Span: i.span}
}

// Path is a `::` separated sequence of segments. Segments may be keywords
// such as `crate`, `super` or `self`.
type Path struct {
	Segments   []lexer.Token
	Separators []lexer.Token
}

// Span returns the path span.
func (p *Path) Span() lexer.Span {
	return p.Segments[0].Span.Join(p.Segments[len(p.Segments)-1].Span)
}

// String renders the path as written, without whitespace.
func (p *Path) String() string {
	out := ""
	for i, seg := range p.Segments {
		if i > 0 {
			out += "::"
		}
		out += seg.Raw
	}
	return out
}

// Group is a delimited token tree kept opaque by the parser. Tokens holds
// everything between the delimiters, nested groups included.
type Group struct {
	Open   lexer.Token
	Tokens []lexer.Token
	Close  lexer.Token
}

// Span returns the group span, delimiters included.
func (g *Group) Span() lexer.Span { return g.Open.Span.Join(g.Close.Span) }
