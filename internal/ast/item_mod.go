package ast

import "github.com/malphas-lang/runefront/internal/lexer"

// ItemMod is a module item, either `mod name;` or `mod name { ... }`.
// Attributes written before the item are the module's outer attributes.
type ItemMod struct {
	ID ID
	ItemMeta
	ModToken lexer.Token
	Name     *Ident
	Body     ItemModBody
}

// Span returns the item span, from the first meta token through the body.
func (m *ItemMod) Span() lexer.Span {
	return itemSpan(&m.ItemMeta, m.ModToken, m.Body.Span())
}

// NameSpan returns the span of the declaration's public surface: the
// visibility (or `mod` keyword when there is none) through the name.
func (m *ItemMod) NameSpan() lexer.Span {
	if span, ok := m.Visibility.OptionSpan(); ok {
		return span.Join(m.Name.Span())
	}
	return m.ModToken.Span.Join(m.Name.Span())
}

// IDSlot returns the identity tag slot.
func (m *ItemMod) IDSlot() *ID { return &m.ID }

func (*ItemMod) itemNode() {}

// ItemModBody is either *EmptyBody or *InlineBody.
type ItemModBody interface {
	Node
	itemModBody()
}

// EmptyBody is the `;` terminating an out-of-line module declaration.
type EmptyBody struct {
	Semi lexer.Token
}

// Span returns the terminator span.
func (b *EmptyBody) Span() lexer.Span { return b.Semi.Span }

func (*EmptyBody) itemModBody() {}

// InlineBody is a braced nested program.
type InlineBody struct {
	Open  lexer.Token
	File  *File
	Close lexer.Token
}

// Span returns the body span, braces included.
func (b *InlineBody) Span() lexer.Span { return b.Open.Span.Join(b.Close.Span) }

func (*InlineBody) itemModBody() {}
