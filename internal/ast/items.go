package ast

import "github.com/malphas-lang/runefront/internal/lexer"

// ItemFn represents a function item. Parameters and body are kept as token
// trees.
type ItemFn struct {
	ID ID
	ItemMeta
	FnToken lexer.Token
	Name    *Ident
	Params  *Group
	Output  []lexer.Token // `-> Type` tokens between parameters and body
	Body    *Group
}

// Span returns the item span.
func (f *ItemFn) Span() lexer.Span { return itemSpan(&f.ItemMeta, f.FnToken, f.Body.Span()) }

// IDSlot returns the identity tag slot.
func (f *ItemFn) IDSlot() *ID { return &f.ID }

func (*ItemFn) itemNode() {}

// ItemUse represents `use some::path;`.
type ItemUse struct {
	ID ID
	ItemMeta
	UseToken lexer.Token
	Path     *Path
	Semi     lexer.Token
}

// Span returns the item span.
func (u *ItemUse) Span() lexer.Span { return itemSpan(&u.ItemMeta, u.UseToken, u.Semi.Span) }

// IDSlot returns the identity tag slot.
func (u *ItemUse) IDSlot() *ID { return &u.ID }

func (*ItemUse) itemNode() {}

// ItemConst represents `const NAME = value;`. The value is kept as tokens.
type ItemConst struct {
	ID ID
	ItemMeta
	ConstToken lexer.Token
	Name       *Ident
	Assign     lexer.Token
	Value      []lexer.Token
	Semi       lexer.Token
}

// Span returns the item span.
func (c *ItemConst) Span() lexer.Span { return itemSpan(&c.ItemMeta, c.ConstToken, c.Semi.Span) }

// IDSlot returns the identity tag slot.
func (c *ItemConst) IDSlot() *ID { return &c.ID }

func (*ItemConst) itemNode() {}
