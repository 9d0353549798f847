package ast

import "github.com/malphas-lang/runefront/internal/lexer"

// AttrStyle tells whether an attribute applies to the item that follows it
// or to the contents of the enclosing item.
type AttrStyle int

const (
	// AttrOuter is written before an item: `#[cfg(test)]`.
	AttrOuter AttrStyle = iota
	// AttrInner is written inside an item: `#![allow(dead_code)]`.
	AttrInner
)

func (s AttrStyle) String() string {
	if s == AttrInner {
		return "inner"
	}
	return "outer"
}

// Attribute is a single `#[...]` or `#![...]` annotation.
type Attribute struct {
	Style AttrStyle
	Hash  lexer.Token
	Bang  *lexer.Token // only for inner attributes
	Open  lexer.Token
	Path  *Path
	Input []lexer.Token // balanced tokens after the path
	Close lexer.Token
}

// Span returns the attribute span.
func (a *Attribute) Span() lexer.Span { return a.Hash.Span.Join(a.Close.Span) }

// VisibilityKind enumerates the visibility modifiers.
type VisibilityKind int

const (
	// VisInherited is the default private visibility; no tokens are written.
	VisInherited VisibilityKind = iota
	VisPublic                   // pub
	VisCrate                    // pub(crate)
	VisSuper                    // pub(super)
	VisSelf                     // pub(self)
	VisIn                       // pub(in some::path)
)

var visibilityNames = [...]string{
	VisInherited: "inherited",
	VisPublic:    "pub",
	VisCrate:     "pub(crate)",
	VisSuper:     "pub(super)",
	VisSelf:      "pub(self)",
	VisIn:        "pub(in)",
}

func (k VisibilityKind) String() string { return visibilityNames[k] }

// VisRestriction is the parenthesised part of a restricted visibility.
type VisRestriction struct {
	Open  lexer.Token
	In    *lexer.Token
	Path  *Path
	Close lexer.Token
}

// Visibility is an optional modifier. The zero value is VisInherited.
type Visibility struct {
	Kind        VisibilityKind
	Pub         lexer.Token
	Restriction *VisRestriction
}

// OptionSpan returns the modifier span, or false for inherited visibility.
func (v *Visibility) OptionSpan() (lexer.Span, bool) {
	if v.Kind == VisInherited {
		return lexer.Span{}, false
	}
	if v.Restriction != nil {
		return v.Pub.Span.Join(v.Restriction.Close.Span), true
	}
	return v.Pub.Span, true
}

// IsPublic reports whether any pub modifier was written.
func (v *Visibility) IsPublic() bool { return v.Kind != VisInherited }
