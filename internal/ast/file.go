package ast

import "github.com/malphas-lang/runefront/internal/lexer"

// File represents a parsed program: a compilation unit or the nested
// contents of an inline module body.
type File struct {
	// Attributes are the inner attributes written at the top of the program.
	Attributes []*Attribute
	Items      []Item
	span       lexer.Span
}

// Span returns the span covering the entire program. An empty program has a
// zero-width span at the position it would start.
func (f *File) Span() lexer.Span { return f.span }

// NewFile constructs a file node with the provided span.
func NewFile(span lexer.Span) *File {
	return &File{span: span}
}

// SetSpan updates the file span.
func (f *File) SetSpan(span lexer.Span) {
	f.span = span
}
