package printer

import (
	"github.com/malphas-lang/runefront/internal/diag"
	"github.com/malphas-lang/runefront/internal/lexer"
)

// comments maps the comments of a source file to the tokens they attach to,
// keyed by the token's start offset. A comment on the same line as the token
// before it trails that token. Any other comment leads the next token.
type comments struct {
	leading  map[int][]lexer.Token
	trailing map[int][]lexer.Token
}

func collectComments(toks []lexer.Token) *comments {
	c := &comments{
		leading:  make(map[int][]lexer.Token),
		trailing: make(map[int][]lexer.Token),
	}

	var (
		prev    *lexer.Token
		newline bool
		pending []lexer.Token
	)
	for i := range toks {
		tok := toks[i]
		switch tok.Type {
		case lexer.WHITESPACE:
		case lexer.NEWLINE:
			newline = true
		case lexer.LINE_COMMENT, lexer.BLOCK_COMMENT:
			if prev != nil && !newline && len(pending) == 0 {
				c.trailing[prev.Span.Start] = append(c.trailing[prev.Span.Start], tok)
				continue
			}
			pending = append(pending, tok)
		default:
			if len(pending) > 0 {
				c.leading[tok.Span.Start] = append(c.leading[tok.Span.Start], pending...)
				pending = nil
			}
			prev = &toks[i]
			newline = false
		}
	}
	return c
}

// stray returns an error for the first comment no anchor consumed.
func (c *comments) stray() error {
	var first *lexer.Token
	for _, group := range []map[int][]lexer.Token{c.leading, c.trailing} {
		for _, toks := range group {
			for i := range toks {
				if first == nil || toks[i].Span.Start < first.Span.Start {
					first = &toks[i]
				}
			}
		}
	}
	if first == nil {
		return nil
	}
	return &CommentError{Span: first.Span}
}

// CommentError reports a comment the printer has nowhere to put, such as one
// inside a function body or between an item's keyword and its name.
type CommentError struct {
	Span lexer.Span
}

func (e *CommentError) Error() string {
	return e.Span.String() + ": comment cannot be kept by the formatter"
}

// ToDiagnostic converts the error for rendering.
func (e *CommentError) ToDiagnostic() diag.Diagnostic {
	span := diag.Span{
		Filename: e.Span.Filename,
		Line:     e.Span.Line,
		Column:   e.Span.Column,
		Start:    e.Span.Start,
		End:      e.Span.End,
	}
	return diag.Diagnostic{
		Stage:    diag.StageFormat,
		Severity: diag.SeverityError,
		Code:     diag.CodeFormatUnplacedComment,
		Message:  "comment cannot be kept by the formatter",
		Span:     span,
	}.WithPrimarySpan(span, "comment here").
		WithHelp("move the comment onto its own line before an item or attribute")
}
