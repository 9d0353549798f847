package parser

import (
	"fmt"
	"strings"

	"github.com/malphas-lang/runefront/internal/diag"
	"github.com/malphas-lang/runefront/internal/lexer"
)

// ErrorKind classifies recoverable parse failures.
type ErrorKind int

const (
	// ErrUnexpectedToken is raised by a rule that found a token it cannot accept.
	ErrUnexpectedToken ErrorKind = iota
	// ErrExhaustedAlternatives is raised by an alternation where no branch matched.
	ErrExhaustedAlternatives
)

func (k ErrorKind) diagnosticCode() diag.Code {
	if k == ErrExhaustedAlternatives {
		return diag.CodeParseExhaustedAlternatives
	}
	return diag.CodeParseUnexpectedToken
}

// ParseError captures a parse failure with the offending span and what the
// grammar expected there. Parsing stops at the first ParseError.
type ParseError struct {
	Kind     ErrorKind
	Span     lexer.Span
	Found    lexer.Token
	Expected []string
}

// Message returns the error text without location.
func (e *ParseError) Message() string {
	return fmt.Sprintf("expected %s, found %s", joinExpected(e.Expected), describe(e.Found))
}

func (e *ParseError) Error() string {
	return e.Span.String() + ": " + e.Message()
}

// ToDiagnostic converts the error into a shared diagnostic structure.
func (e *ParseError) ToDiagnostic() diag.Diagnostic {
	span := diag.Span{
		Filename: e.Span.Filename,
		Line:     e.Span.Line,
		Column:   e.Span.Column,
		Start:    e.Span.Start,
		End:      e.Span.End,
	}
	d := diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message(),
		Span:     span,
	}
	if e.Found.Type == lexer.EOF {
		d = d.WithNote("the input ended before the declaration was complete")
	}
	return d.WithPrimarySpan(span, "expected "+joinExpected(e.Expected))
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return "`" + tok.String() + "`"
}

// joinExpected renders expectations as "`a`", "`a` or `b`", "`a`, `b` or `c`".
func joinExpected(expected []string) string {
	switch len(expected) {
	case 0:
		return "nothing"
	case 1:
		return expected[0]
	}
	return strings.Join(expected[:len(expected)-1], ", ") + " or " + expected[len(expected)-1]
}

// LexErrors carries lexical errors found before parsing started.
type LexErrors []lexer.LexerError

func (e LexErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more lexical errors)", e[0].Error(), len(e)-1)
}

// Diagnostics converts every lexical error.
func (e LexErrors) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(e))
	for i, err := range e {
		out[i] = err.ToDiagnostic()
	}
	return out
}
