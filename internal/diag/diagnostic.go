// Package diag holds the diagnostics shared by every front-end stage and
// renders them for terminals.
package diag

import (
	"fmt"
	"sort"
)

// Stage names the front-end phase that reported a diagnostic.
type Stage string

const (
	StageLexer     Stage = "lexer"
	StageParser    Stage = "parser"
	StageFormat    Stage = "format"
	StageWorkspace Stage = "workspace"
)

// Severity grades a diagnostic. The zero value renders as an error.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a class of diagnostic. Codes appear in
// rendered output and may be matched on by tooling.
type Code string

const (
	CodeLexerUnterminatedString       Code = "LEXER_UNTERMINATED_STRING"
	CodeLexerUnterminatedChar         Code = "LEXER_UNTERMINATED_CHAR"
	CodeLexerUnterminatedBlockComment Code = "LEXER_UNTERMINATED_BLOCK_COMMENT"
	CodeLexerIllegalRune              Code = "LEXER_ILLEGAL_RUNE"

	CodeParseUnexpectedToken       Code = "PARSE_UNEXPECTED_TOKEN"
	CodeParseExhaustedAlternatives Code = "PARSE_EXHAUSTED_ALTERNATIVES"

	CodeFormatUnplacedComment Code = "FORMAT_UNPLACED_COMMENT"

	CodeWorkspaceNestingTooDeep Code = "WORKSPACE_NESTING_TOO_DEEP"
	CodeWorkspaceUnreadable     Code = "WORKSPACE_UNREADABLE"
)

// Span is a source location. Line and Column are 1-based; Start and End are
// rune offsets, like Column.
type Span struct {
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Start    int    `json:"start" yaml:"start"`
	End      int    `json:"end" yaml:"end"`
}

func (s Span) String() string {
	if s.Filename == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
}

// IsValid reports whether the span points at a line and column.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// SpanStyle says how a labelled span is underlined.
type SpanStyle uint8

const (
	// StylePrimary marks the location the message is about (^^^).
	StylePrimary SpanStyle = iota
	// StyleSecondary marks related context (~~~).
	StyleSecondary
)

func (s SpanStyle) String() string {
	if s == StyleSecondary {
		return "secondary"
	}
	return "primary"
}

// MarshalText encodes the style by name.
func (s SpanStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LabeledSpan is a span with an optional inline label.
type LabeledSpan struct {
	Span  Span      `json:"span" yaml:"span"`
	Label string    `json:"label,omitempty" yaml:"label,omitempty"`
	Style SpanStyle `json:"style" yaml:"style"`
}

// Diagnostic is one problem reported to the user.
type Diagnostic struct {
	Stage    Stage    `json:"stage" yaml:"stage"`
	Severity Severity `json:"severity" yaml:"severity"`
	Code     Code     `json:"code,omitempty" yaml:"code,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Span     Span     `json:"span" yaml:"span"`
	// Labels are rendered instead of Span when present.
	Labels []LabeledSpan `json:"labels,omitempty" yaml:"labels,omitempty"`
	Notes  []string      `json:"notes,omitempty" yaml:"notes,omitempty"`
	Help   string        `json:"help,omitempty" yaml:"help,omitempty"`
}

// Error renders the diagnostic on one line, so it can travel as an error.
func (d Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s: %s", d.Span, d.Message)
	}
	return d.Message
}

// WithLabel appends a labelled span.
func (d Diagnostic) WithLabel(span Span, label string, style SpanStyle) Diagnostic {
	d.Labels = append(d.Labels, LabeledSpan{Span: span, Label: label, Style: style})
	return d
}

// WithPrimarySpan appends a primary labelled span.
func (d Diagnostic) WithPrimarySpan(span Span, label string) Diagnostic {
	return d.WithLabel(span, label, StylePrimary)
}

// WithSecondarySpan appends a secondary labelled span.
func (d Diagnostic) WithSecondarySpan(span Span, label string) Diagnostic {
	return d.WithLabel(span, label, StyleSecondary)
}

// WithNote appends a note.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp sets the help line.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// Sort orders diagnostics by file, then position. Equal positions keep their
// relative order.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Span, diags[j].Span
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Start < b.Start
	})
}

// CountErrors returns how many diagnostics are errors. An empty severity
// counts as an error.
func CountErrors(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Severity == SeverityError || d.Severity == "" {
			n++
		}
	}
	return n
}
