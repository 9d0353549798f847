package workspace

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/malphas-lang/runefront/internal/diag"
	"github.com/malphas-lang/runefront/internal/lexer"
	"github.com/malphas-lang/runefront/internal/parser"
)

// UnreadableError reports a source file that could not be read.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() error { return e.Err }

// ToDiagnostic converts the error into a shared diagnostic structure.
func (e *UnreadableError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageWorkspace,
		Severity: diag.SeverityError,
		Code:     diag.CodeWorkspaceUnreadable,
		Message:  fmt.Sprintf("cannot read source file: %v", e.Err),
		Span:     diag.Span{Filename: e.Path},
	}
}

// DepthError reports a file whose brace nesting exceeds the configured
// limit. The file is not parsed.
type DepthError struct {
	Limit int
	// Span is the first brace past the limit.
	Span lexer.Span
}

func newDepthError(tokens []lexer.Token, limit int) *DepthError {
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.LBRACE:
			depth++
			if depth > limit {
				return &DepthError{Limit: limit, Span: tok.Span}
			}
		case lexer.RBRACE:
			if depth > 0 {
				depth--
			}
		}
	}
	return &DepthError{Limit: limit}
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%s: nesting deeper than %d levels", e.Span, e.Limit)
}

// ToDiagnostic converts the error into a shared diagnostic structure.
func (e *DepthError) ToDiagnostic() diag.Diagnostic {
	span := diagSpan(e.Span)
	return diag.Diagnostic{
		Stage:    diag.StageWorkspace,
		Severity: diag.SeverityError,
		Code:     diag.CodeWorkspaceNestingTooDeep,
		Message:  fmt.Sprintf("nesting deeper than %d levels", e.Limit),
		Span:     span,
	}.WithPrimarySpan(span, "this brace opens one level too many").
		WithHelp("raise parser.max_depth in the manifest or flatten the modules")
}

func diagSpan(s lexer.Span) diag.Span {
	return diag.Span{
		Filename: s.Filename,
		Line:     s.Line,
		Column:   s.Column,
		Start:    s.Start,
		End:      s.End,
	}
}

// Diagnostics converts any error produced while checking path. Errors the
// front end does not know are reported as a bare workspace diagnostic.
func Diagnostics(path string, err error) []diag.Diagnostic {
	var (
		lexErrs    parser.LexErrors
		parseErr   *parser.ParseError
		depthErr   *DepthError
		unreadable *UnreadableError
		other      interface{ ToDiagnostic() diag.Diagnostic }
	)

	switch {
	case errors.As(err, &lexErrs):
		return lexErrs.Diagnostics()
	case errors.As(err, &parseErr):
		return []diag.Diagnostic{parseErr.ToDiagnostic()}
	case errors.As(err, &depthErr):
		return []diag.Diagnostic{depthErr.ToDiagnostic()}
	case errors.As(err, &unreadable):
		return []diag.Diagnostic{unreadable.ToDiagnostic()}
	case errors.As(err, &other):
		return []diag.Diagnostic{other.ToDiagnostic()}
	default:
		return []diag.Diagnostic{{
			Stage:    diag.StageWorkspace,
			Severity: diag.SeverityError,
			Message:  err.Error(),
			Span:     diag.Span{Filename: path},
		}}
	}
}
