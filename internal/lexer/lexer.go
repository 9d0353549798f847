package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/malphas-lang/runefront/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedString LexerErrorKind = iota
	ErrUnterminatedChar
	ErrUnterminatedBlockComment
	ErrIllegalRune
)

var errorCodes = map[LexerErrorKind]diag.Code{
	ErrUnterminatedString:       diag.CodeLexerUnterminatedString,
	ErrUnterminatedChar:         diag.CodeLexerUnterminatedChar,
	ErrUnterminatedBlockComment: diag.CodeLexerUnterminatedBlockComment,
	ErrIllegalRune:              diag.CodeLexerIllegalRune,
}

// LexerError is a problem found while tokenizing. Lexing continues past it.
type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (e LexerError) Error() string {
	return e.Span.String() + ": " + e.Message
}

// ToDiagnostic converts the error for rendering.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	code, ok := errorCodes[e.Kind]
	if !ok {
		code = "LEXER_UNKNOWN_ERROR"
	}
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     code,
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename,
			Line:     e.Span.Line,
			Column:   e.Span.Column,
			Start:    e.Span.Start,
			End:      e.Span.End,
		},
	}
}

// Lexer turns source text into tokens one at a time. Offsets in spans count
// runes.
type Lexer struct {
	src      []rune
	pos      int
	ch       rune // src[pos], or 0 past the end; see atEOF
	line     int
	column   int
	trivia   bool
	filename string

	Errors []LexerError
}

// mark is the position a token starts at.
type mark struct {
	line, column, off int
}

func newLexer(input string, trivia bool) *Lexer {
	l := &Lexer{src: []rune(input), pos: -1, line: 1, trivia: trivia}
	l.advance()
	return l
}

// New returns a lexer that drops whitespace and comments.
func New(input string) *Lexer { return newLexer(input, false) }

// NewWithTrivia returns a lexer that emits whitespace, newlines and comments
// as tokens.
func NewWithTrivia(input string) *Lexer { return newLexer(input, true) }

// SetFilename attributes every subsequent span to name.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// Tokenize lexes the whole input and returns every token up to and including
// EOF, together with any lexical errors.
func Tokenize(input string, filename string) ([]Token, []LexerError) {
	l := New(input)
	l.SetFilename(filename)
	return l.All(), l.Errors
}

// All drains the lexer. The final token is always EOF.
func (l *Lexer) All() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

// advance moves to the next rune. The line and column always describe the
// rune at pos.
func (l *Lexer) advance() {
	if l.pos >= 0 && l.pos < len(l.src) && l.src[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	if l.pos < len(l.src) {
		l.ch = l.src[l.pos]
	} else {
		l.ch = 0
	}
}

// atEOF reports whether the input is exhausted. A NUL rune inside the input
// is not the end.
func (l *Lexer) atEOF() bool { return l.pos >= len(l.src) }

func (l *Lexer) advanceN(n int) {
	for ; n > 0; n-- {
		l.advance()
	}
}

func (l *Lexer) lookahead(n int) rune {
	if i := l.pos + n; i < len(l.src) {
		return l.src[i]
	}
	return 0
}

func (l *Lexer) mark() mark {
	return mark{line: l.line, column: l.column, off: l.pos}
}

func (l *Lexer) spanFrom(m mark) Span {
	return Span{Filename: l.filename, Line: m.line, Column: m.column, Start: m.off, End: l.pos}
}

func (l *Lexer) text(m mark) string {
	return string(l.src[m.off:l.pos])
}

// emit builds a token whose raw text and value are the runes since m.
func (l *Lexer) emit(tt TokenType, m mark) Token {
	raw := l.text(m)
	return Token{Type: tt, Raw: raw, Value: raw, Span: l.spanFrom(m)}
}

func (l *Lexer) fail(kind LexerErrorKind, msg string, span Span) {
	span.Filename = l.filename
	l.Errors = append(l.Errors, LexerError{Kind: kind, Message: msg, Span: span})
}

// skip consumes runes while keep holds.
func (l *Lexer) skip(keep func(rune) bool) {
	for !l.atEOF() && keep(l.ch) {
		l.advance()
	}
}

// NextToken returns the next token. Past the end of input it keeps
// returning EOF.
func (l *Lexer) NextToken() Token {
	for {
		m := l.mark()

		switch {
		case l.atEOF():
			end := len(l.src)
			return Token{Type: EOF, Span: Span{Filename: l.filename, Line: m.line, Column: m.column, Start: end, End: end}}

		case l.ch == '\r' || l.ch == '\n':
			crlf := l.ch == '\r' && l.lookahead(1) == '\n'
			l.advance()
			if crlf {
				l.advance()
			}
			if l.trivia {
				return l.emit(NEWLINE, m)
			}

		case l.ch == ' ' || l.ch == '\t':
			l.skip(isBlank)
			if l.trivia {
				return l.emit(WHITESPACE, m)
			}

		case l.ch == '/' && l.lookahead(1) == '/':
			l.skip(func(r rune) bool { return r != '\n' && r != '\r' })
			if l.trivia {
				return l.emit(LINE_COMMENT, m)
			}

		case l.ch == '/' && l.lookahead(1) == '*':
			l.blockComment(m)
			if l.trivia {
				return l.emit(BLOCK_COMMENT, m)
			}

		case l.ch == '"':
			return l.quoted(m, STRING, ErrUnterminatedString, "string")

		case l.ch == '\'':
			return l.quoted(m, CHAR, ErrUnterminatedChar, "char")

		case isLetter(l.ch):
			l.skip(func(r rune) bool { return isLetter(r) || isDigit(r) })
			return l.emit(LookupIdent(l.text(m)), m)

		case isDigit(l.ch):
			return l.emit(l.number(), m)

		default:
			if op, ok := l.operator(); ok {
				return l.emit(op, m)
			}
			l.advance()
			tok := l.emit(ILLEGAL, m)
			l.fail(ErrIllegalRune, "illegal character "+strconv.Quote(tok.Raw), tok.Span)
			return tok
		}
	}
}

// blockComment consumes a block comment starting at `/*`. Comments nest.
func (l *Lexer) blockComment(m mark) {
	l.advanceN(2)
	for depth := 1; depth > 0; {
		switch {
		case l.atEOF():
			l.fail(ErrUnterminatedBlockComment, "unterminated block comment", l.spanFrom(m))
			return
		case l.ch == '/' && l.lookahead(1) == '*':
			l.advanceN(2)
			depth++
		case l.ch == '*' && l.lookahead(1) == '/':
			l.advanceN(2)
			depth--
		default:
			l.advance()
		}
	}
}

// number scans a decimal, 0x hex, 0b binary or floating point literal.
func (l *Lexer) number() TokenType {
	first := l.ch
	l.advance()

	digitOr := func(pred func(rune) bool) func(rune) bool {
		return func(r rune) bool { return pred(r) || r == '_' }
	}

	if first == '0' {
		switch l.ch {
		case 'x', 'X':
			l.advance()
			l.skip(digitOr(isHexDigit))
			return INT
		case 'b', 'B':
			l.advance()
			l.skip(digitOr(func(r rune) bool { return r == '0' || r == '1' }))
			return INT
		}
	}

	l.skip(digitOr(isDigit))
	tt := INT
	if l.ch == '.' && isDigit(l.lookahead(1)) {
		tt = FLOAT
		l.advance()
		l.skip(digitOr(isDigit))
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.lookahead(1)
		signed := (next == '+' || next == '-') && isDigit(l.lookahead(2))
		if isDigit(next) || signed {
			tt = FLOAT
			l.advance()
			if signed {
				l.advance()
			}
			l.skip(digitOr(isDigit))
		}
	}
	return tt
}

// operator consumes the longest punctuation token at the current rune.
func (l *Lexer) operator() (TokenType, bool) {
	rest := l.src[l.pos:]
	for _, op := range operators {
		text := []rune(string(op))
		if len(rest) >= len(text) && string(rest[:len(text)]) == string(op) {
			l.advanceN(len(text))
			return op, true
		}
	}
	return "", false
}

var escapes = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
}

// quoted scans a string or char literal. The token value has escapes
// decoded; unknown escapes are kept as written. An unterminated literal
// becomes an ILLEGAL token and an error.
func (l *Lexer) quoted(m mark, tt TokenType, kind LexerErrorKind, what string) Token {
	quote := l.ch
	var value strings.Builder
	l.advance()

	for {
		switch {
		case l.ch == quote:
			l.advance()
			tok := l.emit(tt, m)
			tok.Value = value.String()
			return tok

		case l.atEOF():
			l.fail(kind, "unterminated "+what+" literal", l.spanFrom(m))
			return l.emit(ILLEGAL, m)

		case l.ch == '\n' || l.ch == '\r':
			l.fail(kind, "newline in "+what+" literal", l.spanFrom(m))
			return l.emit(ILLEGAL, m)

		case l.ch == '\\':
			l.advance()
			if l.atEOF() {
				continue
			}
			if r, ok := escapes[l.ch]; ok {
				value.WriteRune(r)
			} else {
				value.WriteRune('\\')
				value.WriteRune(l.ch)
			}
			l.advance()

		default:
			value.WriteRune(l.ch)
			l.advance()
		}
	}
}

func isBlank(ch rune) bool { return ch == ' ' || ch == '\t' }

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

// isDigit accepts ASCII digits only.
func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
