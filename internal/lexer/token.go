package lexer

import "fmt"

// TokenType names a class of token. Punctuation types are their own text;
// other types are upper-case names.
type TokenType string

// Span is the half-open range [Start, End) of source runes covered by a
// token or node. Line and Column are 1-based and describe Start.
type Span struct {
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Start    int    `json:"start" yaml:"start"`
	End      int    `json:"end" yaml:"end"`
}

// Join returns the smallest span covering both s and other.
// Callers join spans in source order; the position metadata (line, column)
// is taken from whichever span starts first.
func (s Span) Join(other Span) Span {
	out := s
	if other.Start < s.Start {
		out.Line = other.Line
		out.Column = other.Column
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	if out.Filename == "" {
		out.Filename = other.Filename
	}
	return out
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Precedes reports whether s ends at or before other starts.
func (s Span) Precedes(other Span) bool {
	return s.End <= other.Start
}

// IsEmpty reports whether the span is a zero-width position.
func (s Span) IsEmpty() bool { return s.Start == s.End }

// Len returns the number of runes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Tail returns the zero-width position at the end of s.
func (s Span) Tail() Span {
	return Span{Filename: s.Filename, Line: s.Line, Column: s.Column + s.Len(), Start: s.End, End: s.End}
}

func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Token is one lexical token. Tokens are values and never change once the
// lexer hands them out.
type Token struct {
	Type TokenType
	// Raw is the source text exactly as written.
	Raw string
	// Value equals Raw except for string and char literals, where escapes
	// are decoded and quotes removed.
	Value string
	Span  Span
}

func (t Token) String() string {
	if t.Raw == "" {
		return string(t.Type)
	}
	return t.Raw
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"  // add, foobar, x, y, ...
	INT    TokenType = "INT"    // 1343456
	FLOAT  TokenType = "FLOAT"  // 3.14, 1e9
	STRING TokenType = "STRING" // "hello"
	CHAR   TokenType = "CHAR"   // 'a'

	ASSIGN    TokenType = "="
	FATARROW  TokenType = "=>"
	PLUS      TokenType = "+"
	MINUS     TokenType = "-"
	BANG      TokenType = "!"
	AMPERSAND TokenType = "&"
	ASTERISK  TokenType = "*"
	SLASH     TokenType = "/"
	PERCENT   TokenType = "%"
	CARET     TokenType = "^"
	PIPE      TokenType = "|"
	AND       TokenType = "&&"
	OR        TokenType = "||"
	QUESTION  TokenType = "?"
	SHL       TokenType = "<<"
	SHR       TokenType = ">>"

	PLUS_ASSIGN    TokenType = "+="
	MINUS_ASSIGN   TokenType = "-="
	STAR_ASSIGN    TokenType = "*="
	SLASH_ASSIGN   TokenType = "/="
	PERCENT_ASSIGN TokenType = "%="
	CARET_ASSIGN   TokenType = "^="
	AMP_ASSIGN     TokenType = "&="
	PIPE_ASSIGN    TokenType = "|="
	SHL_ASSIGN     TokenType = "<<="
	SHR_ASSIGN     TokenType = ">>="

	LT     TokenType = "<"
	GT     TokenType = ">"
	EQ     TokenType = "=="
	NOT_EQ TokenType = "!="
	LE     TokenType = "<="
	GE     TokenType = ">="

	COMMA        TokenType = ","
	SEMICOLON    TokenType = ";"
	COLON        TokenType = ":"
	DOUBLE_COLON TokenType = "::"
	DOT          TokenType = "."
	DOT_DOT      TokenType = ".."
	POUND        TokenType = "#"
	AT           TokenType = "@"

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	ARROW TokenType = "->"

	LET      TokenType = "LET"
	MUT      TokenType = "MUT"
	CONST    TokenType = "CONST"
	FN       TokenType = "FN"
	STRUCT   TokenType = "STRUCT"
	ENUM     TokenType = "ENUM"
	IMPL     TokenType = "IMPL"
	MOD      TokenType = "MOD"
	PUB      TokenType = "PUB"
	CRATE    TokenType = "CRATE"
	SUPER    TokenType = "SUPER"
	SELF     TokenType = "SELF"
	USE      TokenType = "USE"
	AS       TokenType = "AS"
	IF       TokenType = "IF"
	ELSE     TokenType = "ELSE"
	MATCH    TokenType = "MATCH"
	WHILE    TokenType = "WHILE"
	LOOP     TokenType = "LOOP"
	FOR      TokenType = "FOR"
	IN       TokenType = "IN"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	RETURN   TokenType = "RETURN"
	ASYNC    TokenType = "ASYNC"
	AWAIT    TokenType = "AWAIT"
	YIELD    TokenType = "YIELD"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"

	// Trivia, emitted only by NewWithTrivia.
	LINE_COMMENT  TokenType = "LINE_COMMENT"
	BLOCK_COMMENT TokenType = "BLOCK_COMMENT"
	WHITESPACE    TokenType = "WHITESPACE"
	NEWLINE       TokenType = "NEWLINE"
)

// keywordList maps each reserved word to its token type. The map and set
// below are derived from it.
var keywordList = []struct {
	word string
	tt   TokenType
}{
	{"let", LET}, {"mut", MUT}, {"const", CONST}, {"fn", FN},
	{"struct", STRUCT}, {"enum", ENUM}, {"impl", IMPL}, {"mod", MOD},
	{"pub", PUB}, {"crate", CRATE}, {"super", SUPER}, {"self", SELF},
	{"use", USE}, {"as", AS}, {"if", IF}, {"else", ELSE},
	{"match", MATCH}, {"while", WHILE}, {"loop", LOOP}, {"for", FOR},
	{"in", IN}, {"break", BREAK}, {"continue", CONTINUE}, {"return", RETURN},
	{"async", ASYNC}, {"await", AWAIT}, {"yield", YIELD},
	{"true", TRUE}, {"false", FALSE},
}

var (
	keywords   = make(map[string]TokenType, len(keywordList))
	keywordSet = make(map[TokenType]struct{}, len(keywordList))
)

func init() {
	for _, kw := range keywordList {
		keywords[kw.word] = kw.tt
		keywordSet[kw.tt] = struct{}{}
	}
}

// operators lists every punctuation token, longest first, so the lexer can
// take the longest match at each position.
var operators = []TokenType{
	SHL_ASSIGN, SHR_ASSIGN,
	FATARROW, EQ, NOT_EQ, LE, GE, AND, OR, SHL, SHR, ARROW, DOUBLE_COLON, DOT_DOT,
	PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN,
	CARET_ASSIGN, AMP_ASSIGN, PIPE_ASSIGN,
	ASSIGN, PLUS, MINUS, BANG, AMPERSAND, ASTERISK, SLASH, PERCENT, CARET, PIPE,
	QUESTION, LT, GT, COMMA, SEMICOLON, COLON, DOT, POUND, AT,
	LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// IsKeyword reports whether tt is a reserved word.
func IsKeyword(tt TokenType) bool {
	_, ok := keywordSet[tt]
	return ok
}

// IsTrivia reports whether tt carries no syntactic meaning.
func IsTrivia(tt TokenType) bool {
	switch tt {
	case LINE_COMMENT, BLOCK_COMMENT, WHITESPACE, NEWLINE:
		return true
	default:
		return false
	}
}
