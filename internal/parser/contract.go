package parser

import (
	"strings"

	"github.com/malphas-lang/runefront/internal/lexer"
)

// Rule pairs the two capabilities every grammar node provides.
//
// Peek decides from lookahead alone whether the rule applies; it must not
// consume tokens and cannot fail. Parse consumes exactly the node's tokens or
// returns a *ParseError; it may leave a consumed prefix behind on failure.
type Rule[T any] struct {
	// Name describes what the rule expects, e.g. "`{`" or "module item".
	Name  string
	Peek  func(Peeker) bool
	Parse func(*Parser) (T, error)
}

// Alternate tries rules in declared order and parses the first one whose
// Peek matches. Earlier rules win when more than one could apply. When none
// match it fails with ErrExhaustedAlternatives naming every rule.
func Alternate[T any](p *Parser, rules ...Rule[T]) (T, error) {
	pk := p.stream.Peeker()
	for _, rule := range rules {
		if rule.Peek(pk) {
			p.logger.Debug("alternative selected",
				"rule", rule.Name,
				"pos", p.stream.Pos())
			return rule.Parse(p)
		}
	}

	var zero T
	names := make([]string, len(rules))
	for i, rule := range rules {
		names[i] = rule.Name
	}
	return zero, p.errorf(ErrExhaustedAlternatives, names...)
}

// TokenRule is the rule for a single token of kind tt.
func TokenRule(tt lexer.TokenType) Rule[lexer.Token] {
	return Rule[lexer.Token]{
		Name: tokenText(tt),
		Peek: func(pk Peeker) bool { return pk.Is(0, tt) },
		Parse: func(p *Parser) (lexer.Token, error) {
			return p.Expect(tt)
		},
	}
}

// Expect consumes the current token if it has kind tt.
func (p *Parser) Expect(tt lexer.TokenType) (lexer.Token, error) {
	if p.stream.Tok(0).Type != tt {
		return lexer.Token{}, p.errorf(ErrUnexpectedToken, tokenText(tt))
	}
	return p.stream.advance(), nil
}

// expectAny consumes the current token if it has any of the given kinds.
func (p *Parser) expectAny(tts ...lexer.TokenType) (lexer.Token, error) {
	cur := p.stream.Tok(0).Type
	for _, tt := range tts {
		if cur == tt {
			return p.stream.advance(), nil
		}
	}
	names := make([]string, len(tts))
	for i, tt := range tts {
		names[i] = tokenText(tt)
	}
	return lexer.Token{}, p.errorf(ErrUnexpectedToken, names...)
}

// errorf builds a ParseError located at the current token.
func (p *Parser) errorf(kind ErrorKind, expected ...string) *ParseError {
	found := p.stream.Tok(0)
	return &ParseError{
		Kind:     kind,
		Span:     found.Span,
		Found:    found,
		Expected: expected,
	}
}

// tokenText renders a token kind for expectation messages.
func tokenText(tt lexer.TokenType) string {
	switch {
	case tt == lexer.IDENT:
		return "identifier"
	case tt == lexer.EOF:
		return "end of input"
	case lexer.IsKeyword(tt):
		return "`" + strings.ToLower(string(tt)) + "`"
	default:
		return "`" + string(tt) + "`"
	}
}
