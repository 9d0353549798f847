package parser

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/runefront/internal/lexer"
)

func lex(t *testing.T, src string) []lexer.Token {
	t.Helper()

	tokens, err := Lex(src)
	require.NoError(t, err)
	return tokens
}

func TestStreamLookahead(t *testing.T) {
	s := NewStream(lex(t, "mod x;"))

	tests := []struct {
		k    int
		want lexer.TokenType
	}{
		{0, lexer.MOD},
		{1, lexer.IDENT},
		{2, lexer.SEMICOLON},
		{3, lexer.EOF},
		{100, lexer.EOF},
	}
	for _, tt := range tests {
		got, err := s.Nth(tt.k)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Nth(%d)", tt.k)
	}

	_, err := s.Nth(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLookahead))

	assert.Equal(t, lexer.EOF, s.Peeker().Nth(-1), "peeker never fails")
	assert.Equal(t, 0, s.Pos(), "lookahead consumes nothing")
}

func TestStreamDropsTriviaAndSynthesizesEOF(t *testing.T) {
	l := lexer.NewWithTrivia("mod /* c */ x // tail\n;")
	tokens := l.All()
	require.Empty(t, l.Errors)
	tokens = tokens[:len(tokens)-1]

	s := NewStream(tokens)
	var kinds []lexer.TokenType
	for !s.IsEOF() {
		kinds = append(kinds, s.advance().Type)
	}
	assert.Equal(t, []lexer.TokenType{lexer.MOD, lexer.IDENT, lexer.SEMICOLON}, kinds)

	eof := s.Tok(0)
	assert.Equal(t, lexer.EOF, eof.Type)
	assert.True(t, eof.Span.IsEmpty())

	empty := NewStream(nil)
	assert.True(t, empty.IsEOF())
}

func TestAdvancePastEOFPanics(t *testing.T) {
	s := NewStream(lex(t, "mod"))
	s.advance()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		serr, ok := r.(*SubstrateError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, 1, serr.Pos)
		assert.Contains(t, serr.Error(), "advance past end of input")
	}()
	s.advance()
}

func TestAlternateOrderAndExhaustion(t *testing.T) {
	rule := func(name string, tt lexer.TokenType) Rule[string] {
		return Rule[string]{
			Name: name,
			Peek: func(pk Peeker) bool { return pk.Is(0, tt) },
			Parse: func(p *Parser) (string, error) {
				if _, err := p.Expect(tt); err != nil {
					return "", err
				}
				return name, nil
			},
		}
	}

	p := New(lex(t, "mod"))
	got, err := Alternate(p, rule("first", lexer.MOD), rule("second", lexer.MOD))
	require.NoError(t, err)
	assert.Equal(t, "first", got, "earlier rule wins on overlap")
	assert.True(t, p.Stream().IsEOF())

	p = New(lex(t, "fn"))
	_, err = Alternate(p, rule("a", lexer.MOD), rule("b", lexer.USE), rule("c", lexer.CONST))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ErrExhaustedAlternatives, perr.Kind)
	assert.Equal(t, "expected a, b or c, found `fn`", perr.Message())
	assert.Equal(t, 0, p.Stream().Pos(), "failed alternation consumes nothing")
}

func TestTokenRule(t *testing.T) {
	semi := TokenRule(lexer.SEMICOLON)
	assert.Equal(t, "`;`", semi.Name)

	p := New(lex(t, "; ;"))
	require.True(t, semi.Peek(p.Stream().Peeker()))
	tok, err := semi.Parse(p)
	require.NoError(t, err)
	assert.Equal(t, lexer.SEMICOLON, tok.Type)
	assert.Equal(t, 1, p.Stream().Pos())
}

func TestTokenText(t *testing.T) {
	assert.Equal(t, "identifier", tokenText(lexer.IDENT))
	assert.Equal(t, "end of input", tokenText(lexer.EOF))
	assert.Equal(t, "`mod`", tokenText(lexer.MOD))
	assert.Equal(t, "`}`", tokenText(lexer.RBRACE))
}

func TestParseContext(t *testing.T) {
	tokens := lex(t, "mod a { mod b; } fn main() {}")

	file, err := ParseContext(context.Background(), tokens)
	require.NoError(t, err)
	require.Len(t, file.Items, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ParseContext(ctx, tokens)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	ctx, cancel = context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err = ParseContext(ctx, lex(t, "mod a {"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
}

func TestNestingDepth(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 0},
		{"mod a;", 0},
		{"mod a {}", 1},
		{"mod a { mod b {} mod c { fn d() {} } }", 3},
		{"} } mod a {}", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NestingDepth(lex(t, tt.src)), tt.src)
	}
}

func TestParsersRunIndependently(t *testing.T) {
	srcs := []string{"mod a;", "mod b { mod c; }", "pub mod d {}", "#[x] mod e;"}

	errs := make(chan error, len(srcs)*8)
	for i := 0; i < 8; i++ {
		for _, src := range srcs {
			go func(src string) {
				_, err := ParseSource(src)
				errs <- err
			}(src)
		}
	}
	for i := 0; i < cap(errs); i++ {
		assert.NoError(t, <-errs)
	}
}
