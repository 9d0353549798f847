package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/malphas-lang/runefront/internal/lexer"
)

// ErrLookahead is returned by Stream.Nth for offsets the stream cannot
// report. Reaching the end of input is not an error; it reads as EOF.
var ErrLookahead = errors.New("lookahead offset out of range")

// SubstrateError is the panic value raised when a grammar rule consumes past
// the end of input. It marks a defect in the rule, not in the source text.
type SubstrateError struct {
	Pos  int
	Span lexer.Span
}

func (e *SubstrateError) Error() string {
	return fmt.Sprintf("advance past end of input at token %d (%s)", e.Pos, e.Span)
}

// Stream owns the token sequence and cursor for a single parse. The sequence
// never contains trivia and always ends with an EOF token.
// A Stream is not safe for concurrent use; each parse owns its own.
type Stream struct {
	tokens []lexer.Token
	pos    int
}

// NewStream builds a stream from lexer output. Trivia tokens are dropped and
// an EOF token is synthesized if the input lacks one.
func NewStream(tokens []lexer.Token) *Stream {
	filtered := make([]lexer.Token, 0, len(tokens)+1)
	for _, tok := range tokens {
		if lexer.IsTrivia(tok.Type) {
			continue
		}
		filtered = append(filtered, tok)
		if tok.Type == lexer.EOF {
			break
		}
	}

	if len(filtered) == 0 || filtered[len(filtered)-1].Type != lexer.EOF {
		var eof lexer.Span
		if len(filtered) > 0 {
			eof = filtered[len(filtered)-1].Span.Tail()
		}
		filtered = append(filtered, lexer.Token{Type: lexer.EOF, Span: eof})
	}

	return &Stream{tokens: filtered}
}

// Nth returns the token kind k positions ahead of the cursor without
// consuming anything. Offsets past the end report EOF.
func (s *Stream) Nth(k int) (lexer.TokenType, error) {
	if k < 0 {
		return "", errors.Wrapf(ErrLookahead, "offset %d", k)
	}
	return s.Tok(k).Type, nil
}

// Tok returns the token k positions ahead of the cursor. Offsets past the
// end return the EOF token.
func (s *Stream) Tok(k int) lexer.Token {
	idx := s.pos + k
	if idx < 0 || idx >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[idx]
}

// Pos returns the number of tokens consumed so far.
func (s *Stream) Pos() int { return s.pos }

// IsEOF reports whether the cursor sits on the EOF token.
func (s *Stream) IsEOF() bool { return s.tokens[s.pos].Type == lexer.EOF }

// Peeker returns a read-only lookahead view of the stream.
func (s *Stream) Peeker() Peeker { return Peeker{s: s} }

// advance consumes and returns the current token. Consuming the EOF token
// panics with *SubstrateError.
func (s *Stream) advance() lexer.Token {
	tok := s.tokens[s.pos]
	if tok.Type == lexer.EOF {
		panic(&SubstrateError{Pos: s.pos, Span: tok.Span})
	}
	s.pos++
	return tok
}

// Peeker is bounded, zero-consumption lookahead. It never fails: offsets
// outside the stream read as EOF and therefore match nothing.
type Peeker struct {
	s *Stream
}

// Nth returns the token kind at offset k.
func (p Peeker) Nth(k int) lexer.TokenType {
	tt, err := p.s.Nth(k)
	if err != nil {
		return lexer.EOF
	}
	return tt
}

// Is reports whether the token at offset k has kind tt.
func (p Peeker) Is(k int, tt lexer.TokenType) bool {
	return p.Nth(k) == tt
}
