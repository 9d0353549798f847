package parser

import (
	"log/slog"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
)

type Option func(*options)

type options struct {
	filename string
	logger   *slog.Logger
}

// WithFilename configures the parser to attribute all emitted spans to the provided filename.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithLogger routes the parser's debug tracing to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Parser is a single-pass recursive descent parser over a token Stream.
//
// Every grammar rule is a Parse function paired with a Peek predicate (see
// Rule). Rules consume tokens only through Expect and its helpers, pick among
// alternatives only by Peek, and stop at the first error: there is no
// recovery, so callers abandon the whole parse when a rule fails.
//
// A Parser owns its stream exclusively and is used for a single parse.
// Independent parsers share nothing and may run concurrently.
type Parser struct {
	stream *Stream
	logger *slog.Logger
}

// New returns a parser over tokens produced by an external lexer.
func New(tokens []lexer.Token, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Parser{
		stream: NewStream(tokens),
		logger: logger,
	}
}

// Stream exposes the parser's token stream.
func (p *Parser) Stream() *Stream { return p.stream }

// ParseFile parses a full compilation unit and requires the input to end
// after the last item.
func (p *Parser) ParseFile() (*ast.File, error) {
	file, err := p.parseFile(lexer.EOF)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return file, nil
}

func (p *Parser) expectEOF() error {
	if !p.stream.IsEOF() {
		return p.errorf(ErrUnexpectedToken, tokenText(lexer.EOF))
	}
	return nil
}

// ParseWith runs parse over tokens and requires it to consume all of them.
func ParseWith[T any](tokens []lexer.Token, parse func(*Parser) (T, error), opts ...Option) (T, error) {
	p := New(tokens, opts...)
	node, err := parse(p)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := p.expectEOF(); err != nil {
		var zero T
		return zero, err
	}
	return node, nil
}

// Lex tokenizes src, returning LexErrors if the lexer reported any.
func Lex(src string, opts ...Option) ([]lexer.Token, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tokens, lexErrs := lexer.Tokenize(src, cfg.filename)
	if len(lexErrs) > 0 {
		return nil, LexErrors(lexErrs)
	}
	return tokens, nil
}

// LexWithTrivia tokenizes src keeping whitespace, newlines and comments.
// Lexical errors are not reported; run Lex for those.
func LexWithTrivia(src string, opts ...Option) []lexer.Token {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	l := lexer.NewWithTrivia(src)
	l.SetFilename(cfg.filename)
	return l.All()
}

// ParseSource lexes and parses a compilation unit.
func ParseSource(src string, opts ...Option) (*ast.File, error) {
	tokens, err := Lex(src, opts...)
	if err != nil {
		return nil, err
	}
	return New(tokens, opts...).ParseFile()
}

// ParseItemMod parses src as a single module item, attributes and visibility
// included.
func ParseItemMod(src string, opts ...Option) (*ast.ItemMod, error) {
	tokens, err := Lex(src, opts...)
	if err != nil {
		return nil, err
	}
	return ParseWith(tokens, func(p *Parser) (*ast.ItemMod, error) {
		meta, err := p.parseItemMeta()
		if err != nil {
			return nil, err
		}
		return p.parseItemMod(meta)
	}, opts...)
}
