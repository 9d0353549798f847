package parser

import (
	"context"

	"github.com/pkg/errors"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
)

type parseResult struct {
	file  *ast.File
	err   error
	panic any
}

// ParseContext parses tokens as a compilation unit, giving up when ctx is
// done. The parse itself is not interruptible: on cancellation the running
// parse is abandoned and its result discarded.
func ParseContext(ctx context.Context, tokens []lexer.Token, opts ...Option) (*ast.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "parse not started")
	}

	done := make(chan parseResult, 1)
	go func() {
		var res parseResult
		defer func() {
			if r := recover(); r != nil {
				res.panic = r
			}
			done <- res
		}()
		res.file, res.err = New(tokens, opts...).ParseFile()
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "parse abandoned")
	case res := <-done:
		if res.panic != nil {
			panic(res.panic)
		}
		return res.file, res.err
	}
}

// NestingDepth returns the deepest brace nesting in tokens. Callers that
// want to bound recursion check it before parsing; the parser itself imposes
// no limit.
func NestingDepth(tokens []lexer.Token) int {
	depth, deepest := 0, 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.LBRACE:
			depth++
			deepest = max(deepest, depth)
		case lexer.RBRACE:
			if depth > 0 {
				depth--
			}
		}
	}
	return deepest
}
