package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
	"github.com/malphas-lang/runefront/internal/parser"
)

func parseItemMod(t *testing.T, src string) *ast.ItemMod {
	t.Helper()

	item, err := parser.ParseItemMod(src)
	require.NoError(t, err, "parsing %q", src)
	require.NotNil(t, item)
	return item
}

// roundtrip parses src as a module item and checks that flattening the node
// reproduces the lexed token stream exactly.
func roundtrip(t *testing.T, src string) *ast.ItemMod {
	t.Helper()

	item := parseItemMod(t, src)

	want, lexErrs := lexer.Tokenize(src, "")
	require.Empty(t, lexErrs)
	want = want[:len(want)-1] // EOF

	assert.Equal(t, want, ast.ToTokens(item), "token round trip for %q", src)
	return item
}

func inlineFile(t *testing.T, item *ast.ItemMod) *ast.File {
	t.Helper()

	body, ok := item.Body.(*ast.InlineBody)
	require.Truef(t, ok, "expected inline body, got %T", item.Body)
	require.NotNil(t, body.File)
	return body.File
}

func TestItemModExamples(t *testing.T) {
	item := roundtrip(t, "mod ruins {}")
	assert.Empty(t, item.Attributes)
	assert.Equal(t, "ruins", item.Name.Name)
	file := inlineFile(t, item)
	assert.Empty(t, file.Items)
	assert.Empty(t, file.Attributes)
	assert.True(t, file.Span().IsEmpty())

	item = roundtrip(t, "#[cfg(test)] mod tests {}")
	require.Len(t, item.Attributes, 1)
	assert.Equal(t, "cfg", item.Attributes[0].Path.String())
	assert.Equal(t, ast.AttrOuter, item.Attributes[0].Style)

	item = roundtrip(t, "mod whiskey_bravo { #![allow(dead_code)] fn x() {} }")
	assert.Empty(t, item.Attributes)
	file = inlineFile(t, item)
	require.Len(t, file.Attributes, 1)
	assert.Equal(t, ast.AttrInner, file.Attributes[0].Style)
	require.Len(t, file.Items, 1)
	assert.IsType(t, &ast.ItemFn{}, file.Items[0])

	item = roundtrip(t, "mod x;")
	semi, ok := item.Body.(*ast.EmptyBody)
	require.True(t, ok, "expected empty body, got %T", item.Body)
	assert.Equal(t, lexer.SEMICOLON, semi.Semi.Type)
	for _, tok := range ast.ToTokens(item) {
		assert.NotEqual(t, lexer.LBRACE, tok.Type)
		assert.NotEqual(t, lexer.RBRACE, tok.Type)
	}
}

func TestItemModRoundTrip(t *testing.T) {
	inputs := []string{
		"mod a;",
		"pub mod a;",
		"pub(crate) mod a {}",
		"pub(super) mod a;",
		"pub(self) mod a;",
		"pub(in crate::outer) mod a {}",
		"#[a] #[b::c(d = \"e\", [f], {g})] pub mod h;",
		"mod a { use std::fmt; const N = 1 + 2 * (3); fn f(x, y) -> i64 { x + y } }",
		"mod a { #![doc(\"inner\")] #![deny(x)] #[test] fn t() {} mod b { mod c; } }",
		"mod a {\n  // comment\n  mod b /* block */ {}\n}",
	}

	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			roundtrip(t, src)
		})
	}
}

func TestItemModSpans(t *testing.T) {
	tests := []struct {
		src      string
		nameSpan [2]int
		span     [2]int
	}{
		{"mod ruins {}", [2]int{0, 9}, [2]int{0, 12}},
		{"mod x;", [2]int{0, 5}, [2]int{0, 6}},
		{"pub mod x;", [2]int{0, 9}, [2]int{0, 10}},
		{"pub(crate) mod x {}", [2]int{0, 16}, [2]int{0, 19}},
		{"#[cfg(test)] mod tests {}", [2]int{13, 22}, [2]int{0, 25}},
		{"#[a] pub(in a::b) mod c { mod d; }", [2]int{5, 23}, [2]int{0, 34}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			item := parseItemMod(t, tt.src)

			name := item.NameSpan()
			assert.Equal(t, tt.nameSpan, [2]int{name.Start, name.End})
			span := item.Span()
			assert.Equal(t, tt.span, [2]int{span.Start, span.End})

			assert.True(t, span.Contains(name), "name span must lie within the item span")
			assert.True(t, name.Precedes(item.Body.Span()), "name span must precede the body")
			assert.True(t, span.Contains(item.Body.Span()))
		})
	}
}

func TestItemModBodyAlternation(t *testing.T) {
	item := parseItemMod(t, "mod x {}")
	assert.IsType(t, &ast.InlineBody{}, item.Body)

	item = parseItemMod(t, "mod x;")
	assert.IsType(t, &ast.EmptyBody{}, item.Body)

	for _, src := range []string{"mod x fn", "mod x", "mod x = 1;"} {
		t.Run(src, func(t *testing.T) {
			_, err := parser.ParseItemMod(src)
			require.Error(t, err)

			var perr *parser.ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.Equal(t, parser.ErrExhaustedAlternatives, perr.Kind)
			assert.Equal(t, []string{"`{`", "`;`"}, perr.Expected)
		})
	}

	_, err := parser.ParseItemMod("mod x")
	var perr *parser.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, lexer.EOF, perr.Found.Type)
	assert.Equal(t, "expected `{` or `;`, found end of input", perr.Message())
}

// nestedModules builds `mod m0 { mod m1 { ... } }` with depth modules.
func nestedModules(depth int) string {
	var b strings.Builder
	for i := 0; i < depth; i++ {
		fmt.Fprintf(&b, "mod m%d { ", i)
	}
	b.WriteString("fn leaf() {}")
	for i := 0; i < depth; i++ {
		b.WriteString(" }")
	}
	return b.String()
}

func TestItemModRecursiveNesting(t *testing.T) {
	for _, depth := range []int{1, 2, 50} {
		t.Run(fmt.Sprintf("depth=%d", depth), func(t *testing.T) {
			src := nestedModules(depth)
			item := roundtrip(t, src)

			current := item
			for level := 0; level < depth; level++ {
				require.Equal(t, fmt.Sprintf("m%d", level), current.Name.Name)
				file := inlineFile(t, current)
				require.Len(t, file.Items, 1)

				if level == depth-1 {
					fn, ok := file.Items[0].(*ast.ItemFn)
					require.True(t, ok)
					assert.Equal(t, "leaf", fn.Name.Name)
					break
				}

				next, ok := file.Items[0].(*ast.ItemMod)
				require.True(t, ok, "level %d: expected nested module, got %T", level, file.Items[0])
				assert.True(t, current.Span().Contains(next.Span()))
				current = next
			}

			assert.Equal(t, depth, parser.NestingDepth(ast.ToTokens(item))-1)
		})
	}
}

func TestMetaAttributeIsolation(t *testing.T) {
	item := parseItemMod(t, "#[outer] mod a { #![inner] #[nested] mod b {} }")

	require.Len(t, item.Attributes, 1)
	assert.Equal(t, "outer", item.Attributes[0].Path.String())

	file := inlineFile(t, item)
	require.Len(t, file.Attributes, 1)
	assert.Equal(t, "inner", file.Attributes[0].Path.String())
	assert.Equal(t, ast.AttrInner, file.Attributes[0].Style)

	require.Len(t, file.Items, 1)
	b := file.Items[0].(*ast.ItemMod)
	require.Len(t, b.Attributes, 1)
	assert.Equal(t, "nested", b.Attributes[0].Path.String())
	assert.Empty(t, inlineFile(t, b).Attributes)

	item = parseItemMod(t, "#[x] mod a { mod b; }")
	assert.Empty(t, inlineFile(t, item).Attributes, "outer attributes stay on the item")
}

func TestVisibilityKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind ast.VisibilityKind
	}{
		{"mod a;", ast.VisInherited},
		{"pub mod a;", ast.VisPublic},
		{"pub(crate) mod a;", ast.VisCrate},
		{"pub(super) mod a;", ast.VisSuper},
		{"pub(self) mod a;", ast.VisSelf},
		{"pub(in crate::x) mod a;", ast.VisIn},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			item := parseItemMod(t, tt.src)
			assert.Equal(t, tt.kind, item.Visibility.Kind)

			_, ok := item.Visibility.OptionSpan()
			assert.Equal(t, tt.kind != ast.VisInherited, ok)
		})
	}
}

func TestItemModErrors(t *testing.T) {
	tests := []struct {
		src      string
		kind     parser.ErrorKind
		expected []string
		found    lexer.TokenType
	}{
		{"mod 1;", parser.ErrUnexpectedToken, []string{"identifier"}, lexer.INT},
		{"pub mod;", parser.ErrUnexpectedToken, []string{"identifier"}, lexer.SEMICOLON},
		{"fn x() {}", parser.ErrUnexpectedToken, []string{"`mod`"}, lexer.FN},
		{"#[cfg(test] mod x;", parser.ErrUnexpectedToken, []string{"`)`"}, lexer.RBRACKET},
		{"mod a { mod b; ", parser.ErrUnexpectedToken, []string{"`}`"}, lexer.EOF},
		{"mod a { #![late] }", parser.ErrUnexpectedToken, nil, ""},
		{"mod a { mod b; #![late] }", parser.ErrExhaustedAlternatives,
			[]string{"module item", "function item", "use item", "const item"}, lexer.POUND},
		{"mod a; mod b;", parser.ErrUnexpectedToken, []string{"end of input"}, lexer.MOD},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := parser.ParseItemMod(tt.src)
			if tt.expected == nil {
				// inner attributes directly after `{` are accepted
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var perr *parser.ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T: %v", err, err)
			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, tt.expected, perr.Expected)
			assert.Equal(t, tt.found, perr.Found.Type)
			assert.Equal(t, perr.Found.Span, perr.Span)
		})
	}
}

func TestFnOutputStopsAtItemBoundary(t *testing.T) {
	tests := []struct {
		src   string
		found lexer.TokenType
	}{
		{"fn f(); mod hidden {}", lexer.SEMICOLON},
		{"fn f() -> T mod hidden {}", lexer.MOD},
		{"fn f() -> T", lexer.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := parser.ParseSource(tt.src)
			require.Error(t, err)

			var perr *parser.ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T: %v", err, err)
			assert.Equal(t, parser.ErrUnexpectedToken, perr.Kind)
			assert.Equal(t, []string{"`{`"}, perr.Expected)
			assert.Equal(t, tt.found, perr.Found.Type)
		})
	}

	file, err := parser.ParseSource("fn f() -> Vec<[i64; 2]> {} mod kept {}")
	require.NoError(t, err)
	require.Len(t, file.Items, 2)
	fn, ok := file.Items[0].(*ast.ItemFn)
	require.True(t, ok)
	assert.Len(t, fn.Output, 9)
	mod, ok := file.Items[1].(*ast.ItemMod)
	require.True(t, ok)
	assert.Equal(t, "kept", mod.Name.Name)
}

func TestNulDoesNotEndSource(t *testing.T) {
	_, err := parser.ParseSource("mod a;\x00 mod b { this is not valid at all")
	require.Error(t, err)

	var lexErrs parser.LexErrors
	require.True(t, errors.As(err, &lexErrs))
	require.Len(t, lexErrs, 1)
	assert.Equal(t, lexer.ErrIllegalRune, lexErrs[0].Kind)
}

func TestParseErrorDiagnostic(t *testing.T) {
	_, err := parser.ParseItemMod("mod x", parser.WithFilename("lib.rn"))
	var perr *parser.ParseError
	require.True(t, errors.As(err, &perr))

	d := perr.ToDiagnostic()
	assert.Equal(t, "PARSE_EXHAUSTED_ALTERNATIVES", string(d.Code))
	assert.Equal(t, "lib.rn", d.Span.Filename)
	assert.Equal(t, "expected `{` or `;`, found end of input", d.Message)
	require.Len(t, d.Labels, 1)
	assert.NotEmpty(t, d.Notes)
	assert.Equal(t, "lib.rn:1:6: expected `{` or `;`, found end of input", perr.Error())
}

func TestLexErrorsSurface(t *testing.T) {
	_, err := parser.ParseItemMod("mod $x;")
	require.Error(t, err)

	var lexErrs parser.LexErrors
	require.True(t, errors.As(err, &lexErrs))
	require.Len(t, lexErrs, 1)
	assert.Len(t, lexErrs.Diagnostics(), 1)
}
