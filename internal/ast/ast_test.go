package ast_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
	"github.com/malphas-lang/runefront/internal/parser"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()

	file, err := parser.ParseSource(src)
	require.NoError(t, err)
	return file
}

func TestWalkVisitsEveryNode(t *testing.T) {
	file := parse(t, "#[a] pub(in crate::x) mod m { #![b] fn f() {} use y; }")

	counts := map[string]int{}
	ast.Walk(file, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.File:
			counts["file"]++
		case *ast.Attribute:
			counts["attr"]++
		case *ast.Path:
			counts["path"]++
		case *ast.Ident:
			counts["ident"]++
		case ast.Item:
			counts["item"]++
		}
		return true
	})

	assert.Equal(t, map[string]int{
		"file":  2,
		"attr":  2,
		"path":  4, // two attribute paths, the visibility path, `y`
		"ident": 2, // `m`, `f`
		"item":  3,
	}, counts)
}

func TestWalkPrunes(t *testing.T) {
	file := parse(t, "mod a { mod b { mod c; } } mod d;")

	var names []string
	ast.Walk(file, func(n ast.Node) bool {
		m, ok := n.(*ast.ItemMod)
		if !ok {
			return true
		}
		names = append(names, m.Name.Name)
		return m.Name.Name != "a"
	})
	assert.Equal(t, []string{"a", "d"}, names)
}

func TestItemsPreOrder(t *testing.T) {
	file := parse(t, "mod a { fn f() {} mod b { const C = 1; } } use z;")

	var kinds []string
	for _, item := range ast.Items(file) {
		kinds = append(kinds, ast.Describe(item).Kind+":"+ast.Describe(item).Name)
	}
	assert.Equal(t, []string{"ItemMod:a", "ItemFn:f", "ItemMod:b", "ItemConst:C", "ItemUse:z"}, kinds)
}

func TestDescribe(t *testing.T) {
	file := parse(t, "#[cfg(test)] pub mod tests { mod inner; }")
	outline := ast.Describe(file)

	require.Len(t, outline.Children, 1)
	mod := outline.Children[0]
	assert.Equal(t, "ItemMod", mod.Kind)
	assert.Equal(t, "tests", mod.Name)
	assert.Equal(t, "pub", mod.Visibility)
	assert.Equal(t, lexer.Span{Line: 1, Column: 1, Start: 0, End: 41}, mod.Span)

	require.Len(t, mod.Children, 2)
	assert.Equal(t, "Attribute", mod.Children[0].Kind)
	assert.Equal(t, "cfg", mod.Children[0].Name)
	assert.Equal(t, "outer", mod.Children[0].Style)

	body := mod.Children[1]
	assert.Equal(t, "InlineBody", body.Kind)
	require.Len(t, body.Children, 1)
	nested := body.Children[0]
	assert.Equal(t, "File", nested.Kind)
	require.Len(t, nested.Children, 1)
	assert.Equal(t, "EmptyBody", nested.Children[0].Children[0].Kind)
}

func TestOutlineEncodes(t *testing.T) {
	outline := ast.Describe(parse(t, "mod x;"))

	data, err := json.Marshal(outline)
	require.NoError(t, err)

	var decoded ast.Outline
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *outline, decoded)

	out, err := yaml.Marshal(outline)
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: ItemMod")
	assert.Contains(t, string(out), "name: x")
}

func TestSpanJoinInSourceOrder(t *testing.T) {
	a := lexer.Span{Line: 1, Column: 1, Start: 0, End: 3}
	b := lexer.Span{Line: 1, Column: 5, Start: 4, End: 9}

	joined := a.Join(b)
	assert.Equal(t, lexer.Span{Line: 1, Column: 1, Start: 0, End: 9}, joined)
	assert.True(t, joined.Contains(a))
	assert.True(t, joined.Contains(b))
	assert.True(t, a.Precedes(b))
}
