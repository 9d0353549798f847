package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/parser"
)

const source = `
mod outer {
    use std::fmt;
    mod inner {
        fn f() {}
    }
    const N = 1;
}
mod leaf;
`

func parse(t *testing.T) *ast.File {
	t.Helper()

	file, err := parser.ParseSource(source)
	require.NoError(t, err)
	return file
}

func TestParserLeavesIDsUnset(t *testing.T) {
	for _, item := range ast.Items(parse(t)) {
		assert.Equal(t, ast.NoID, *item.IDSlot())
		assert.False(t, item.IDSlot().IsValid())
	}
}

func TestAssign(t *testing.T) {
	file := parse(t)
	table := Assign(file)
	require.Equal(t, 6, table.Len())

	want := []struct {
		id   ast.ID
		path []string
	}{
		{1, []string{"outer"}},
		{2, []string{"outer"}},
		{3, []string{"outer", "inner"}},
		{4, []string{"outer", "inner", "f"}},
		{5, []string{"outer", "N"}},
		{6, []string{"leaf"}},
	}

	for i, entry := range table.Entries() {
		assert.Equal(t, want[i].id, entry.ID)
		assert.Equal(t, want[i].path, entry.Path)
		assert.Equal(t, entry.ID, *entry.Item.IDSlot())

		found, ok := table.Lookup(entry.ID)
		require.True(t, ok)
		assert.Same(t, entry.Item, found.Item)
	}

	assert.IsType(t, &ast.ItemUse{}, table.Entries()[1].Item)

	_, ok := table.Lookup(ast.NoID)
	assert.False(t, ok)
	_, ok = table.Lookup(7)
	assert.False(t, ok)
}

func TestAssignIsStable(t *testing.T) {
	file := parse(t)
	first := Assign(file)
	second := Assign(file)

	require.Equal(t, first.Len(), second.Len())
	for i, entry := range first.Entries() {
		assert.Equal(t, entry.ID, second.Entries()[i].ID)
		assert.Equal(t, entry.Fingerprint(), second.Entries()[i].Fingerprint())
	}
}

func TestFingerprintsDistinguishScopes(t *testing.T) {
	file, err := parser.ParseSource("mod a { fn f() {} } mod b { fn f() {} }")
	require.NoError(t, err)

	entries := Assign(file).Entries()
	require.Len(t, entries, 4)
	assert.NotEqual(t, entries[1].Fingerprint(), entries[3].Fingerprint())
}

func TestClear(t *testing.T) {
	file := parse(t)
	Assign(file)
	Clear(file)

	for _, item := range ast.Items(file) {
		assert.Equal(t, ast.NoID, *item.IDSlot())
	}
}
