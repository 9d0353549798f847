// Package index numbers the items of a parsed tree. The parser leaves every
// identity tag unset; Assign is the pass that fills them in, so later stages
// (caches, registries) can refer to items by a small integer.
package index

import (
	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/hash"
)

// Entry records one numbered item.
type Entry struct {
	ID   ast.ID
	Item ast.Item
	// Path is the item's name qualified by its enclosing modules, e.g.
	// ["outer", "inner", "f"]. Use items have no name and keep only the
	// module path.
	Path []string
}

// Fingerprint hashes the qualified path.
func (e Entry) Fingerprint() hash.Hash { return hash.Of(e.Path...) }

// Table maps identity tags back to items.
type Table struct {
	entries []Entry
}

// Assign numbers every item reachable from root in pre-order, starting at 1.
// Tags from an earlier pass are overwritten, so running Assign twice yields
// the same numbering.
func Assign(root ast.Node) *Table {
	t := &Table{}
	t.visit(root, nil)
	return t
}

func (t *Table) visit(node ast.Node, scope []string) {
	switch n := node.(type) {
	case *ast.File:
		for _, item := range n.Items {
			t.visit(item, scope)
		}

	case *ast.ItemMod:
		path := t.add(n, scope, n.Name.Name)
		if body, ok := n.Body.(*ast.InlineBody); ok {
			t.visit(body.File, path)
		}

	case *ast.InlineBody:
		t.visit(n.File, scope)

	case ast.Item:
		t.add(n, scope, itemName(n))
	}
}

func (t *Table) add(item ast.Item, scope []string, name string) []string {
	path := make([]string, len(scope), len(scope)+1)
	copy(path, scope)
	if name != "" {
		path = append(path, name)
	}

	id := ast.ID(len(t.entries) + 1)
	*item.IDSlot() = id
	t.entries = append(t.entries, Entry{ID: id, Item: item, Path: path})
	return path
}

func itemName(item ast.Item) string {
	switch n := item.(type) {
	case *ast.ItemMod:
		return n.Name.Name
	case *ast.ItemFn:
		return n.Name.Name
	case *ast.ItemConst:
		return n.Name.Name
	default:
		return ""
	}
}

// Len returns the number of numbered items.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the entry tagged id.
func (t *Table) Lookup(id ast.ID) (Entry, bool) {
	if !id.IsValid() || int(id) > len(t.entries) {
		return Entry{}, false
	}
	return t.entries[id-1], true
}

// Entries returns every entry in ID order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Clear resets every identity tag under root to ast.NoID.
func Clear(root ast.Node) {
	for _, item := range ast.Items(root) {
		*item.IDSlot() = ast.NoID
	}
}
