package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if !fn(node) {
		return
	}

	switch n := node.(type) {
	case *File:
		for _, attr := range n.Attributes {
			Walk(attr, fn)
		}
		for _, item := range n.Items {
			Walk(item, fn)
		}

	case *Attribute:
		if n.Path != nil {
			Walk(n.Path, fn)
		}

	case *ItemMod:
		walkMeta(&n.ItemMeta, fn)
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *InlineBody:
		if n.File != nil {
			Walk(n.File, fn)
		}

	case *ItemFn:
		walkMeta(&n.ItemMeta, fn)
		if n.Name != nil {
			Walk(n.Name, fn)
		}
		if n.Params != nil {
			Walk(n.Params, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *ItemUse:
		walkMeta(&n.ItemMeta, fn)
		if n.Path != nil {
			Walk(n.Path, fn)
		}

	case *ItemConst:
		walkMeta(&n.ItemMeta, fn)
		if n.Name != nil {
			Walk(n.Name, fn)
		}
	}
}

func walkMeta(meta *ItemMeta, fn func(Node) bool) {
	for _, attr := range meta.Attributes {
		Walk(attr, fn)
	}
	if r := meta.Visibility.Restriction; r != nil && r.Path != nil {
		Walk(r.Path, fn)
	}
}

// Items returns every item reachable from node in pre-order, nested module
// contents included.
func Items(node Node) []Item {
	var items []Item
	Walk(node, func(n Node) bool {
		if item, ok := n.(Item); ok {
			items = append(items, item)
		}
		return true
	})
	return items
}
