package ast

import (
	"github.com/malphas-lang/runefront/internal/lexer"
)

// Outline is a plain-data rendering of a node tree suitable for JSON or YAML
// encoding.
type Outline struct {
	Kind       string     `json:"kind" yaml:"kind"`
	Span       lexer.Span `json:"span" yaml:"span"`
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	ID         ID         `json:"id,omitempty" yaml:"id,omitempty"`
	Visibility string     `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Style      string     `json:"style,omitempty" yaml:"style,omitempty"`
	Children   []*Outline `json:"children,omitempty" yaml:"children,omitempty"`
}

// Describe converts node into an Outline.
func Describe(node Node) *Outline {
	o := &Outline{Span: node.Span()}

	switch n := node.(type) {
	case *File:
		o.Kind = "File"
		for _, attr := range n.Attributes {
			o.Children = append(o.Children, Describe(attr))
		}
		for _, item := range n.Items {
			o.Children = append(o.Children, Describe(item))
		}

	case *Attribute:
		o.Kind = "Attribute"
		o.Name = n.Path.String()
		o.Style = n.Style.String()

	case *ItemMod:
		o.Kind = "ItemMod"
		describeItem(o, n, n.Name.Name)
		switch body := n.Body.(type) {
		case *EmptyBody:
			o.Children = append(o.Children, &Outline{Kind: "EmptyBody", Span: body.Span()})
		case *InlineBody:
			inline := &Outline{Kind: "InlineBody", Span: body.Span()}
			inline.Children = append(inline.Children, Describe(body.File))
			o.Children = append(o.Children, inline)
		}

	case *ItemFn:
		o.Kind = "ItemFn"
		describeItem(o, n, n.Name.Name)

	case *ItemUse:
		o.Kind = "ItemUse"
		describeItem(o, n, n.Path.String())

	case *ItemConst:
		o.Kind = "ItemConst"
		describeItem(o, n, n.Name.Name)
	}

	return o
}

func describeItem(o *Outline, item Item, name string) {
	meta := item.Meta()
	o.Name = name
	o.ID = *item.IDSlot()
	if meta.Visibility.IsPublic() {
		o.Visibility = meta.Visibility.Kind.String()
	}
	for _, attr := range meta.Attributes {
		o.Children = append(o.Children, Describe(attr))
	}
}
