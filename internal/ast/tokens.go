package ast

import "github.com/malphas-lang/runefront/internal/lexer"

// ToTokens flattens a node back into the tokens it was parsed from, in
// source order. Parsing a token stream and flattening the result yields the
// same stream, minus trivia and EOF.
func ToTokens(node Node) []lexer.Token {
	var out []lexer.Token
	appendTokens(&out, node)
	return out
}

func appendTokens(out *[]lexer.Token, node Node) {
	switch n := node.(type) {
	case *File:
		for _, attr := range n.Attributes {
			appendTokens(out, attr)
		}
		for _, item := range n.Items {
			appendTokens(out, item)
		}

	case *Attribute:
		*out = append(*out, n.Hash)
		if n.Bang != nil {
			*out = append(*out, *n.Bang)
		}
		*out = append(*out, n.Open)
		appendTokens(out, n.Path)
		*out = append(*out, n.Input...)
		*out = append(*out, n.Close)

	case *Path:
		for i, seg := range n.Segments {
			if i > 0 {
				*out = append(*out, n.Separators[i-1])
			}
			*out = append(*out, seg)
		}

	case *Ident:
		*out = append(*out, n.Token())

	case *Group:
		*out = append(*out, n.Open)
		*out = append(*out, n.Tokens...)
		*out = append(*out, n.Close)

	case *ItemMod:
		appendMeta(out, &n.ItemMeta)
		*out = append(*out, n.ModToken)
		appendTokens(out, n.Name)
		appendTokens(out, n.Body)

	case *EmptyBody:
		*out = append(*out, n.Semi)

	case *InlineBody:
		*out = append(*out, n.Open)
		appendTokens(out, n.File)
		*out = append(*out, n.Close)

	case *ItemFn:
		appendMeta(out, &n.ItemMeta)
		*out = append(*out, n.FnToken)
		appendTokens(out, n.Name)
		appendTokens(out, n.Params)
		*out = append(*out, n.Output...)
		appendTokens(out, n.Body)

	case *ItemUse:
		appendMeta(out, &n.ItemMeta)
		*out = append(*out, n.UseToken)
		appendTokens(out, n.Path)
		*out = append(*out, n.Semi)

	case *ItemConst:
		appendMeta(out, &n.ItemMeta)
		*out = append(*out, n.ConstToken)
		appendTokens(out, n.Name)
		*out = append(*out, n.Assign)
		*out = append(*out, n.Value...)
		*out = append(*out, n.Semi)
	}
}

func appendMeta(out *[]lexer.Token, meta *ItemMeta) {
	for _, attr := range meta.Attributes {
		appendTokens(out, attr)
	}
	appendVisibility(out, &meta.Visibility)
}

func appendVisibility(out *[]lexer.Token, vis *Visibility) {
	if vis.Kind == VisInherited {
		return
	}
	*out = append(*out, vis.Pub)
	if r := vis.Restriction; r != nil {
		*out = append(*out, r.Open)
		if r.In != nil {
			*out = append(*out, *r.In)
		}
		appendTokens(out, r.Path)
		*out = append(*out, r.Close)
	}
}
