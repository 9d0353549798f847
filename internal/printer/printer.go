// Package printer renders syntax trees in canonical layout: one attribute or
// item per line, four-space indentation inside inline module bodies, and
// normalised spacing between tokens. Printing never changes the token
// sequence, only the whitespace between tokens.
//
// Source also keeps comments. A comment is printed on its own line before the
// attribute, item or closing brace that follows it, or at the end of the line
// it trails. Comments anywhere else make Source fail with a CommentError.
package printer

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/malphas-lang/runefront/internal/ast"
	"github.com/malphas-lang/runefront/internal/lexer"
	"github.com/malphas-lang/runefront/internal/parser"
)

const indent = "    "

type out struct {
	b        strings.Builder
	depth    int
	comments *comments
}

func (o *out) write(s string) { o.b.WriteString(s) }
func (o *out) nl()            { o.b.WriteByte('\n') }
func (o *out) pad() {
	for i := 0; i < o.depth; i++ {
		o.b.WriteString(indent)
	}
}
func (o *out) line(s string)        { o.pad(); o.write(s); o.nl() }
func (o *out) withIndent(fn func()) { o.depth++; fn(); o.depth-- }

// leading writes the comments that precede tok, one per line.
func (o *out) leading(tok lexer.Token) {
	if o.comments == nil {
		return
	}
	for _, c := range o.comments.leading[tok.Span.Start] {
		o.line(c.Raw)
	}
	delete(o.comments.leading, tok.Span.Start)
}

// trailing writes the comments that follow tok on its line.
func (o *out) trailing(tok lexer.Token) {
	if o.comments == nil {
		return
	}
	for _, c := range o.comments.trailing[tok.Span.Start] {
		o.write(" ")
		o.write(c.Raw)
	}
	delete(o.comments.trailing, tok.Span.Start)
}

func (o *out) hasComments(lbrace, rbrace lexer.Token) bool {
	if o.comments == nil {
		return false
	}
	return len(o.comments.trailing[lbrace.Span.Start]) > 0 || len(o.comments.leading[rbrace.Span.Start]) > 0
}

// Fprint writes node to w.
func Fprint(w io.Writer, node ast.Node) error {
	if _, err := io.WriteString(w, Format(node)); err != nil {
		return errors.Wrap(err, "write formatted source")
	}
	return nil
}

// Format returns node rendered as text. Files and items end with a newline.
func Format(node ast.Node) string {
	var o out
	printNode(&o, node)
	return o.b.String()
}

// Source parses src as a compilation unit and formats it, comments included.
func Source(src string, opts ...parser.Option) (string, error) {
	file, err := parser.ParseSource(src, opts...)
	if err != nil {
		return "", err
	}

	toks := parser.LexWithTrivia(src, opts...)
	o := out{comments: collectComments(toks)}
	printFile(&o, file)
	o.leading(toks[len(toks)-1])
	if err := o.comments.stray(); err != nil {
		return "", err
	}
	return o.b.String(), nil
}

func printNode(o *out, node ast.Node) {
	switch n := node.(type) {
	case *ast.File:
		printFile(o, n)
	case ast.Item:
		printItem(o, n)
	default:
		o.write(Tokens(ast.ToTokens(node)))
	}
}

func printFile(o *out, file *ast.File) {
	for _, attr := range file.Attributes {
		printAttribute(o, attr)
	}
	for _, item := range file.Items {
		printItem(o, item)
	}
}

func printAttribute(o *out, attr *ast.Attribute) {
	o.leading(attr.Hash)
	o.pad()
	o.write(Tokens(ast.ToTokens(attr)))
	o.trailing(attr.Close)
	o.nl()
}

// keyword returns the first token after an item's attributes.
func keyword(item ast.Item) lexer.Token {
	if vis := item.Meta().Visibility; vis.Kind != ast.VisInherited {
		return vis.Pub
	}
	switch n := item.(type) {
	case *ast.ItemMod:
		return n.ModToken
	case *ast.ItemFn:
		return n.FnToken
	case *ast.ItemUse:
		return n.UseToken
	case *ast.ItemConst:
		return n.ConstToken
	}
	return lexer.Token{}
}

func printItem(o *out, item ast.Item) {
	meta := item.Meta()
	for _, attr := range meta.Attributes {
		printAttribute(o, attr)
	}

	o.leading(keyword(item))
	o.pad()
	if vis := visibility(&meta.Visibility); vis != "" {
		o.write(vis)
		o.write(" ")
	}

	switch n := item.(type) {
	case *ast.ItemMod:
		o.write("mod ")
		o.write(n.Name.Name)
		switch body := n.Body.(type) {
		case *ast.EmptyBody:
			o.write(";")
			o.trailing(body.Semi)
			o.nl()
		case *ast.InlineBody:
			empty := len(body.File.Attributes) == 0 && len(body.File.Items) == 0
			if empty && !o.hasComments(body.Open, body.Close) {
				o.write(" {}")
				o.trailing(body.Close)
				o.nl()
				return
			}
			o.write(" {")
			o.trailing(body.Open)
			o.nl()
			o.withIndent(func() {
				printFile(o, body.File)
				o.leading(body.Close)
			})
			o.pad()
			o.write("}")
			o.trailing(body.Close)
			o.nl()
		}

	case *ast.ItemFn:
		o.write("fn ")
		o.write(n.Name.Name)
		o.write(Tokens(ast.ToTokens(n.Params)))
		if len(n.Output) > 0 {
			o.write(" ")
			o.write(Tokens(n.Output))
		}
		o.write(" ")
		o.write(Tokens(ast.ToTokens(n.Body)))
		o.trailing(n.Body.Close)
		o.nl()

	case *ast.ItemUse:
		o.write("use ")
		o.write(Tokens(ast.ToTokens(n.Path)))
		o.write(";")
		o.trailing(n.Semi)
		o.nl()

	case *ast.ItemConst:
		o.write("const ")
		o.write(n.Name.Name)
		o.write(" = ")
		o.write(Tokens(n.Value))
		o.write(";")
		o.trailing(n.Semi)
		o.nl()
	}
}

func visibility(vis *ast.Visibility) string {
	if vis.Kind == ast.VisInherited {
		return ""
	}
	var toks []lexer.Token
	toks = append(toks, vis.Pub)
	if r := vis.Restriction; r != nil {
		toks = append(toks, r.Open)
		if r.In != nil {
			toks = append(toks, *r.In)
		}
		toks = append(toks, ast.ToTokens(r.Path)...)
		toks = append(toks, r.Close)
	}
	return Tokens(toks)
}

// Tokens joins tokens on one line with canonical spacing.
func Tokens(toks []lexer.Token) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 && spaceBetween(toks[i-1], tok) {
			b.WriteByte(' ')
		}
		b.WriteString(tok.String())
	}
	return b.String()
}

func spaceBetween(prev, next lexer.Token) bool {
	return !adjacent(prev, next) || fuses(prev, next)
}

// adjacent reports whether canonical layout writes next directly after prev.
func adjacent(prev, next lexer.Token) bool {
	switch prev.Type {
	case lexer.LPAREN, lexer.LBRACKET, lexer.DOUBLE_COLON, lexer.POUND, lexer.BANG, lexer.DOT, lexer.AT:
		return true
	case lexer.LBRACE:
		return next.Type == lexer.RBRACE
	}

	switch next.Type {
	case lexer.RPAREN, lexer.RBRACKET, lexer.COMMA, lexer.SEMICOLON, lexer.COLON,
		lexer.DOUBLE_COLON, lexer.DOT, lexer.QUESTION:
		return true
	case lexer.LPAREN, lexer.LBRACKET:
		return hugsDelimiter(prev.Type)
	case lexer.BANG:
		// `#!` and macro calls such as `assert!`
		return prev.Type == lexer.POUND || prev.Type == lexer.IDENT
	}
	return false
}

// fuses reports whether prev and next written together lex as something
// else, as `!` then `=` becomes `!=`.
func fuses(prev, next lexer.Token) bool {
	toks, errs := lexer.Tokenize(prev.String()+next.String(), "")
	return len(errs) > 0 || len(toks) != 3 || toks[0].Type != prev.Type || toks[1].Type != next.Type
}

// hugsDelimiter reports whether an opening paren or bracket directly follows
// tt, as in calls, indexing and `pub(crate)`.
func hugsDelimiter(tt lexer.TokenType) bool {
	switch tt {
	case lexer.IDENT, lexer.PUB, lexer.RPAREN, lexer.RBRACKET:
		return true
	}
	return false
}
