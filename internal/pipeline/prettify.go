package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// indentUnit is written once per nesting level.
const indentUnit = " "

// voidElements never have a closing tag.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

// inlineElements stay on the line of their surrounding text.
var inlineElements = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Br: true,
	atom.Cite: true, atom.Code: true, atom.Del: true, atom.Dfn: true,
	atom.Em: true, atom.I: true, atom.Img: true, atom.Input: true,
	atom.Ins: true, atom.Kbd: true, atom.Label: true, atom.Mark: true,
	atom.Q: true, atom.S: true, atom.Samp: true, atom.Small: true,
	atom.Span: true, atom.Strong: true, atom.Sub: true, atom.Sup: true,
	atom.Time: true, atom.U: true, atom.Var: true, atom.Wbr: true,
}

// verbatimElements are whitespace-sensitive and rendered untouched.
var verbatimElements = map[atom.Atom]bool{
	atom.Pre: true, atom.Textarea: true, atom.Script: true, atom.Style: true,
}

// renderHTML renders the tree as indented HTML, one block element per line.
// Runs of text and inline elements are kept together on a single line so
// that inline spacing is preserved.
func renderHTML(doc *html.Node) (string, error) {
	var buf strings.Builder
	if err := writeChildren(&buf, doc, 0); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeChildren writes every child of parent at the given depth.
func writeChildren(buf *strings.Builder, parent *html.Node, depth int) error {
	var run []*html.Node

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		text, err := renderInline(run)
		run = run[:0]
		if err != nil {
			return err
		}
		if text != "" {
			writeLine(buf, depth, text)
		}
		return nil
	}

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if isInline(c) {
			run = append(run, c)
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		if err := writeBlock(buf, c, depth); err != nil {
			return err
		}
	}

	return flush()
}

// writeBlock writes a non-inline node and its subtree.
func writeBlock(buf *strings.Builder, n *html.Node, depth int) error {
	switch n.Type {
	case html.DocumentNode:
		return writeChildren(buf, n, depth)
	case html.ElementNode:
		// handled below
	default:
		text, err := renderInline([]*html.Node{n})
		if err != nil {
			return err
		}
		writeLine(buf, depth, text)
		return nil
	}

	if verbatimElements[n.DataAtom] {
		text, err := renderInline([]*html.Node{n})
		if err != nil {
			return err
		}
		writeLine(buf, depth, text)
		return nil
	}

	open := openTag(n)
	if voidElements[n.DataAtom] {
		writeLine(buf, depth, open)
		return nil
	}
	closing := "</" + n.Data + ">"

	if n.FirstChild == nil {
		writeLine(buf, depth, open+closing)
		return nil
	}

	if allInline(n) {
		var children []*html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			children = append(children, c)
		}
		inner, err := renderInline(children)
		if err != nil {
			return err
		}
		writeLine(buf, depth, open+inner+closing)
		return nil
	}

	writeLine(buf, depth, open)
	if err := writeChildren(buf, n, depth+1); err != nil {
		return err
	}
	writeLine(buf, depth, closing)
	return nil
}

// renderInline renders nodes back to back with x/net/html and trims the
// surrounding whitespace of the run.
func renderInline(nodes []*html.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// openTag renders the start tag of an element with its attributes in
// document order.
func openTag(n *html.Node) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.Data)
	for _, a := range n.Attr {
		sb.WriteByte(' ')
		if a.Namespace != "" {
			sb.WriteString(a.Namespace)
			sb.WriteByte(':')
		}
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	return sb.String()
}

// isInline reports whether n flows with the surrounding text.
func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		return inlineElements[n.DataAtom]
	}
	return false
}

// allInline reports whether every child of n is inline.
func allInline(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isInline(c) {
			return false
		}
	}
	return true
}

// writeLine writes text on its own line, indented by depth.
func writeLine(buf *strings.Builder, depth int, text string) {
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteString(text)
	buf.WriteByte('\n')
}
