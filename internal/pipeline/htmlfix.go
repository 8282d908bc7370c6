package pipeline

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fixups run on every element of the converted fragment, in order.
var fixups = []func(*html.Node){
	dropMarkdownAttr,
	hyphenateHeadingID,
}

// FixupHTML applies the element fixups to converted markdown and
// serializes the result as indented HTML. Malformed markup is repaired the
// way browsers repair it, never rejected.
func FixupHTML(content string) (string, error) {
	root, err := parseTree(content)
	if err != nil {
		return "", err
	}

	walkElements(root, func(n *html.Node) {
		for _, fix := range fixups {
			fix(n)
		}
	})

	return renderHTML(root)
}

// parseTree parses content as a whole document when it declares one, and
// otherwise as children of <body> gathered under a bare document node.
func parseTree(content string) (*html.Node, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		return html.Parse(strings.NewReader(content))
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func walkElements(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, visit)
	}
}

// dropMarkdownAttr removes the attribute that only steered the converter.
func dropMarkdownAttr(n *html.Node) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Namespace == "" && a.Key == "markdown"
	})
}

// hyphenateHeadingID rewrites underscores in h1-h6 IDs as hyphens.
func hyphenateHeadingID(n *html.Node) {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
	default:
		return
	}
	for i := range n.Attr {
		if a := &n.Attr[i]; a.Namespace == "" && a.Key == "id" {
			a.Val = strings.ReplaceAll(a.Val, "_", "-")
		}
	}
}
