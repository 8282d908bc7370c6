package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// pageBreakStyle starts every merged page on a new sheet.
const pageBreakStyle = "break-before: page"

// mergeDocuments concatenates rendered pages into one HTML document. The first
// page supplies the head; each later page contributes its body, wrapped in a
// section that starts on a new sheet, plus any stylesheet or style element its
// head carries that the merged head lacks. Relative URLs of every page are
// rebased onto root, and a base element pointing at root keeps them
// resolvable from a temp file. An empty root means the deepest directory
// holding every page.
func mergeDocuments(root string, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", errors.New("nothing to merge")
	}
	if root == "" {
		root = commonDir(paths)
	}

	doc, err := parsePage(root, paths[0])
	if err != nil {
		return "", err
	}
	head, body := findElement(doc, atom.Head), findElement(doc, atom.Body)
	if head == nil || body == nil {
		return "", fmt.Errorf("%s: missing head or body", paths[0])
	}
	setBase(head, root)

	seen := make(map[string]bool)
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if key := headAssetKey(c); key != "" {
			seen[key] = true
		}
	}

	for _, p := range paths[1:] {
		other, err := parsePage(root, p)
		if err != nil {
			return "", err
		}

		if otherHead := findElement(other, atom.Head); otherHead != nil {
			for _, c := range detachChildren(otherHead) {
				key := headAssetKey(c)
				if key == "" || seen[key] {
					continue
				}
				seen[key] = true
				head.AppendChild(c)
			}
		}

		section := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Section,
			Data:     "section",
			Attr:     []html.Attribute{{Key: "style", Val: pageBreakStyle}},
		}
		if otherBody := findElement(other, atom.Body); otherBody != nil {
			for _, c := range detachChildren(otherBody) {
				section.AppendChild(c)
			}
		}
		body.AppendChild(section)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("rendering merged document: %w", err)
	}
	return buf.String(), nil
}

// parsePage parses a rendered page and rebases its relative URLs onto root.
func parsePage(root, path string) (*html.Node, error) {
	doc, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rebase(doc, filepath.ToSlash(rel))
	return doc, nil
}

func parseFile(path string) (*html.Node, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the render pass
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// findElement returns the first element with the given atom, depth first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// detachChildren removes and returns the children of n.
func detachChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		out = append(out, c)
		c = next
	}
	return out
}

// headAssetKey identifies stylesheet links and style elements. Other head
// content yields "".
func headAssetKey(n *html.Node) string {
	if n.Type != html.ElementNode {
		return ""
	}
	switch n.DataAtom {
	case atom.Link:
		if attr(n, "rel") == "stylesheet" {
			return "link:" + attr(n, "href")
		}
	case atom.Style:
		if n.FirstChild != nil {
			return "style:" + n.FirstChild.Data
		}
	}
	return ""
}

// setBase inserts (or replaces) the head's base element.
func setBase(head *html.Node, dir string) {
	href := fileURL(dir)
	if href[len(href)-1] != '/' {
		href += "/"
	}
	if base := findElement(head, atom.Base); base != nil {
		head.RemoveChild(base)
	}
	base := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Base,
		Data:     "base",
		Attr:     []html.Attribute{{Key: "href", Val: href}},
	}
	head.InsertBefore(base, head.FirstChild)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
