package pdf

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// urlAttrs lists the attributes rebased per element.
var urlAttrs = map[atom.Atom]string{
	atom.A:      "href",
	atom.Link:   "href",
	atom.Img:    "src",
	atom.Script: "src",
	atom.Source: "src",
}

// rebase prefixes the relative URLs under n with dir, a slash-separated path
// from the merge root to the page's directory. "." leaves them unchanged.
func rebase(n *html.Node, dir string) {
	if dir == "." || dir == "" {
		return
	}
	if n.Type == html.ElementNode {
		if key, ok := urlAttrs[n.DataAtom]; ok {
			for i, a := range n.Attr {
				if a.Namespace == "" && a.Key == key {
					n.Attr[i].Val = rebaseURL(a.Val, dir)
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rebase(c, dir)
	}
}

// rebaseURL joins dir to a relative reference. Absolute URLs, rooted paths,
// and fragment or query only references are returned as is.
func rebaseURL(ref, dir string) string {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "?") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return ref
	}

	joined := path.Join(dir, u.Path)
	if strings.HasSuffix(u.Path, "/") {
		joined += "/"
	}
	u.Path, u.RawPath = joined, ""
	return u.String()
}

// commonDir returns the deepest directory holding every path.
func commonDir(paths []string) string {
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !isWithin(filepath.Dir(p), dir) {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return dir
}

func isWithin(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
