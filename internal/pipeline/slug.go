package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var (
	// Characters dropped from slugs: anything but word chars, spaces and hyphens
	slugStrip = regexp.MustCompile(`[^\w\s-]`)

	// Runs of hyphens and whitespace collapse to a single separator
	slugSeparators = regexp.MustCompile(`[-\s]+`)

	// Trailing counter added to duplicate IDs ("intro_2")
	idCounter = regexp.MustCompile(`^(.*)_([0-9]+)$`)
)

// Slugify turns heading text into an anchor ID. Accents are decomposed and
// dropped, punctuation is removed, and whitespace becomes a hyphen.
// Underscores are kept as written; NormalizeHeadingIDs rewrites them later.
func Slugify(text string) string {
	decomposed := norm.NFKD.String(text)

	var ascii strings.Builder
	ascii.Grow(len(decomposed))
	for i := 0; i < len(decomposed); i++ {
		if decomposed[i] < 0x80 {
			ascii.WriteByte(decomposed[i])
		}
	}

	slug := slugStrip.ReplaceAllString(ascii.String(), "")
	slug = strings.ToLower(strings.TrimSpace(slug))
	return slugSeparators.ReplaceAllString(slug, "-")
}

// headingIDs implements parser.IDs with Slugify and counter-suffixed
// de-duplication. A fresh instance is used for every document.
type headingIDs struct {
	seen map[string]struct{}
}

// newHeadingIDs creates an empty ID registry.
func newHeadingIDs() *headingIDs {
	return &headingIDs{seen: make(map[string]struct{})}
}

// Generate returns a unique ID for the given heading text.
func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(h.unique(Slugify(string(value))))
}

// Put registers an explicitly assigned ID so generated ones avoid it.
func (h *headingIDs) Put(value []byte) {
	h.seen[string(value)] = struct{}{}
}

// unique appends or bumps a "_N" counter until the ID is unused.
// An empty slug is never returned.
func (h *headingIDs) unique(id string) string {
	for {
		_, taken := h.seen[id]
		if id != "" && !taken {
			break
		}
		if m := idCounter.FindStringSubmatch(id); m != nil {
			n, _ := strconv.Atoi(m[2])
			id = fmt.Sprintf("%s_%d", m[1], n+1)
		} else {
			id = id + "_1"
		}
	}
	h.seen[id] = struct{}{}
	return id
}

// Compile-time interface checks.
var (
	_ parser.IDs            = (*headingIDs)(nil)
	_ parser.ASTTransformer = headingIDTransformer{}
)

// headingIDTransformer gives every heading without an explicit ID one built
// from its visible text, so link destinations and markup never reach the
// anchor. Explicit IDs are reserved first.
type headingIDTransformer struct{}

func (headingIDTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var pending []*ast.Heading

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if id, has := h.AttributeString("id"); has {
			if b, ok := id.([]byte); ok {
				pc.IDs().Put(b)
			}
		} else {
			pending = append(pending, h)
		}
		return ast.WalkSkipChildren, nil
	})

	for _, h := range pending {
		h.SetAttributeString("id", pc.IDs().Generate([]byte(headingText(h, source)), ast.KindHeading))
	}
}

// headingText returns the text a reader sees in a heading. Images and raw
// HTML contribute nothing.
func headingText(h *ast.Heading, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(n.Segment.Value(source))
			if n.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.AutoLink:
			b.Write(n.Label(source))
		}
		return ast.WalkContinue, nil
	})
	return html.UnescapeString(b.String())
}
