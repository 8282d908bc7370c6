package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is an anchored heading of rendered content. Templates use it to
// build in-page navigation.
type Heading struct {
	Level int    // 1-6
	ID    string // anchor, without '#'
	Text  string // text content, tags removed and whitespace collapsed
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// ExtractHeadings returns the headings of content whose level lies in
// [minDepth, maxDepth], in document order. Headings without an id are
// skipped since nothing can link to them.
func ExtractHeadings(content string, minDepth, maxDepth int) []Heading {
	var (
		found []Heading
		open  *Heading // heading whose text is being collected
		text  strings.Builder
	)

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return found
		case html.StartTagToken:
			tok := z.Token()
			level, ok := headingLevels[tok.DataAtom]
			if !ok || open != nil || level < minDepth || level > maxDepth {
				continue
			}
			if id := attrValue(tok, "id"); id != "" {
				open = &Heading{Level: level, ID: id}
				text.Reset()
			}
		case html.TextToken:
			if open != nil {
				text.Write(z.Text())
			}
		case html.EndTagToken:
			if open == nil {
				continue
			}
			if tok := z.Token(); headingLevels[tok.DataAtom] == open.Level {
				open.Text = strings.Join(strings.Fields(text.String()), " ")
				found = append(found, *open)
				open = nil
			}
		}
	}
}

func attrValue(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
