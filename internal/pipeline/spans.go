package pipeline

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// spanTags hold inline content only. With markdown enabled, their content
// gets emphasis, code spans and links, but never paragraphs or lists.
var spanTags = []string{
	"caption", "dd", "dt", "h1", "h2", "h3", "h4", "h5", "h6",
	"legend", "li", "p", "td", "th",
}

// Opening span tag. Captures: 1=tag name
var spanOpenPattern = regexp.MustCompile(`(?i)<(` + strings.Join(spanTags, "|") + `)\b[^>]*>`)

// inlineMarkdown is goldmark with the paragraph as its only block, so any
// input renders as a single run of inline markup.
var inlineMarkdown = sync.OnceValue(func() goldmark.Markdown {
	p := parser.NewParser(
		parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 100)),
		parser.WithInlineParsers(parser.DefaultInlineParsers()...),
	)
	return goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithExtensions(extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
})

// RenderMarkdownSpans converts the inline markdown held by markdown-enabled
// span tags on raw HTML lines, such as <li>*item*</li>. An element must
// open and close on the same line. Fenced code blocks are skipped.
func RenderMarkdownSpans(content string) string {
	lines := strings.Split(content, "\n")
	var fence fenceState

	for i, line := range lines {
		if fence.toggle(line) || fence.open() {
			continue
		}
		if !strings.HasPrefix(strings.TrimLeft(line, " \t"), "<") {
			continue
		}
		lines[i] = renderSpanLine(line)
	}

	return strings.Join(lines, "\n")
}

func renderSpanLine(line string) string {
	var b strings.Builder
	rest := line
	for {
		loc := spanOpenPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		tag, name := rest[loc[0]:loc[1]], rest[loc[2]:loc[3]]
		b.WriteString(rest[:loc[1]])
		rest = rest[loc[1]:]
		if strings.HasSuffix(tag, "/>") || !spanMarkdown(tag) {
			continue
		}

		end := closingTagIndex(rest, name)
		if end < 0 {
			continue
		}
		b.WriteString(renderSpan(rest[:end]))
		rest = rest[end:]
	}
	b.WriteString(rest)
	return b.String()
}

// spanMarkdown reports whether an opening span tag asks for inline markdown.
func spanMarkdown(tag string) bool {
	m := markdownValue.FindStringSubmatch(tag)
	return m != nil && (m[1] == "1" || strings.EqualFold(m[1], "span") || strings.EqualFold(m[1], "block"))
}

// renderSpan renders src as inline markdown, keeping its surrounding
// whitespace. On failure src is returned unchanged.
func renderSpan(src string) string {
	body := strings.TrimSpace(src)
	if body == "" {
		return src
	}

	var out bytes.Buffer
	if err := inlineMarkdown().Convert([]byte(body), &out); err != nil {
		return src
	}
	rendered := strings.TrimSpace(out.String())
	rendered = strings.TrimSuffix(strings.TrimPrefix(rendered, "<p>"), "</p>")

	lead := src[:len(src)-len(strings.TrimLeft(src, " \t"))]
	trail := src[len(strings.TrimRight(src, " \t")):]
	return lead + rendered + trail
}
