package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrMarkdown indicates the markdown parser or renderer failed.
var ErrMarkdown = errors.New("markdown conversion failed")

// converter turns preprocessed markdown into a raw HTML fragment.
type converter interface {
	convert(src []byte) ([]byte, error)
}

// extraMarkdown is goldmark configured for the "extra" dialect documentation
// pages are written in.
type extraMarkdown struct {
	md goldmark.Markdown
}

func newExtraMarkdown() *extraMarkdown {
	return &extraMarkdown{md: goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Footnote,
			extension.DefinitionList,
			// Classes only: colors come from the site stylesheet.
			highlighting.NewHighlighting(highlighting.WithFormatOptions(chromahtml.WithClasses(true))),
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(), // {#id .class} after headings
			parser.WithASTTransformers(util.Prioritized(headingIDTransformer{}, 100)),
		),
		// Raw HTML blocks are content, not an injection.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// convert renders src. Heading IDs are allocated per document, so the same
// title in two pages gets the same anchor.
func (e *extraMarkdown) convert(src []byte) ([]byte, error) {
	var out bytes.Buffer
	pc := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	if err := e.md.Convert(src, &out, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkdown, err)
	}
	return out.Bytes(), nil
}
