package pipeline

import "context"

var (
	_ MarkdownPreprocessor = (*ExtraPreprocessor)(nil)
	_ converter            = (*extraMarkdown)(nil)
)

// Transformer runs the full markdown-to-HTML transform. It holds no
// per-document state and is safe for concurrent use.
type Transformer struct {
	preprocessor MarkdownPreprocessor
	markdown     converter
}

// NewTransformer creates a Transformer with the default stages.
func NewTransformer() *Transformer {
	return &Transformer{
		preprocessor: &ExtraPreprocessor{},
		markdown:     newExtraMarkdown(),
	}
}

// Render converts markdown (possibly with embedded HTML) to an indented
// HTML fragment ready to be placed in a page template.
func (t *Transformer) Render(ctx context.Context, source string) (string, error) {
	md := t.preprocessor.PreprocessMarkdown(ctx, source)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := t.markdown.convert([]byte(md))
	if err != nil {
		return "", err
	}

	return FixupHTML(string(raw))
}
