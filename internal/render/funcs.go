package render

import (
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/alnah/go-docportal/internal/dateutil"
	"github.com/alnah/go-docportal/internal/pipeline"
)

// FuncMap returns the functions available to every template: the sprig
// library plus a few site helpers.
func FuncMap() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["safeHTML"] = safeHTML
	funcs["headings"] = headings
	funcs["formatDate"] = dateutil.Format
	return funcs
}

// safeHTML marks s as trusted markup.
func safeHTML(s string) template.HTML {
	return template.HTML(s) // #nosec G203 -- template authors opt in explicitly
}

// headings lists the anchored headings of rendered content, for building
// in-page navigation:
//
//	{{ range headings .content 2 3 }}<a href="#{{ .ID }}">{{ .Text }}</a>{{ end }}
func headings(content any, minDepth, maxDepth int) []pipeline.Heading {
	var s string
	switch v := content.(type) {
	case template.HTML:
		s = string(v)
	case string:
		s = v
	case nil:
		return nil
	default:
		s = fmt.Sprint(v)
	}
	return pipeline.ExtractHeadings(s, minDepth, maxDepth)
}
