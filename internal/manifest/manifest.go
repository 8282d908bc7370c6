// Package manifest loads the ordered list of pages that make up a site.
//
// A manifest is a JSON or YAML array of objects. Each object describes one
// output file:
//
//	[
//	  {"html": "index.html", "template": "index.html", "title": "Home"},
//	  {"html": "guide/intro.html", "md": "intro.md", "title": "Intro"}
//	]
//
// Entries with an "md" key are documentation pages; all others are static
// pages rendered from their own "template". Every other key is passed to
// templates untouched.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-docportal/internal/hints"
	"github.com/alnah/go-docportal/internal/yamlutil"
)

// ErrManifest indicates the manifest could not be loaded or is invalid.
var ErrManifest = errors.New("invalid page manifest")

// Reserved keys.
const (
	KeyHTML     = "html"
	KeyMarkdown = "md"
	KeyTemplate = "template"
)

// Manifest is the ordered page list of one render pass.
type Manifest struct {
	Path  string
	Pages []Page
}

// Raw returns the entries as written, in manifest order. Templates receive
// this slice as "pages".
func (m *Manifest) Raw() []map[string]any {
	raw := make([]map[string]any, len(m.Pages))
	for i, p := range m.Pages {
		raw[i] = p.Data()
	}
	return raw
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- manifest path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}

	pages, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Manifest{Path: path, Pages: pages}, nil
}

// Parse decodes manifest data. JSON is accepted since it is a subset of the
// YAML syntax understood by the parser.
func Parse(data []byte) ([]Page, error) {
	var doc any
	if err := yamlutil.Decode(data, &doc, yamlutil.Lenient); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}

	entries, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be an array of objects, got %s%s", ErrManifest, describe(doc), hints.ForManifest())
	}

	pages := make([]Page, 0, len(entries))
	for i, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: must be an object, got %s", ErrManifest, i, describe(entry))
		}
		page, err := newPage(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrManifest, i, err)
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// newPage builds the descriptor variant selected by the presence of "md".
func newPage(fields map[string]any) (Page, error) {
	out, err := requiredString(fields, KeyHTML)
	if err != nil {
		return nil, err
	}
	if err := validateRelPath(KeyHTML, out); err != nil {
		return nil, err
	}

	if _, isDoc := fields[KeyMarkdown]; isDoc {
		md, err := requiredString(fields, KeyMarkdown)
		if err != nil {
			return nil, err
		}
		if err := validateRelPath(KeyMarkdown, md); err != nil {
			return nil, err
		}
		return &DocPage{HTML: out, Markdown: md, Fields: fields}, nil
	}

	tmpl, err := requiredString(fields, KeyTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w (required when %q is absent)", err, KeyMarkdown)
	}
	return &StaticPage{HTML: out, Template: tmpl, Fields: fields}, nil
}

// requiredString returns the non-empty string stored under key.
func requiredString(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%q must be a non-empty string", key)
	}
	return s, nil
}

// validateRelPath rejects paths that would escape their root directory.
func validateRelPath(key, p string) error {
	if !filepath.IsLocal(filepath.FromSlash(p)) {
		return fmt.Errorf("%q: path %q must be relative and stay inside its root", key, p)
	}
	return nil
}

func describe(v any) string {
	if v == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T", v)
}
