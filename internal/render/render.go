// Package render executes the site's HTML templates.
//
// Every template file under the template root is parsed into one set, named
// by its slash-separated path relative to the root, so templates can include
// each other:
//
//	{{ template "partials/nav.html" . }}
//
// The set carries the sprig function library and a strict missing-key policy.
// Block-tag whitespace trimming is applied unless disabled.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docportal/internal/hints"
)

// Sentinel errors for template operations.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateRender   = errors.New("template rendering failed")
)

// templateExtensions are the file extensions parsed as templates.
var templateExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".tmpl": true,
}

// Options configures template loading.
type Options struct {
	// TrimBlocks removes the indentation before, and the newline after, lines
	// holding a single block action.
	TrimBlocks bool
	// Skip lists directories under the root that are not searched, such as a
	// build directory nested inside the template directory.
	Skip []string
}

// Renderer holds a parsed template set. It is safe for concurrent use.
type Renderer struct {
	root string
	set  *template.Template
}

// New parses every template file under root.
func New(root string, opts Options) (*Renderer, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: template directory: %v", ErrTemplateNotFound, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: template directory: %s is not a directory", ErrTemplateNotFound, root)
	}

	skip := make(map[string]bool, len(opts.Skip))
	for _, dir := range opts.Skip {
		if abs, err := filepath.Abs(dir); err == nil {
			skip[abs] = true
		}
	}

	set := template.New("").
		Funcs(FuncMap()).
		Option("missingkey=error")

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && skipDir(p, d.Name(), skip) {
				return filepath.SkipDir
			}
			return nil
		}
		if !templateExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		data, err := os.ReadFile(p) // #nosec G304 -- walking the configured template root
		if err != nil {
			return err
		}
		text := string(data)
		if opts.TrimBlocks {
			text = TrimBlocks(text)
		}

		if _, err := set.New(name).Parse(text); err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return &Renderer{root: root, set: set}, nil
}

// skipDir reports whether a directory is excluded from the walk.
func skipDir(p, name string, skip map[string]bool) bool {
	if strings.HasPrefix(name, ".") || name == "node_modules" {
		return true
	}
	abs, err := filepath.Abs(p)
	return err == nil && skip[abs]
}

// Root returns the directory the templates were loaded from.
func (r *Renderer) Root() string {
	return r.root
}

// Has reports whether a template with the given name was loaded.
func (r *Renderer) Has(name string) bool {
	return r.set.Lookup(normalizeName(name)) != nil
}

// Names returns the names of all loaded templates.
func (r *Renderer) Names() []string {
	var names []string
	for _, t := range r.set.Templates() {
		if t.Name() != "" && t.Tree != nil {
			names = append(names, t.Name())
		}
	}
	return names
}

// Render executes the named template with vars.
func (r *Renderer) Render(name string, vars map[string]any) (string, error) {
	name = normalizeName(name)
	t := r.set.Lookup(name)
	if t == nil || t.Tree == nil {
		return "", fmt.Errorf("%w: %q in %s%s", ErrTemplateNotFound, name, r.root, hints.ForTemplateNotFound(r.Names()))
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateRender, name, err)
	}
	return buf.String(), nil
}

// normalizeName maps an OS path or a slash path to a template name.
func normalizeName(name string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(name)), "./")
}
