package watch

import (
	"path/filepath"
	"strings"
)

// templateExts and markdownExts select the files that trigger a rebuild.
var (
	templateExts = map[string]bool{".html": true, ".htm": true, ".tmpl": true}
	markdownExts = map[string]bool{".md": true, ".markdown": true}
)

// Paths locates the inputs of a site.
type Paths struct {
	Manifest  string
	Templates string
	Content   string
	Build     string
}

// Matcher decides whether a changed path should trigger a rebuild. It works
// on paths alone and never touches the filesystem.
type Matcher struct {
	manifest  string
	templates string
	content   string
	build     string
	markdown  bool
}

// NewMatcher creates a Matcher. Markdown files under the content root are
// tracked only when markdown is precompiled: otherwise they are rendered in
// the browser and a change needs no rebuild.
func NewMatcher(p Paths, precompile bool) *Matcher {
	return &Matcher{
		manifest:  absClean(p.Manifest),
		templates: absClean(p.Templates),
		content:   absClean(p.Content),
		build:     absClean(p.Build),
		markdown:  precompile,
	}
}

// Match reports whether a change to path requires a rebuild.
func (m *Matcher) Match(path string) bool {
	p := absClean(path)
	if p == m.manifest {
		return true
	}

	ext := strings.ToLower(filepath.Ext(p))

	if templateExts[ext] && within(p, m.templates) {
		// Pages written into the template tree are outputs, not inputs.
		if m.build != m.templates && within(m.build, m.templates) && within(p, m.build) {
			return false
		}
		return true
	}

	return m.markdown && markdownExts[ext] && within(p, m.content)
}

// Roots returns the directories to observe and whether each is observed
// recursively.
func (m *Matcher) Roots() []Root {
	roots := []Root{
		{Dir: filepath.Dir(m.manifest)},
		{Dir: m.templates, Recursive: true},
	}
	if m.markdown {
		roots = append(roots, Root{Dir: m.content, Recursive: true})
	}
	return roots
}

// Root is a directory registered with the filesystem observer.
type Root struct {
	Dir       string
	Recursive bool
}

// within reports whether p is root or lies below it.
func within(p, root string) bool {
	if p == root {
		return true
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func absClean(p string) string {
	if p == "" {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
