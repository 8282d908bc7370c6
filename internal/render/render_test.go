package render_test

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-docportal/internal/assets"
	"github.com/alnah/go-docportal/internal/render"
)

// writeTemplates creates files under a fresh root and returns the root.
func writeTemplates(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	root := writeTemplates(t, map[string]string{
		"template-doc.html":       `<title>{{ .currentpage.title }}</title>{{ template "partials/nav.html" . }}<main>{{ .content }}</main>`,
		"partials/nav.html":       `<nav>{{ range .pages }}<a href="{{ .html }}">{{ .title }}</a>{{ end }}</nav>`,
		"index.tmpl":              `{{ .currentpage.title | upper }}`,
		"notes.txt":               `{{ not a template`,
		".git/HEAD.html":          `{{ broken`,
		"node_modules/x/pkg.html": `{{ broken`,
	})

	r, err := render.New(root, render.Options{})
	require.NoError(t, err)
	assert.Equal(t, root, r.Root())

	assert.True(t, r.Has("template-doc.html"))
	assert.True(t, r.Has("partials/nav.html"))
	assert.True(t, r.Has("./index.tmpl"))
	assert.False(t, r.Has("notes.txt"))
	assert.ElementsMatch(t, []string{"template-doc.html", "partials/nav.html", "index.tmpl"}, r.Names())

	pages := []map[string]any{
		{"html": "a.html", "title": "A"},
		{"html": "b.html", "title": "B"},
	}

	t.Run("doc template with partial", func(t *testing.T) {
		t.Parallel()

		out, err := r.Render("template-doc.html", map[string]any{
			"currentpage": pages[0],
			"pages":       pages,
			"content":     template.HTML("<p>hi</p>"),
			"precompiled": true,
		})
		require.NoError(t, err)
		assert.Equal(t, `<title>A</title><nav><a href="a.html">A</a><a href="b.html">B</a></nav><main><p>hi</p></main>`, out)
	})

	t.Run("sprig functions", func(t *testing.T) {
		t.Parallel()

		out, err := r.Render("index.tmpl", map[string]any{"currentpage": pages[1], "pages": pages})
		require.NoError(t, err)
		assert.Equal(t, "B", out)
	})

	t.Run("plain strings are escaped", func(t *testing.T) {
		t.Parallel()

		out, err := r.Render("template-doc.html", map[string]any{
			"currentpage": map[string]any{"title": "<b>"},
			"pages":       []map[string]any{},
			"content":     "<p>raw</p>",
		})
		require.NoError(t, err)
		assert.Contains(t, out, "&lt;b&gt;")
		assert.Contains(t, out, "&lt;p&gt;raw&lt;/p&gt;")
	})
}

func TestRenderer_Render_Errors(t *testing.T) {
	t.Parallel()

	root := writeTemplates(t, map[string]string{
		"page.html": `{{ .currentpage.title }}{{ .content }}`,
	})
	r, err := render.New(root, render.Options{})
	require.NoError(t, err)

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()

		_, err := r.Render("missing.html", map[string]any{})
		require.ErrorIs(t, err, render.ErrTemplateNotFound)
		assert.Contains(t, err.Error(), "missing.html")
	})

	t.Run("missing variable", func(t *testing.T) {
		t.Parallel()

		_, err := r.Render("page.html", map[string]any{"currentpage": map[string]any{"title": "x"}})
		require.ErrorIs(t, err, render.ErrTemplateRender)
	})
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()

		_, err := render.New(filepath.Join(t.TempDir(), "nope"), render.Options{})
		require.ErrorIs(t, err, render.ErrTemplateNotFound)
	})

	t.Run("root is a file", func(t *testing.T) {
		t.Parallel()

		root := writeTemplates(t, map[string]string{"f.html": "x"})
		_, err := render.New(filepath.Join(root, "f.html"), render.Options{})
		require.ErrorIs(t, err, render.ErrTemplateNotFound)
	})

	t.Run("syntax error makes the set unusable", func(t *testing.T) {
		t.Parallel()

		root := writeTemplates(t, map[string]string{
			"good.html": "ok",
			"bad.html":  "{{ if }}",
		})
		_, err := render.New(root, render.Options{})
		require.ErrorIs(t, err, render.ErrTemplateRender)
		assert.Contains(t, err.Error(), "bad.html")
	})
}

func TestNew_Skip(t *testing.T) {
	t.Parallel()

	root := writeTemplates(t, map[string]string{
		"page.html":     "ok",
		"out/page.html": "{{ generated output with braces",
	})

	_, err := render.New(root, render.Options{})
	require.Error(t, err)

	r, err := render.New(root, render.Options{Skip: []string{filepath.Join(root, "out")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"page.html"}, r.Names())
}

func TestRenderer_TrimBlocksOption(t *testing.T) {
	t.Parallel()

	const list = "<ul>\n  {{ range .pages }}\n  <li>{{ .title }}</li>\n  {{ end }}\n</ul>\n"
	root := writeTemplates(t, map[string]string{"list.html": list})
	vars := map[string]any{"pages": []map[string]any{{"title": "a"}, {"title": "b"}}}

	trimmed, err := render.New(root, render.Options{TrimBlocks: true})
	require.NoError(t, err)
	out, err := trimmed.Render("list.html", vars)
	require.NoError(t, err)
	assert.Equal(t, "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n", out)

	raw, err := render.New(root, render.Options{TrimBlocks: false})
	require.NoError(t, err)
	out, err = raw.Render("list.html", vars)
	require.NoError(t, err)
	assert.Equal(t, "<ul>\n  \n  <li>a</li>\n  \n  <li>b</li>\n  \n</ul>\n", out)
}

func TestHeadingsFunc(t *testing.T) {
	t.Parallel()

	root := writeTemplates(t, map[string]string{
		"toc.html": `{{ range headings .content 2 3 }}[{{ .Level }}:{{ .ID }}:{{ .Text }}]{{ end }}`,
	})
	r, err := render.New(root, render.Options{})
	require.NoError(t, err)

	out, err := r.Render("toc.html", map[string]any{
		"content": template.HTML(`<h1 id="t">T</h1><h2 id="a-b">A</h2><h3 id="c">C</h3>`),
	})
	require.NoError(t, err)
	assert.Equal(t, "[2:a-b:A][3:c:C]", out)
}

func TestFormatDateFunc(t *testing.T) {
	t.Parallel()

	root := writeTemplates(t, map[string]string{
		"footer.html": `{{ .updated | formatDate "long" }}|{{ formatDate "DD/MM/YYYY" .updated }}`,
	})
	r, err := render.New(root, render.Options{})
	require.NoError(t, err)

	out, err := r.Render("footer.html", map[string]any{
		"updated": time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "March 15, 2024|15/03/2024", out)
}

func TestScaffoldTemplatesRender(t *testing.T) {
	t.Parallel()

	l := assets.NewEmbeddedLoader()
	names, err := l.List()
	require.NoError(t, err)

	files := make(map[string]string)
	for _, n := range names {
		if rel, ok := strings.CutPrefix(n, "tool/"); ok {
			data, err := l.Load(n)
			require.NoError(t, err)
			files[rel] = string(data)
		}
	}
	r, err := render.New(writeTemplates(t, files), render.Options{TrimBlocks: true})
	require.NoError(t, err)

	pages := []map[string]any{
		{"html": "index.html", "template": "template-index.html", "title": "Home"},
		{"html": "intro.html", "md": "intro.md", "title": "Introduction"},
	}
	for _, precompiled := range []bool{true, false} {
		out, err := r.Render("template-doc.html", map[string]any{
			"currentpage": pages[1],
			"pages":       pages,
			"content":     template.HTML(`<h2 id="getting-started">Getting Started</h2>`),
			"precompiled": precompiled,
		})
		require.NoError(t, err)
		assert.Contains(t, out, `<li class="current"><a href="intro.html">Introduction</a></li>`)
	}

	out, err := r.Render("template-index.html", map[string]any{"currentpage": pages[0], "pages": pages})
	require.NoError(t, err)
	assert.Contains(t, out, "2 pages")
}
