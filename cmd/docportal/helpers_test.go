package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-docportal/internal/pdf"
)

// testEnv returns an environment rooted at workDir with captured output.
func testEnv(workDir string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:     time.Now,
		Stdout:  &stdout,
		Stderr:  &stderr,
		Getwd:   func() (string, error) { return workDir, nil },
		NoColor: true,
	}
	return env.withDefaults(), &stdout, &stderr
}

// Site fixture laid out the way init lays it out: tool/ holds the config,
// manifest and templates; pages are built into out/.
const (
	fixtureConfig = `manifest: pages.json
templates:
  dir: .
content:
  dir: ../content
build:
  dir: ../out
pdf:
  cover: index.html
`
	fixtureManifest = `[
  {"html": "index.html", "template": "home.tmpl", "title": "Home"},
  {"html": "a.html", "md": "a.md", "title": "A"},
  {"html": "b.html", "template": "custom.tmpl"}
]`
	fixtureDoc    = `<html><body>{{ if .precompiled }}{{ .content }}{{ else }}<div data-src="{{ .currentpage.md }}"></div>{{ end }}</body></html>`
	fixturePDF    = `<html><body class="pdf">{{ .content }}</body></html>`
	fixtureHome   = `<h1>{{ .currentpage.title }}</h1>`
	fixtureCustom = `<p>custom {{ len .pages }}</p>`
)

// newFixtureSite writes the fixture under a temp dir and returns the dir.
func newFixtureSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"tool/docportal.yaml":       fixtureConfig,
		"tool/pages.json":           fixtureManifest,
		"tool/template-doc.html":    fixtureDoc,
		"tool/template-forpdf.html": fixturePDF,
		"tool/home.tmpl":            fixtureHome,
		"tool/custom.tmpl":          fixtureCustom,
		"content/a.md":              "# Hello_World\n\nSome text.\n",
	}
	for name, content := range files {
		writeTestFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
	return root
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// fakeEngine records compositions and writes a marker PDF. It keeps the
// content of every input as it was at compose time.
type fakeEngine struct {
	inputs   []string
	contents []string
	out      string
	err      error
	closed   bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Compose(_ context.Context, inputs []string, out string) error {
	if f.err != nil {
		return f.err
	}
	f.inputs = append([]string(nil), inputs...)
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		f.contents = append(f.contents, string(data))
	}
	f.out = out
	return os.WriteFile(out, []byte("%PDF-fake"), 0o644)
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

// engineFactory returns an EngineFactory that always yields e.
func engineFactory(e *fakeEngine) EngineFactory {
	return func(string, string, time.Duration) (pdf.Engine, error) { return e, nil }
}

func containsAll(t *testing.T, label, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("%s should contain %q, got:\n%s", label, w, got)
		}
	}
}
