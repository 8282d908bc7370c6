package pdf

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-docportal/internal/logging"
	"github.com/alnah/go-docportal/internal/manifest"
	"github.com/alnah/go-docportal/internal/site"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeSite struct {
	res  *site.Result
	err  error
	opts site.Options
}

func (f *fakeSite) RenderAll(_ context.Context, opts site.Options) (*site.Result, error) {
	f.opts = opts
	return f.res, f.err
}

type fakeEngine struct {
	inputs []string
	out    string
	err    error
	closed bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Compose(_ context.Context, inputs []string, out string) error {
	f.inputs = inputs
	f.out = out
	return f.err
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func result(build string, pages ...site.Page) *site.Result {
	for i := range pages {
		pages[i].Path = filepath.Join(build, filepath.FromSlash(pages[i].HTML))
	}
	return &site.Result{Pass: "test", Pages: pages}
}

// ---------------------------------------------------------------------------
// TestExporter_Export
// ---------------------------------------------------------------------------

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("renders in PDF mode and composes doc pages in order", func(t *testing.T) {
		t.Parallel()

		build := t.TempDir()
		s := &fakeSite{res: result(build,
			site.Page{Kind: manifest.KindDoc, HTML: "b.html"},
			site.Page{Kind: manifest.KindStatic, HTML: "search.html"},
			site.Page{Kind: manifest.KindDoc, HTML: "a.html"},
		)}
		eng := &fakeEngine{}
		exp := NewExporter(s, eng, Options{BuildDir: build, Logger: logging.Nop()})

		out := filepath.Join(build, "pdf", "docs.pdf")
		_, err := exp.Export(context.Background(), out)
		require.NoError(t, err)

		assert.Equal(t, site.Options{Precompile: true, PDFMode: true}, s.opts)
		assert.Equal(t, []string{filepath.Join(build, "b.html"), filepath.Join(build, "a.html")}, eng.inputs)
		assert.Equal(t, out, eng.out)
		assert.DirExists(t, filepath.Join(build, "pdf"))
	})

	t.Run("cover page is prepended when it exists", func(t *testing.T) {
		t.Parallel()

		build := t.TempDir()
		cover := filepath.Join(build, "index.html")
		require.NoError(t, os.WriteFile(cover, []byte("<html></html>"), 0o644))

		eng := &fakeEngine{}
		exp := NewExporter(
			&fakeSite{res: result(build, site.Page{Kind: manifest.KindDoc, HTML: "intro.html"})},
			eng,
			Options{BuildDir: build, Cover: "index.html", Logger: logging.Nop()},
		)

		_, err := exp.Export(context.Background(), filepath.Join(build, "out.pdf"))
		require.NoError(t, err)
		assert.Equal(t, []string{cover, filepath.Join(build, "intro.html")}, eng.inputs)
	})

	t.Run("missing cover is skipped", func(t *testing.T) {
		t.Parallel()

		build := t.TempDir()
		eng := &fakeEngine{}
		exp := NewExporter(
			&fakeSite{res: result(build, site.Page{Kind: manifest.KindDoc, HTML: "intro.html"})},
			eng,
			Options{BuildDir: build, Cover: "index.html", Logger: logging.Nop()},
		)

		_, err := exp.Export(context.Background(), filepath.Join(build, "out.pdf"))
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(build, "intro.html")}, eng.inputs)
	})

	t.Run("cover that is also a doc page is not repeated", func(t *testing.T) {
		t.Parallel()

		build := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(build, "index.html"), []byte("x"), 0o644))

		eng := &fakeEngine{}
		exp := NewExporter(
			&fakeSite{res: result(build, site.Page{Kind: manifest.KindDoc, HTML: "index.html"})},
			eng,
			Options{BuildDir: build, Cover: "index.html", Logger: logging.Nop()},
		)

		_, err := exp.Export(context.Background(), filepath.Join(build, "out.pdf"))
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(build, "index.html")}, eng.inputs)
	})

	t.Run("no doc pages", func(t *testing.T) {
		t.Parallel()

		build := t.TempDir()
		eng := &fakeEngine{}
		exp := NewExporter(
			&fakeSite{res: result(build, site.Page{Kind: manifest.KindStatic, HTML: "search.html"})},
			eng,
			Options{BuildDir: build, Logger: logging.Nop()},
		)

		_, err := exp.Export(context.Background(), filepath.Join(build, "out.pdf"))
		require.ErrorIs(t, err, ErrNoPages)
		assert.Nil(t, eng.inputs)
	})

	t.Run("render failure stops before composition", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("template failed")
		eng := &fakeEngine{}
		exp := NewExporter(&fakeSite{err: boom}, eng, Options{Logger: logging.Nop()})

		_, err := exp.Export(context.Background(), "out.pdf")
		require.ErrorIs(t, err, boom)
		assert.Nil(t, eng.inputs)
	})

	t.Run("engine failure is returned", func(t *testing.T) {
		t.Parallel()

		build := t.TempDir()
		eng := &fakeEngine{err: ErrExternalTool}
		exp := NewExporter(
			&fakeSite{res: result(build, site.Page{Kind: manifest.KindDoc, HTML: "a.html"})},
			eng,
			Options{BuildDir: build, Logger: logging.Nop()},
		)

		_, err := exp.Export(context.Background(), filepath.Join(build, "out.pdf"))
		require.ErrorIs(t, err, ErrExternalTool)
	})
}

func TestExporter_Close(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{}
	exp := NewExporter(&fakeSite{}, eng, Options{})
	require.NoError(t, exp.Close())
	assert.True(t, eng.closed)
}

// ---------------------------------------------------------------------------
// TestNewEngine
// ---------------------------------------------------------------------------

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		engine   string
		wantName string
		wantErr  error
	}{
		{name: "default", engine: "", wantName: EnginePrince},
		{name: "prince", engine: "prince", wantName: EnginePrince},
		{name: "case insensitive", engine: "Chrome", wantName: EngineChrome},
		{name: "unknown", engine: "wkhtmltopdf", wantErr: ErrUnknownEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eng, err := NewEngine(tt.engine, "", 0)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, eng.Name())
			require.NoError(t, eng.Close())
		})
	}
}

// ---------------------------------------------------------------------------
// TestPrinceEngine_Compose
// ---------------------------------------------------------------------------

func TestPrinceEngine_Compose(t *testing.T) {
	t.Parallel()

	t.Run("passes output then inputs", func(t *testing.T) {
		t.Parallel()

		var gotName string
		var gotArgs []string
		p := NewPrinceEngine("/opt/prince/bin/prince")
		p.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
			gotName, gotArgs = name, args
			return nil, nil
		}

		err := p.Compose(context.Background(), []string{"../index.html", "intro.html"}, "docs.pdf")
		require.NoError(t, err)
		assert.Equal(t, "/opt/prince/bin/prince", gotName)
		assert.Equal(t, []string{"-o", "docs.pdf", "../index.html", "intro.html"}, gotArgs)
	})

	t.Run("empty binary defaults to prince", func(t *testing.T) {
		t.Parallel()

		var gotName string
		p := NewPrinceEngine("")
		p.run = func(_ context.Context, name string, _ ...string) ([]byte, error) {
			gotName = name
			return nil, nil
		}
		require.NoError(t, p.Compose(context.Background(), []string{"a.html"}, "out.pdf"))
		assert.Equal(t, DefaultPrinceBin, gotName)
	})

	t.Run("failure carries tool output", func(t *testing.T) {
		t.Parallel()

		p := NewPrinceEngine("prince")
		p.run = func(context.Context, string, ...string) ([]byte, error) {
			return []byte("error: can't open input file\n"), errors.New("exit status 1")
		}

		err := p.Compose(context.Background(), []string{"a.html"}, "out.pdf")
		require.ErrorIs(t, err, ErrExternalTool)
		assert.Contains(t, err.Error(), "can't open input file")
		assert.Contains(t, err.Error(), "exit status 1")
	})

	t.Run("missing binary suggests installing prince", func(t *testing.T) {
		t.Parallel()

		p := NewPrinceEngine(filepath.Join(t.TempDir(), "no-such-prince"))
		err := p.Compose(context.Background(), []string{"a.html"}, "out.pdf")
		require.ErrorIs(t, err, ErrExternalTool)
		assert.Contains(t, err.Error(), "hint:")
	})

	t.Run("binary not on PATH", func(t *testing.T) {
		t.Parallel()

		p := NewPrinceEngine("prince")
		p.run = func(context.Context, string, ...string) ([]byte, error) {
			return nil, &exec.Error{Name: "prince", Err: exec.ErrNotFound}
		}
		err := p.Compose(context.Background(), []string{"a.html"}, "out.pdf")
		require.ErrorIs(t, err, ErrExternalTool)
		assert.Contains(t, err.Error(), "princexml.com")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := NewPrinceEngine("prince")
		p.run = func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
			return nil, ctx.Err()
		}
		err := p.Compose(ctx, []string{"a.html"}, "out.pdf")
		require.ErrorIs(t, err, ErrExternalTool)
		assert.Contains(t, err.Error(), "context canceled")
	})
}

// ---------------------------------------------------------------------------
// TestChromeEngine_Compose
// ---------------------------------------------------------------------------

type fakeRenderer struct {
	html   string
	data   []byte
	err    error
	closed bool
}

func (f *fakeRenderer) RenderFile(_ context.Context, path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f.html = string(b)
	return f.data, f.err
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func TestChromeEngine_Compose(t *testing.T) {
	t.Parallel()

	t.Run("writes printed bytes", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := writePage(t, dir, "a.html", "<html><head><title>A</title></head><body><p>one</p></body></html>")
		b := writePage(t, dir, "b.html", "<html><head></head><body><p>two</p></body></html>")

		r := &fakeRenderer{data: []byte("%PDF-1.7")}
		c := &ChromeEngine{renderer: r}

		out := filepath.Join(dir, "out.pdf")
		require.NoError(t, c.Compose(context.Background(), []string{a, b}, out))

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7", string(got))
		assert.Contains(t, r.html, "<p>one</p>")
		assert.Contains(t, r.html, "<p>two</p>")

		require.NoError(t, c.Close())
		assert.True(t, r.closed)
	})

	t.Run("renderer failure", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := writePage(t, dir, "a.html", "<p>x</p>")
		c := &ChromeEngine{renderer: &fakeRenderer{err: ErrExternalTool}}

		err := c.Compose(context.Background(), []string{a}, filepath.Join(dir, "out.pdf"))
		require.ErrorIs(t, err, ErrExternalTool)
		assert.NoFileExists(t, filepath.Join(dir, "out.pdf"))
	})

	t.Run("unreadable input", func(t *testing.T) {
		t.Parallel()

		c := &ChromeEngine{renderer: &fakeRenderer{}}
		err := c.Compose(context.Background(), []string{filepath.Join(t.TempDir(), "missing.html")}, "out.pdf")
		require.ErrorIs(t, err, ErrExternalTool)
	})
}

// ---------------------------------------------------------------------------
// TestMergeDocuments
// ---------------------------------------------------------------------------

func writePage(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestMergeDocuments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cover := writePage(t, dir, "index.html", `<!DOCTYPE html>
<html><head><link rel="stylesheet" href="css/site.css"><title>Cover</title></head>
<body><h1>Manual</h1></body></html>`)
	intro := writePage(t, dir, "intro.html", `<!DOCTYPE html>
<html><head><link rel="stylesheet" href="css/site.css"><link rel="stylesheet" href="css/print.css"><title>Intro</title></head>
<body><h1 id="intro">Intro</h1></body></html>`)
	usage := writePage(t, dir, "usage.html", `<html><head><style>h1{color:red}</style></head><body><h1 id="usage">Usage</h1></body></html>`)

	got, err := mergeDocuments("", []string{cover, intro, usage})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(got, "<head>"), "single head")
	assert.Equal(t, 1, strings.Count(got, "<body>"), "single body")
	assert.Equal(t, 1, strings.Count(got, `href="css/site.css"`), "shared stylesheet kept once")
	assert.Contains(t, got, `href="css/print.css"`)
	assert.Contains(t, got, "h1{color:red}")
	assert.Contains(t, got, "<title>Cover</title>")
	assert.NotContains(t, got, "<title>Intro</title>")
	assert.Contains(t, got, `<base href="`+fileURL(dir)+`/"/>`)

	iCover := strings.Index(got, "Manual")
	iIntro := strings.Index(got, `id="intro"`)
	iUsage := strings.Index(got, `id="usage"`)
	assert.True(t, iCover < iIntro && iIntro < iUsage, "pages keep their order")
	assert.Equal(t, 2, strings.Count(got, `<section style="break-before: page">`))
}

func TestMergeDocuments_PagesInSubdirectories(t *testing.T) {
	t.Parallel()

	build := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(build, "guide"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(build, "ref"), 0o750))

	intro := writePage(t, filepath.Join(build, "guide"), "intro.html", `<html><head>
<link rel="stylesheet" href="../css/site.css"></head>
<body><img src="img/flow.png"><a href="setup.html#install">setup</a><a href="#top">top</a></body></html>`)
	api := writePage(t, filepath.Join(build, "ref"), "api.html", `<html><head>
<link rel="stylesheet" href="../css/site.css"><link rel="stylesheet" href="api.css"></head>
<body><img src="diagram.png"><a href="https://example.com/x">ext</a><img src="/logo.png"></body></html>`)

	got, err := mergeDocuments(build, []string{intro, api})
	require.NoError(t, err)

	assert.Contains(t, got, `<base href="`+fileURL(build)+`/"/>`)
	assert.Equal(t, 1, strings.Count(got, `href="css/site.css"`), "shared stylesheet rebased once")
	assert.Contains(t, got, `href="ref/api.css"`)
	assert.Contains(t, got, `src="guide/img/flow.png"`)
	assert.Contains(t, got, `href="guide/setup.html#install"`)
	assert.Contains(t, got, `src="ref/diagram.png"`)
	assert.Contains(t, got, `href="#top"`)
	assert.Contains(t, got, `href="https://example.com/x"`)
	assert.Contains(t, got, `src="/logo.png"`)
}

func TestExporter_ChromeRootIsBuildDir(t *testing.T) {
	t.Parallel()

	build := t.TempDir()
	c := &ChromeEngine{renderer: &fakeRenderer{}}
	NewExporter(&fakeSite{}, c, Options{BuildDir: build, Logger: logging.Nop()})
	assert.Equal(t, build, c.root)
}

func TestRebaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref, dir, want string
	}{
		{"a.png", "guide", "guide/a.png"},
		{"../css/site.css", "guide", "css/site.css"},
		{"sub/", "guide", "guide/sub/"},
		{"page.html?v=2#s", "guide", "guide/page.html?v=2#s"},
		{"#s", "guide", "#s"},
		{"mailto:a@b.c", "guide", "mailto:a@b.c"},
		{"data:image/png;base64,xx", "guide", "data:image/png;base64,xx"},
		{"//cdn.example.com/x.js", "guide", "//cdn.example.com/x.js"},
		{"a.png", ".", "a.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rebaseURL(tt.ref, tt.dir), "rebaseURL(%q, %q)", tt.ref, tt.dir)
	}
}

func TestCommonDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := filepath.Join(root, "guide", "a.html")
	b := filepath.Join(root, "guide", "deep", "b.html")
	c := filepath.Join(root, "ref", "c.html")

	assert.Equal(t, filepath.Join(root, "guide"), commonDir([]string{a, b}))
	assert.Equal(t, root, commonDir([]string{b, c}))
}

func TestMergeDocuments_Errors(t *testing.T) {
	t.Parallel()

	_, err := mergeDocuments("", nil)
	require.Error(t, err)

	_, err = mergeDocuments("", []string{filepath.Join(t.TempDir(), "missing.html")})
	require.Error(t, err)
}

func TestFileURL(t *testing.T) {
	t.Parallel()

	got := fileURL(filepath.Join(t.TempDir(), "a b.html"))
	assert.True(t, strings.HasPrefix(got, "file:///"), got)
	assert.True(t, strings.HasSuffix(got, "/a%20b.html"), got)
}
