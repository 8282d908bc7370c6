// Package site renders every page of a manifest to the build directory.
//
// A render pass loads the manifest and the template set from disk, renders the
// pages in manifest order and writes each one under the build root. Nothing is
// cached between passes: edits to any input are picked up by the next call to
// RenderAll.
package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-docportal/internal/fileutil"
	"github.com/alnah/go-docportal/internal/logging"
	"github.com/alnah/go-docportal/internal/manifest"
	"github.com/alnah/go-docportal/internal/pipeline"
	"github.com/alnah/go-docportal/internal/render"
)

// Sentinel errors for render passes.
var (
	ErrContentRead = errors.New("failed to read markdown source")
	ErrWriteOutput = errors.New("failed to write output page")
)

// Template variable names.
const (
	VarCurrentPage = "currentpage"
	VarPages       = "pages"
	VarContent     = "content"
	VarPrecompiled = "precompiled"
)

// Config locates the inputs and outputs of a site.
type Config struct {
	ManifestPath string
	TemplateDir  string
	ContentDir   string
	BuildDir     string
	DocTemplate  string // template for documentation pages
	PDFTemplate  string // template for documentation pages in PDF mode
	TrimBlocks   bool
}

// Options selects the flavor of a render pass.
type Options struct {
	// Precompile converts markdown to HTML at build time. When false,
	// documentation pages get empty content and render it client-side.
	Precompile bool
	// PDFMode renders documentation pages with the PDF template.
	PDFMode bool
}

// Page is one written output file.
type Page struct {
	Kind manifest.Kind
	HTML string // path relative to the build root, as written in the manifest
	Path string // path on disk
}

// Result describes a completed render pass.
type Result struct {
	Pass     string
	Pages    []Page
	Duration time.Duration
}

// DocPaths returns the on-disk paths of documentation pages in manifest order.
func (r *Result) DocPaths() []string {
	var paths []string
	for _, p := range r.Pages {
		if p.Kind == manifest.KindDoc {
			paths = append(paths, p.Path)
		}
	}
	return paths
}

// Builder runs render passes. It holds no per-pass state and may be reused.
type Builder struct {
	cfg         Config
	logger      zerolog.Logger
	transformer *pipeline.Transformer
	now         func() time.Time
}

// NewBuilder creates a Builder for the given site layout.
func NewBuilder(cfg Config, logger zerolog.Logger) *Builder {
	return &Builder{
		cfg:         cfg,
		logger:      logger,
		transformer: pipeline.NewTransformer(),
		now:         time.Now,
	}
}

// Config returns the site layout the builder was created with.
func (b *Builder) Config() Config {
	return b.cfg
}

// renderContext holds everything loaded for a single pass.
type renderContext struct {
	opts     Options
	manifest *manifest.Manifest
	renderer *render.Renderer
	pages    []map[string]any
	logger   zerolog.Logger
}

// RenderAll renders every page of the manifest in order. The first failure
// aborts the pass; pages written before it stay on disk. The context is
// checked between pages.
func (b *Builder) RenderAll(ctx context.Context, opts Options) (*Result, error) {
	start := b.now()
	logger, pass := logging.WithPass(b.logger)
	result := &Result{Pass: pass}

	rc, err := b.load(opts, logger)
	if err != nil {
		return result, err
	}

	logger.Debug().
		Int("pages", len(rc.manifest.Pages)).
		Bool("precompile", opts.Precompile).
		Bool("pdf", opts.PDFMode).
		Msg("render pass started")

	for _, page := range rc.manifest.Pages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		out, err := b.renderPage(ctx, rc, page)
		if err != nil {
			return result, fmt.Errorf("%s: %w", page.OutputPath(), err)
		}

		dest := filepath.Join(b.cfg.BuildDir, filepath.FromSlash(page.OutputPath()))
		if err := writeOutput(dest, out); err != nil {
			return result, err
		}

		result.Pages = append(result.Pages, Page{Kind: page.Kind(), HTML: page.OutputPath(), Path: dest})
		logger.Debug().Str("page", page.OutputPath()).Stringer("kind", page.Kind()).Msg("page written")
	}

	result.Duration = b.now().Sub(start)
	logger.Info().
		Int("pages", len(result.Pages)).
		Dur("took", result.Duration).
		Bool("pdf", opts.PDFMode).
		Msg("site rendered")

	return result, nil
}

// load reads the manifest and the template set for one pass.
func (b *Builder) load(opts Options, logger zerolog.Logger) (*renderContext, error) {
	m, err := manifest.Load(b.cfg.ManifestPath)
	if err != nil {
		return nil, err
	}

	var skip []string
	if isWithin(b.cfg.BuildDir, b.cfg.TemplateDir) {
		skip = append(skip, b.cfg.BuildDir)
	}
	r, err := render.New(b.cfg.TemplateDir, render.Options{TrimBlocks: b.cfg.TrimBlocks, Skip: skip})
	if err != nil {
		return nil, err
	}

	return &renderContext{
		opts:     opts,
		manifest: m,
		renderer: r,
		pages:    m.Raw(),
		logger:   logger,
	}, nil
}

// renderPage renders one descriptor. The descriptor variant selects the
// template and the variables.
func (b *Builder) renderPage(ctx context.Context, rc *renderContext, page manifest.Page) (string, error) {
	switch p := page.(type) {
	case *manifest.DocPage:
		return b.renderDoc(ctx, rc, p)
	case *manifest.StaticPage:
		return rc.renderer.Render(p.Template, map[string]any{
			VarCurrentPage: p.Fields,
			VarPages:       rc.pages,
		})
	default:
		return "", fmt.Errorf("unsupported page type %T", page)
	}
}

func (b *Builder) renderDoc(ctx context.Context, rc *renderContext, p *manifest.DocPage) (string, error) {
	name := b.cfg.DocTemplate
	if rc.opts.PDFMode {
		name = b.cfg.PDFTemplate
	}

	var content string
	if rc.opts.Precompile {
		src := filepath.Join(b.cfg.ContentDir, filepath.FromSlash(p.Markdown))
		data, err := os.ReadFile(src) // #nosec G304 -- path validated by the manifest loader
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrContentRead, err)
		}
		content, err = b.transformer.Render(ctx, string(data))
		if err != nil {
			return "", err
		}
	}

	return rc.renderer.Render(name, map[string]any{
		VarCurrentPage: p.Fields,
		VarPages:       rc.pages,
		VarContent:     template.HTML(content), // #nosec G203 -- produced by the markdown transform
		VarPrecompiled: rc.opts.Precompile,
	})
}

// writeOutput writes a page, creating parent directories as needed.
func writeOutput(dest, content string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := fileutil.WriteAtomic(dest, []byte(content), 0o644); err != nil { // #nosec G306 -- site output is world-readable
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// isWithin reports whether dir is strictly inside root.
func isWithin(dir, root string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || rel == "." {
		return false
	}
	return !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}
