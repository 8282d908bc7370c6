// Package pdf exports the documentation pages of a site as a single PDF.
//
// An export renders the site in PDF mode (markdown always precompiled, doc
// pages through the PDF template), then hands the rendered pages to a
// composition engine in manifest order, preceded by an optional cover page:
//
//   - prince: runs the Prince compositor binary
//   - chrome: merges the pages and prints them with headless Chrome (go-rod)
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-docportal/internal/fileutil"
	"github.com/alnah/go-docportal/internal/site"
)

// Sentinel errors for PDF export.
var (
	ErrExternalTool  = errors.New("PDF composition failed")
	ErrUnknownEngine = errors.New("unknown PDF engine")
	ErrNoPages       = errors.New("no documentation pages to export")
)

// Engine names.
const (
	EnginePrince = "prince"
	EngineChrome = "chrome"
)

// DefaultTimeout bounds a single composition.
const DefaultTimeout = 2 * time.Minute

// Engine composes rendered HTML pages into one PDF file.
type Engine interface {
	Name() string
	Compose(ctx context.Context, inputs []string, out string) error
	Close() error
}

// rootedEngine is an engine that resolves page URLs against the build root.
type rootedEngine interface {
	setRoot(dir string)
}

// SiteRenderer runs a render pass. Implemented by *site.Builder.
type SiteRenderer interface {
	RenderAll(ctx context.Context, opts site.Options) (*site.Result, error)
}

// Options configures an Exporter.
type Options struct {
	BuildDir string
	Cover    string // cover page relative to the build root; empty disables it
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Exporter runs PDF passes. It may be reused across watch rebuilds; Close
// releases the engine.
type Exporter struct {
	site   SiteRenderer
	engine Engine
	opts   Options
}

// NewExporter creates an Exporter.
func NewExporter(s SiteRenderer, engine Engine, opts Options) *Exporter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if r, ok := engine.(rootedEngine); ok && opts.BuildDir != "" {
		r.setRoot(opts.BuildDir)
	}
	return &Exporter{site: s, engine: engine, opts: opts}
}

// NewEngine returns the engine registered under name. bin is the compositor
// binary for prince and the browser binary for chrome (empty for auto).
func NewEngine(name, bin string, timeout time.Duration) (Engine, error) {
	switch strings.ToLower(name) {
	case EnginePrince, "":
		return NewPrinceEngine(bin), nil
	case EngineChrome:
		return NewChromeEngine(bin, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s, %s)", ErrUnknownEngine, name, EnginePrince, EngineChrome)
	}
}

// Export renders the site in PDF mode and composes the result into out.
// It returns the render result of the PDF pass.
func (e *Exporter) Export(ctx context.Context, out string) (*site.Result, error) {
	res, err := e.site.RenderAll(ctx, site.Options{Precompile: true, PDFMode: true})
	if err != nil {
		return res, err
	}

	inputs := e.inputs(res)
	if len(inputs) == 0 {
		return res, ErrNoPages
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return res, fmt.Errorf("%w: creating output directory: %v", ErrExternalTool, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	e.opts.Logger.Info().
		Str("engine", e.engine.Name()).
		Int("inputs", len(inputs)).
		Str("out", out).
		Msg("composing PDF")

	if err := e.engine.Compose(ctx, inputs, out); err != nil {
		return res, err
	}

	e.opts.Logger.Info().Str("out", out).Msg("PDF written")
	return res, nil
}

// inputs returns the cover page, when present on disk, followed by the doc
// pages in manifest order.
func (e *Exporter) inputs(res *site.Result) []string {
	docs := res.DocPaths()
	if e.opts.Cover == "" {
		return docs
	}

	cover := filepath.Join(e.opts.BuildDir, filepath.FromSlash(e.opts.Cover))
	switch {
	case !fileutil.FileExists(cover):
		e.opts.Logger.Debug().Str("cover", cover).Msg("cover page not found, skipped")
		return docs
	case slices.Contains(docs, cover):
		return docs
	}
	return append([]string{cover}, docs...)
}

// Close releases the engine.
func (e *Exporter) Close() error {
	return e.engine.Close()
}
