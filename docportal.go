package docportal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-docportal/internal/config"
	"github.com/alnah/go-docportal/internal/pdf"
	"github.com/alnah/go-docportal/internal/site"
	"github.com/alnah/go-docportal/internal/watch"
)

// Config is the site layout and tool settings, as read from docportal.yaml
// or docportal.toml.
type Config = config.Config

// PDFEngine composes rendered pages into a PDF file.
type PDFEngine = pdf.Engine

// Engine names accepted by NewPDFEngine and the pdf.engine setting.
const (
	EnginePrince = pdf.EnginePrince
	EngineChrome = pdf.EngineChrome
)

// DefaultConfig returns the layout of a tool directory next to the content
// directory, building into their parent.
func DefaultConfig() *Config { return config.DefaultConfig() }

// LoadConfig reads a config file, or searches for a config name in the
// working directory and the user config directory.
func LoadConfig(nameOrPath string) (*Config, error) { return config.LoadConfig(nameOrPath) }

// NewPDFEngine returns the named engine. bin overrides the compositor or
// browser binary.
func NewPDFEngine(name, bin string, timeout time.Duration) (PDFEngine, error) {
	return pdf.NewEngine(name, bin, timeout)
}

// EventKind tells what an Event reports.
type EventKind int

const (
	// PDFWritten follows a successful PDF pass.
	PDFWritten EventKind = iota + 1
	// SiteBuilt follows a successful normal pass.
	SiteBuilt
)

// Event reports the outcome of one pass of a build.
type Event struct {
	Kind     EventKind
	Path     string // the PDF, for PDFWritten
	Pages    int
	Duration time.Duration
}

// Option configures a Site.
type Option func(*Site)

// WithLogger sets the logger for progress and rebuild diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Site) { s.logger = l }
}

// WithPrecompile converts markdown at build time instead of leaving it to
// the browser.
func WithPrecompile(on bool) Option {
	return func(s *Site) { s.precompile = on }
}

// WithPDF adds a PDF pass writing to out before every normal pass. A nil
// engine is built from the config's pdf settings. The Site owns the engine
// from then on, including when New fails.
func WithPDF(out string, engine PDFEngine) Option {
	return func(s *Site) {
		s.pdfOut = out
		s.engine = engine
	}
}

// WithEvents registers a callback invoked after each successful pass.
func WithEvents(fn func(Event)) Option {
	return func(s *Site) { s.notify = fn }
}

// Site builds one documentation site. A Site holding a PDF engine must be
// closed.
type Site struct {
	cfg        *Config
	logger     zerolog.Logger
	precompile bool
	pdfOut     string
	engine     PDFEngine
	notify     func(Event)

	builder  *site.Builder
	exporter *pdf.Exporter
}

// New validates cfg and prepares a Site. Paths in cfg should be absolute;
// LoadConfig resolves them against the config file.
func New(cfg *Config, opts ...Option) (*Site, error) {
	s := &Site{cfg: cfg, logger: zerolog.Nop(), notify: func(Event) {}}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if cfg == nil {
		err = fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	} else {
		err = cfg.Validate()
	}
	if err != nil {
		if s.engine != nil {
			_ = s.engine.Close()
		}
		return nil, err
	}

	s.builder = site.NewBuilder(site.Config{
		ManifestPath: cfg.Manifest,
		TemplateDir:  cfg.Templates.Dir,
		ContentDir:   cfg.Content.Dir,
		BuildDir:     cfg.Build.Dir,
		DocTemplate:  cfg.Templates.Doc,
		PDFTemplate:  cfg.Templates.PDF,
		TrimBlocks:   cfg.Templates.TrimBlocks,
	}, s.logger)

	if s.pdfOut != "" {
		if s.engine == nil {
			engine, err := pdf.NewEngine(cfg.PDF.Engine, cfg.PDF.Bin, cfg.PDF.Timeout)
			if err != nil {
				return nil, err
			}
			s.engine = engine
		}
		s.exporter = pdf.NewExporter(s.builder, s.engine, pdf.Options{
			BuildDir: cfg.Build.Dir,
			Cover:    cfg.PDF.Cover,
			Timeout:  cfg.PDF.Timeout,
			Logger:   s.logger,
		})
	}
	return s, nil
}

// Build runs the PDF pass, when configured, then the normal pass. It
// returns every file written, including those of a pass that failed midway.
// The normal pass always comes last so the tree on disk is never left in
// PDF mode.
func (s *Site) Build(ctx context.Context) ([]string, error) {
	var written []string

	if s.exporter != nil {
		res, err := s.exporter.Export(ctx, s.pdfOut)
		written = appendPages(written, res)
		if err != nil {
			return written, err
		}
		written = append(written, s.pdfOut)
		s.notify(Event{Kind: PDFWritten, Path: s.pdfOut, Pages: len(res.DocPaths()), Duration: res.Duration})
	}

	res, err := s.builder.RenderAll(ctx, site.Options{Precompile: s.precompile})
	written = appendPages(written, res)
	if err != nil {
		return written, err
	}
	s.notify(Event{Kind: SiteBuilt, Pages: len(res.Pages), Duration: res.Duration})
	return written, nil
}

// Watch builds once, then rebuilds on every relevant change until ctx is
// cancelled. A failed build is logged and the next change retries.
func (s *Site) Watch(ctx context.Context) error {
	if _, err := s.Build(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Error().Err(err).Msg("initial build failed, waiting for changes")
	}

	// The PDF pass always precompiles, so markdown edits matter with it too.
	matcher := watch.NewMatcher(watch.Paths{
		Manifest:  s.cfg.Manifest,
		Templates: s.cfg.Templates.Dir,
		Content:   s.cfg.Content.Dir,
		Build:     s.cfg.Build.Dir,
	}, s.precompile || s.exporter != nil)

	return watch.New(matcher, s.Build, s.cfg.Watch.Debounce, s.logger).Run(ctx)
}

// Close releases the PDF engine, if any.
func (s *Site) Close() error {
	if s.exporter == nil {
		return nil
	}
	if err := s.exporter.Close(); err != nil {
		return fmt.Errorf("closing PDF engine: %w", err)
	}
	return nil
}

func appendPages(written []string, res *site.Result) []string {
	if res == nil {
		return written
	}
	for _, p := range res.Pages {
		written = append(written, p.Path)
	}
	return written
}
