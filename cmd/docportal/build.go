package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-docportal"
	"github.com/alnah/go-docportal/internal/config"
	"github.com/alnah/go-docportal/internal/hints"
	"github.com/alnah/go-docportal/internal/logging"
)

// Sentinel errors for CLI operations.
var (
	ErrInvalidPDFName = errors.New("PDF file name must end in .pdf")
	ErrTooManyArgs    = errors.New("unexpected arguments")
)

// pdfExt is the only extension accepted for --pdf.
const pdfExt = ".pdf"

// runBuildCmd parses the build flags, runs the build and returns an exit code.
func runBuildCmd(args []string, env *Environment) int {
	f, rest, err := parseBuildFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "%v\nRun 'docportal help build' for usage.\n", err)
		return ExitUsage
	}

	u := newUI(env, f.common.quiet, f.common.noColor)
	if len(rest) > 0 {
		u.failure(fmt.Errorf("%w: %s", ErrTooManyArgs, strings.Join(rest, " ")))
		return ExitUsage
	}

	ctx, stop := notifyContext(env.Context)
	defer stop()

	if err := runBuild(ctx, f, env, u); err != nil {
		u.failure(err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runBuild renders the site once, or keeps rebuilding it in watch mode
// until ctx is cancelled.
func runBuild(ctx context.Context, f *buildFlags, env *Environment, u *ui) error {
	// Checked before anything touches the disk.
	if err := validatePDFName(f.pdf.out); err != nil {
		return err
	}

	workDir, err := env.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	cfg, cfgPath, err := loadConfig(f, loadEnvConfig(), workDir)
	if err != nil {
		return err
	}

	logger := logging.New(env.Stderr, logging.LevelFromFlags(f.common.quiet, f.common.verbose), f.common.noColor || env.NoColor)
	if cfgPath != "" {
		logger.Debug().Str("config", cfgPath).Msg("config loaded")
	}

	opts := []docportal.Option{
		docportal.WithLogger(logger),
		docportal.WithPrecompile(f.preParse),
		docportal.WithEvents(func(ev docportal.Event) { reportEvent(u, ev) }),
	}
	if f.pdf.out != "" {
		engine, err := env.NewEngine(cfg.PDF.Engine, cfg.PDF.Bin, cfg.PDF.Timeout)
		if err != nil {
			return err
		}
		opts = append(opts, docportal.WithPDF(absPath(f.pdf.out, workDir), engine))
	}

	s, err := docportal.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warn().Err(err).Msg("shutdown")
		}
	}()

	if f.watch {
		return s.Watch(ctx)
	}
	_, err = s.Build(ctx)
	return err
}

// reportEvent prints the status line for a finished pass.
func reportEvent(u *ui, ev docportal.Event) {
	switch ev.Kind {
	case docportal.PDFWritten:
		u.success("PDF written to %s", ev.Path)
	case docportal.SiteBuilt:
		u.success("%d pages built in %s", ev.Pages, ev.Duration.Round(time.Millisecond))
	}
}

// validatePDFName accepts an empty name (no PDF) or a name ending in .pdf.
func validatePDFName(name string) error {
	if name == "" {
		return nil
	}
	// The raw argument must end in .pdf: Base would drop a trailing separator.
	if !strings.HasSuffix(strings.ToLower(name), pdfExt) ||
		len(filepath.Base(name)) == len(pdfExt) {
		return fmt.Errorf("%w: %q", ErrInvalidPDFName, name)
	}
	return nil
}

// loadConfig resolves the config file (flag, then env, then discovery) and
// layers the env vars and flags on top of it.
func loadConfig(f *buildFlags, ec *envConfig, workDir string) (*config.Config, string, error) {
	name := f.config
	if name == "" {
		name = ec.ConfigPath
	}

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if name != "" {
		path = name
		if looksLikePath(name) && !filepath.IsAbs(name) {
			path = filepath.Join(workDir, name)
		}
		cfg, err = config.LoadConfig(path)
	} else {
		cfg, path, err = config.Discover(workDir)
	}
	if err != nil {
		var nf *config.NotFoundError
		if errors.As(err, &nf) {
			return nil, "", fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nf.Tried))
		}
		return nil, "", fmt.Errorf("loading config: %w", err)
	}

	applyEnvConfig(ec, cfg, workDir)
	applyFlags(f, cfg, workDir)

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// applyFlags overrides config values with the flags that were set.
func applyFlags(f *buildFlags, cfg *config.Config, workDir string) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = absPath(v, workDir)
		}
	}
	set(&cfg.Manifest, f.paths.manifest)
	set(&cfg.Templates.Dir, f.paths.templates)
	set(&cfg.Content.Dir, f.paths.content)
	set(&cfg.Build.Dir, f.paths.build)

	if f.pdf.engine != "" {
		cfg.PDF.Engine = f.pdf.engine
	}
}

func absPath(p, workDir string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(workDir, p)
}

// looksLikePath reports whether a --config value names a file rather than a
// config name to search for.
func looksLikePath(s string) bool {
	return strings.ContainsAny(s, `/\`) || filepath.Ext(s) != ""
}
