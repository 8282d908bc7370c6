package main

import (
	"errors"
	"os"

	"github.com/alnah/go-docportal/internal/assets"
	"github.com/alnah/go-docportal/internal/config"
	"github.com/alnah/go-docportal/internal/manifest"
	"github.com/alnah/go-docportal/internal/pdf"
	"github.com/alnah/go-docportal/internal/render"
	"github.com/alnah/go-docportal/internal/site"
)

// Exit codes for the docportal CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Site built
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, manifest or templates
	ExitIO       = 3 // Content unreadable, output not writable
	ExitExternal = 4 // PDF compositor or browser failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// External tool errors (exit 4)
	if errors.Is(err, pdf.ErrExternalTool) {
		return ExitExternal
	}

	// Usage/config/validation errors (exit 2). Checked before I/O: a missing
	// config or template wraps os.ErrNotExist but is a usage problem.
	if errors.Is(err, ErrInvalidPDFName) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, manifest.ErrManifest) ||
		errors.Is(err, render.ErrTemplateNotFound) ||
		errors.Is(err, render.ErrTemplateRender) ||
		errors.Is(err, pdf.ErrUnknownEngine) ||
		errors.Is(err, pdf.ErrNoPages) ||
		errors.Is(err, assets.ErrAssetExists) ||
		errors.Is(err, assets.ErrInvalidBasePath) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, site.ErrContentRead) ||
		errors.Is(err, site.ErrWriteOutput) ||
		errors.Is(err, assets.ErrAssetRead) {
		return ExitIO
	}

	return ExitGeneral
}
