package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docportal/internal/config"
)

// envPrefix marks the variables read by docportal.
const envPrefix = "DOCPORTAL_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the config file.
type envConfig struct {
	ConfigPath  string        // DOCPORTAL_CONFIG: config file path
	Manifest    string        // DOCPORTAL_MANIFEST: page manifest path
	TemplateDir string        // DOCPORTAL_TEMPLATE_DIR: template root
	ContentDir  string        // DOCPORTAL_CONTENT_DIR: markdown root
	BuildDir    string        // DOCPORTAL_BUILD_DIR: output root
	PDFEngine   string        // DOCPORTAL_PDF_ENGINE: prince or chrome
	PDFBin      string        // DOCPORTAL_PDF_BIN: compositor or browser binary
	PDFTimeout  time.Duration // DOCPORTAL_PDF_TIMEOUT: composition timeout
}

// knownEnvVars lists valid DOCPORTAL_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCPORTAL_CONFIG":       true,
	"DOCPORTAL_MANIFEST":     true,
	"DOCPORTAL_TEMPLATE_DIR": true,
	"DOCPORTAL_CONTENT_DIR":  true,
	"DOCPORTAL_BUILD_DIR":    true,
	"DOCPORTAL_PDF_ENGINE":   true,
	"DOCPORTAL_PDF_BIN":      true,
	"DOCPORTAL_PDF_TIMEOUT":  true,
	"DOCPORTAL_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("DOCPORTAL_CONFIG"),
		Manifest:    os.Getenv("DOCPORTAL_MANIFEST"),
		TemplateDir: os.Getenv("DOCPORTAL_TEMPLATE_DIR"),
		ContentDir:  os.Getenv("DOCPORTAL_CONTENT_DIR"),
		BuildDir:    os.Getenv("DOCPORTAL_BUILD_DIR"),
		PDFEngine:   os.Getenv("DOCPORTAL_PDF_ENGINE"),
		PDFBin:      os.Getenv("DOCPORTAL_PDF_BIN"),
	}

	// Invalid durations are ignored, like the other malformed values.
	if timeout := os.Getenv("DOCPORTAL_PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.PDFTimeout = d
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOCPORTAL_* variables.
// Helps catch typos like DOCPORTAL_BUILDDIR instead of DOCPORTAL_BUILD_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config values with the set environment variables.
// Relative paths are resolved against workDir, the directory docportal runs
// in. The resulting priority is: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via applyFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config, workDir string) {
	set := func(dst *string, v string) {
		if v == "" {
			return
		}
		if !filepath.IsAbs(v) {
			v = filepath.Join(workDir, v)
		}
		*dst = v
	}
	set(&cfg.Manifest, env.Manifest)
	set(&cfg.Templates.Dir, env.TemplateDir)
	set(&cfg.Content.Dir, env.ContentDir)
	set(&cfg.Build.Dir, env.BuildDir)

	if env.PDFEngine != "" {
		cfg.PDF.Engine = env.PDFEngine
	}
	if env.PDFBin != "" {
		// Bare names stay bare so they are looked up on PATH.
		if strings.ContainsAny(env.PDFBin, `/\`) {
			set(&cfg.PDF.Bin, env.PDFBin)
		} else {
			cfg.PDF.Bin = env.PDFBin
		}
	}
	if env.PDFTimeout > 0 {
		cfg.PDF.Timeout = env.PDFTimeout
	}
}
