package main

// Notes:
// - loadEnvConfig/warnUnknownEnvVars read the process environment, so these
//   tests use t.Setenv and cannot run in parallel.
// - applyEnvConfig is pure and runs in parallel.

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/go-docportal/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable parsing
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Run("reads all variables", func(t *testing.T) {
		t.Setenv("DOCPORTAL_CONFIG", "/etc/docportal.yaml")
		t.Setenv("DOCPORTAL_MANIFEST", "pages.yaml")
		t.Setenv("DOCPORTAL_TEMPLATE_DIR", "templates")
		t.Setenv("DOCPORTAL_CONTENT_DIR", "content")
		t.Setenv("DOCPORTAL_BUILD_DIR", "public")
		t.Setenv("DOCPORTAL_PDF_ENGINE", "chrome")
		t.Setenv("DOCPORTAL_PDF_BIN", "/usr/bin/chromium")
		t.Setenv("DOCPORTAL_PDF_TIMEOUT", "45s")

		got := loadEnvConfig()
		want := envConfig{
			ConfigPath:  "/etc/docportal.yaml",
			Manifest:    "pages.yaml",
			TemplateDir: "templates",
			ContentDir:  "content",
			BuildDir:    "public",
			PDFEngine:   "chrome",
			PDFBin:      "/usr/bin/chromium",
			PDFTimeout:  45 * time.Second,
		}
		if *got != want {
			t.Errorf("loadEnvConfig() = %+v, want %+v", *got, want)
		}
	})

	t.Run("ignores invalid timeouts", func(t *testing.T) {
		for _, v := range []string{"soon", "-5s", "0s"} {
			t.Setenv("DOCPORTAL_PDF_TIMEOUT", v)
			if got := loadEnvConfig().PDFTimeout; got != 0 {
				t.Errorf("DOCPORTAL_PDF_TIMEOUT=%q: PDFTimeout = %v, want 0", v, got)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Unknown variable detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Run("warns on unknown DOCPORTAL_ vars", func(t *testing.T) {
		t.Setenv("DOCPORTAL_BUILDDIR", "typo")

		var buf bytes.Buffer
		warnUnknownEnvVars(&buf)

		if !bytes.Contains(buf.Bytes(), []byte("DOCPORTAL_BUILDDIR")) {
			t.Errorf("should warn about DOCPORTAL_BUILDDIR, got: %s", buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte("typo?")) {
			t.Errorf("should suggest typo, got: %s", buf.String())
		}
	})

	t.Run("no warning for known vars", func(t *testing.T) {
		for name := range knownEnvVars {
			t.Setenv(name, "x")
		}

		var buf bytes.Buffer
		warnUnknownEnvVars(&buf)

		if buf.Len() > 0 {
			t.Errorf("should not warn for known vars, got: %s", buf.String())
		}
	})

	t.Run("ignores other vars", func(t *testing.T) {
		t.Setenv("SOME_OTHER_VAR", "value")
		t.Setenv("MY_DOCPORTAL_THING", "value")

		var buf bytes.Buffer
		warnUnknownEnvVars(&buf)

		if buf.Len() > 0 {
			t.Errorf("should only check the DOCPORTAL_ prefix, got: %s", buf.String())
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env values override the config file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	workDir := filepath.FromSlash("/work/site")

	t.Run("empty env keeps config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		want := *cfg
		applyEnvConfig(&envConfig{}, cfg, workDir)
		if *cfg != want {
			t.Errorf("config changed: %+v", *cfg)
		}
	})

	t.Run("relative paths resolve against the work dir", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		applyEnvConfig(&envConfig{
			Manifest:    "pages.yaml",
			TemplateDir: "tpl",
			ContentDir:  "docs",
			BuildDir:    filepath.FromSlash("/srv/www"),
		}, cfg, workDir)

		checks := map[string][2]string{
			"Manifest":      {cfg.Manifest, filepath.Join(workDir, "pages.yaml")},
			"Templates.Dir": {cfg.Templates.Dir, filepath.Join(workDir, "tpl")},
			"Content.Dir":   {cfg.Content.Dir, filepath.Join(workDir, "docs")},
			"Build.Dir":     {cfg.Build.Dir, filepath.FromSlash("/srv/www")},
		}
		for field, c := range checks {
			if c[0] != c[1] {
				t.Errorf("%s = %q, want %q", field, c[0], c[1])
			}
		}
	})

	t.Run("pdf settings", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		applyEnvConfig(&envConfig{PDFEngine: "chrome", PDFBin: "chromium", PDFTimeout: time.Minute}, cfg, workDir)
		if cfg.PDF.Engine != "chrome" {
			t.Errorf("PDF.Engine = %q, want chrome", cfg.PDF.Engine)
		}
		if cfg.PDF.Bin != "chromium" {
			t.Errorf("PDF.Bin = %q, want bare name kept for PATH lookup", cfg.PDF.Bin)
		}
		if cfg.PDF.Timeout != time.Minute {
			t.Errorf("PDF.Timeout = %v, want 1m", cfg.PDF.Timeout)
		}

		applyEnvConfig(&envConfig{PDFBin: filepath.Join("bin", "prince")}, cfg, workDir)
		if want := filepath.Join(workDir, "bin", "prince"); cfg.PDF.Bin != want {
			t.Errorf("PDF.Bin = %q, want %q", cfg.PDF.Bin, want)
		}
	})
}

// ---------------------------------------------------------------------------
// TestKnownEnvVars - Every loaded variable is known
// ---------------------------------------------------------------------------

func TestKnownEnvVars(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"DOCPORTAL_CONFIG", "DOCPORTAL_MANIFEST", "DOCPORTAL_TEMPLATE_DIR",
		"DOCPORTAL_CONTENT_DIR", "DOCPORTAL_BUILD_DIR", "DOCPORTAL_PDF_ENGINE",
		"DOCPORTAL_PDF_BIN", "DOCPORTAL_PDF_TIMEOUT", "DOCPORTAL_CONTAINER",
	} {
		if !knownEnvVars[name] {
			t.Errorf("%s should be a known variable", name)
		}
	}
}
