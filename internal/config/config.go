// Package config loads the site layout and tool settings from a YAML or TOML
// file. Relative paths in a file are resolved against the file's directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alnah/go-docportal/internal/fileutil"
	"github.com/alnah/go-docportal/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// DefaultName is the config name searched when none is given.
const DefaultName = "docportal"

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxTemplateLength = 255
	MaxEngineLength   = 20
)

// Supported PDF engines. Mirrors the pdf package without importing it.
var engines = []string{"prince", "chrome"}

// Config holds all configuration for a site build.
type Config struct {
	Manifest  string          `yaml:"manifest" toml:"manifest"`
	Templates TemplatesConfig `yaml:"templates" toml:"templates"`
	Content   ContentConfig   `yaml:"content" toml:"content"`
	Build     BuildConfig     `yaml:"build" toml:"build"`
	Watch     WatchConfig     `yaml:"watch" toml:"watch"`
	PDF       PDFConfig       `yaml:"pdf" toml:"pdf"`
}

// TemplatesConfig locates the template set.
type TemplatesConfig struct {
	Dir        string `yaml:"dir" toml:"dir"`
	Doc        string `yaml:"doc" toml:"doc"` // documentation page template
	PDF        string `yaml:"pdf" toml:"pdf"` // documentation page template in PDF mode
	TrimBlocks bool   `yaml:"trimBlocks" toml:"trimBlocks"`
}

// ContentConfig locates the markdown sources.
type ContentConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// BuildConfig locates the output tree.
type BuildConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// PDFConfig selects and tunes the PDF engine.
type PDFConfig struct {
	Engine  string        `yaml:"engine" toml:"engine"`   // "prince" or "chrome"
	Bin     string        `yaml:"bin" toml:"bin"`         // compositor or browser binary; empty = auto
	Cover   string        `yaml:"cover" toml:"cover"`     // relative to the build dir; empty = none
	Timeout time.Duration `yaml:"timeout" toml:"timeout"` // per composition
}

// DefaultConfig returns the layout of a tool directory sitting next to the
// content directory, with the site built into their parent.
func DefaultConfig() *Config {
	return &Config{
		Manifest: "pages.json",
		Templates: TemplatesConfig{
			Dir:        ".",
			Doc:        "template-doc.html",
			PDF:        "template-forpdf.html",
			TrimBlocks: true,
		},
		Content: ContentConfig{Dir: filepath.Join("..", "content")},
		Build:   BuildConfig{Dir: ".."},
		Watch:   WatchConfig{Debounce: 100 * time.Millisecond},
		PDF: PDFConfig{
			Engine:  "prince",
			Cover:   "index.html",
			Timeout: 2 * time.Minute,
		},
	}
}

// Validate checks required fields, enumerations and durations.
func (c *Config) Validate() error {
	required := []struct {
		name, value string
		max         int
	}{
		{"manifest", c.Manifest, MaxPathLength},
		{"templates.dir", c.Templates.Dir, MaxPathLength},
		{"templates.doc", c.Templates.Doc, MaxTemplateLength},
		{"templates.pdf", c.Templates.PDF, MaxTemplateLength},
		{"content.dir", c.Content.Dir, MaxPathLength},
		{"build.dir", c.Build.Dir, MaxPathLength},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s: required", ErrInvalidConfig, f.name)
		}
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if err := validateFieldLength("pdf.engine", c.PDF.Engine, MaxEngineLength); err != nil {
		return err
	}
	if err := validateFieldLength("pdf.bin", c.PDF.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("pdf.cover", c.PDF.Cover, MaxPathLength); err != nil {
		return err
	}
	if !validEngine(c.PDF.Engine) {
		return fmt.Errorf("%w: pdf.engine: invalid value %q (must be %s)", ErrInvalidConfig, c.PDF.Engine, strings.Join(engines, " or "))
	}

	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: watch.debounce: must be positive, got %s", ErrInvalidConfig, c.Watch.Debounce)
	}
	if c.PDF.Timeout <= 0 {
		return fmt.Errorf("%w: pdf.timeout: must be positive, got %s", ErrInvalidConfig, c.PDF.Timeout)
	}

	return nil
}

func validEngine(name string) bool {
	for _, e := range engines {
		if strings.EqualFold(name, e) {
			return true
		}
	}
	return false
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// ResolvePaths makes the relative paths of c absolute against base. Template
// names are left alone; pdf.bin is only resolved when it contains a path
// separator, so bare names are still looked up on PATH.
func (c *Config) ResolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Manifest = resolve(c.Manifest)
	c.Templates.Dir = resolve(c.Templates.Dir)
	c.Content.Dir = resolve(c.Content.Dir)
	c.Build.Dir = resolve(c.Build.Dir)
	if isFilePath(c.PDF.Bin) {
		c.PDF.Bin = resolve(c.PDF.Bin)
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a known extension, it's treated
// as a file path. Otherwise, it's treated as a config name and searched in
// standard locations. Returns error if the file is not found (no silent fallback).
//
// Values missing from the file keep their defaults. Relative paths are
// resolved against the directory of the file.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) && format(nameOrPath) == "" {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(configPath, data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ResolvePaths(filepath.Dir(configPath))
	return cfg, nil
}

// Discover loads the DefaultName config when one exists in a standard
// location. With no config file it returns the defaults resolved against
// the working directory and an empty path.
func Discover(workDir string) (*Config, string, error) {
	path, err := resolveConfigPath(DefaultName)
	if errors.Is(err, ErrConfigNotFound) {
		cfg := DefaultConfig()
		cfg.ResolvePaths(workDir)
		return cfg, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// decode picks the parser from the file extension. Unknown keys are errors
// in both formats.
func decode(path string, data []byte, cfg *Config) error {
	switch format(path) {
	case "toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil
	default:
		return yamlutil.Decode(data, cfg, yamlutil.Strict)
	}
}

// format returns "yaml" or "toml" for a config file name, or "" when the
// extension is not a config extension.
func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return ""
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml, .toml
// Tries locations in order: current directory, ~/.config/docportal/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml", ".toml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, DefaultName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Tried: triedPaths}
}

// NotFoundError lists the locations searched for a config name.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }
