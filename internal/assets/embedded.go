package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed all:scaffold
var scaffold embed.FS

const scaffoldRoot = "scaffold"

// EmbeddedLoader loads assets from the embedded scaffold.
// Implements Loader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// Load reads an embedded asset.
func (e *EmbeddedLoader) Load(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	content, err := scaffold.ReadFile(scaffoldRoot + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrAssetNotFound, name)
	}
	return content, nil
}

// List returns the names of all embedded assets.
func (e *EmbeddedLoader) List() ([]string, error) {
	sub, err := fs.Sub(scaffold, scaffoldRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}

	var names []string
	err = fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	sort.Strings(names)
	return names, nil
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
