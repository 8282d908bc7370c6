package assets

import (
	"errors"
	"sort"
)

// Resolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the asset is not found in the custom location.
type Resolver struct {
	custom   Loader // nil if no custom path configured
	embedded Loader
}

// NewResolver creates a Resolver.
// If customBasePath is empty, only embedded assets are used.
// Returns error if customBasePath is set but invalid.
func NewResolver(customBasePath string) (*Resolver, error) {
	resolver := &Resolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// Load reads an asset, trying the custom loader first if available.
func (r *Resolver) Load(name string) ([]byte, error) {
	if r.custom == nil {
		return r.embedded.Load(name)
	}

	content, err := r.custom.Load(name)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !errors.Is(err, ErrAssetNotFound) {
		return nil, err
	}

	return r.embedded.Load(name)
}

// List returns the union of both loaders' names, sorted.
func (r *Resolver) List() ([]string, error) {
	names, err := r.embedded.List()
	if err != nil || r.custom == nil {
		return names, err
	}

	custom, err := r.custom.List()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range custom {
		if !seen[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
