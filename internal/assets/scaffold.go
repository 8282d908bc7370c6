package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Scaffold writes every asset of l under dest and returns the written paths.
// Existing files are never overwritten unless force is set; the check runs
// before anything is written, so a refused scaffold leaves dest untouched.
func Scaffold(l Loader, dest string, force bool) ([]string, error) {
	names, err := l.List()
	if err != nil {
		return nil, err
	}

	if !force {
		var existing []error
		for _, name := range names {
			target := filepath.Join(dest, filepath.FromSlash(name))
			if _, err := os.Lstat(target); err == nil {
				existing = append(existing, fmt.Errorf("%w: %s", ErrAssetExists, target))
			}
		}
		if len(existing) > 0 {
			return nil, errors.Join(existing...)
		}
	}

	written := make([]string, 0, len(names))
	for _, name := range names {
		content, err := l.Load(name)
		if err != nil {
			return written, err
		}

		target := filepath.Join(dest, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return written, fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, content, 0o644); err != nil { // #nosec G306 -- site sources are world-readable
			return written, fmt.Errorf("writing %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}
