// Package fileutil writes the files produced by a build: rendered pages,
// the merged PDF source and the PDF itself.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadExtension is returned for a temp file extension that is empty or
// would leave the temp directory.
var ErrBadExtension = errors.New("invalid temp file extension")

// WriteTemp stores data in a new file of the system temp directory named
// docportal-*.<ext>. cleanup removes the file and is safe to call twice.
func WriteTemp(data []byte, ext string) (path string, cleanup func(), err error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || strings.ContainsAny(ext, "/\\\x00") {
		return "", nil, fmt.Errorf("%w: %q", ErrBadExtension, ext)
	}

	f, err := os.CreateTemp("", "docportal-*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	if err := writeAndClose(f, data); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// WriteAtomic replaces the file at path with data. The bytes go to a hidden
// sibling first and are renamed into place, so a browser reloading the page
// during a watch rebuild never reads a truncated file.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	tmp := f.Name()

	if err := writeAndClose(f, data); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", f.Name(), err)
	}
	return nil
}

// FileExists reports whether path names a regular file (or a link to one).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
