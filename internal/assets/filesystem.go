package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FilesystemLoader reads a scaffold from a directory given to
// `docportal init --from`. Reads go through os.Root, so neither a crafted
// name nor a symlink can reach a file outside the directory.
type FilesystemLoader struct {
	dir string
}

// NewFilesystemLoader checks that dir is a readable directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	defer root.Close()
	if _, err := fs.ReadDir(root.FS(), "."); err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", ErrInvalidBasePath, abs, err)
	}

	return &FilesystemLoader{dir: abs}, nil
}

// Load reads the named file below the scaffold directory.
func (f *FilesystemLoader) Load(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(f.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer root.Close()

	data, err := root.ReadFile(filepath.FromSlash(name))
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %q", ErrAssetNotFound, name)
	}
	// The name itself is inside the root, so a failure to follow it means
	// a link pointing out of the scaffold.
	if info, lerr := root.Lstat(filepath.FromSlash(name)); lerr == nil && info.Mode()&fs.ModeSymlink != 0 {
		return nil, fmt.Errorf("%w: %q links outside %s", ErrPathTraversal, name, f.dir)
	}
	return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
}

// List returns the regular files of the scaffold directory, sorted. Dot
// files and dot directories such as .git are left out.
func (f *FilesystemLoader) List() ([]string, error) {
	root, err := os.OpenRoot(f.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer root.Close()

	var names []string
	err = fs.WalkDir(root.FS(), ".", func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case p != "." && strings.HasPrefix(d.Name(), "."):
			if d.IsDir() {
				return fs.SkipDir
			}
		case d.Type().IsRegular():
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	slices.Sort(names)
	return names, nil
}

var _ Loader = (*FilesystemLoader)(nil)
