package assets

import (
	"fmt"
	"io/fs"
	"strings"
)

// ValidateAssetName accepts the names used by embedded scaffolds: rooted
// at the scaffold, slash-separated and already clean. Backslashes are
// rejected too, so a name means the same file on every platform.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case name == "." || !fs.ValidPath(name) || strings.ContainsAny(name, "\\\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
