package assets

// Loader defines the contract for reading scaffold files.
// Implementations may load from embedded assets, filesystem, S3, database, etc.
type Loader interface {
	// Load reads an asset by slash-separated name, e.g. "tool/pages.json".
	// Returns ErrAssetNotFound if the asset doesn't exist.
	// Returns ErrInvalidAssetName if the name is unsafe.
	Load(name string) ([]byte, error)

	// List returns every asset name, sorted.
	List() ([]string, error)
}
