// Package assets provides the starter site written by `docportal init`.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from the go:embed scaffold
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// A custom scaffold directory may override any subset of the embedded files;
// files it lacks come from the embedded scaffold.
//
// # Directory Structure
//
// Asset names are slash-separated paths relative to the scaffold root:
//
//	{basePath}/
//	├── tool/
//	│   ├── pages.json            # page manifest
//	│   ├── docportal.yaml        # config
//	│   ├── template-doc.html     # documentation page template
//	│   ├── template-forpdf.html  # documentation page template for PDF
//	│   ├── template-index.html   # cover page
//	│   └── partials/nav.html
//	├── content/*.md
//	└── css/*.css
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader reads through os.Root, so symlinks cannot leave the
// scaffold directory.
package assets
