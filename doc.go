// Package docportal builds documentation sites from a page manifest, a
// directory of html/template templates and a directory of markdown files.
//
// # Quick Start
//
// Load the config written by `docportal init`, build once and close:
//
//	cfg, err := docportal.LoadConfig("tool/docportal.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	site, err := docportal.New(cfg, docportal.WithPrecompile(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer site.Close()
//
//	written, err := site.Build(ctx)
//
// # Passes
//
// A normal pass renders every manifest entry into the build directory.
// Documentation pages either carry their markdown converted at build time
// (WithPrecompile) or an empty content slot filled in by the browser.
//
// WithPDF adds a PDF pass before each normal pass: documentation pages are
// rendered with the PDF template and composed, cover first, into one file
// by Prince or headless Chrome. The normal pass then restores the HTML tree.
//
// # Watching
//
// Site.Watch rebuilds whenever the manifest, a template, or (when markdown
// is converted at build time) a markdown file changes. Files written by the
// build never trigger a rebuild.
package docportal
