package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	quiet   bool
	verbose bool
	noColor bool
}

// pathFlags override the site layout of the config file.
type pathFlags struct {
	manifest  string
	templates string
	content   string
	build     string
}

// pdfFlags select the PDF pass.
type pdfFlags struct {
	out    string
	engine string
}

// buildFlags holds all flags of the build command.
type buildFlags struct {
	config   string
	preParse bool
	watch    bool
	common   commonFlags
	paths    pathFlags
	pdf      pdfFlags
}

// initFlags holds the flags of the init command.
type initFlags struct {
	force  bool
	from   string
	common commonFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every page")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// addPathFlags adds site layout flags to a FlagSet.
func addPathFlags(fs *flag.FlagSet, f *pathFlags) {
	fs.StringVar(&f.manifest, "manifest", "", "page manifest file")
	fs.StringVar(&f.templates, "templates", "", "template directory")
	fs.StringVar(&f.content, "content", "", "markdown content directory")
	fs.StringVar(&f.build, "build", "", "output directory")
}

// addPDFFlags adds PDF pass flags to a FlagSet.
func addPDFFlags(fs *flag.FlagSet, f *pdfFlags) {
	fs.StringVar(&f.out, "pdf", "", "also write the documentation as a PDF file (must end in .pdf)")
	fs.StringVar(&f.engine, "pdf-engine", "", "PDF engine: prince, chrome")
}

// newBuildFlagSet registers every build flag on a new FlagSet bound to f.
// Shared by parsing and shell completion.
func newBuildFlagSet(f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.preParse, "pre-parse", "p", false, "convert markdown to HTML at build time")
	fs.BoolVarP(&f.watch, "watch", "w", false, "rebuild on change until interrupted")

	addCommonFlags(fs, &f.common)
	addPathFlags(fs, &f.paths)
	addPDFFlags(fs, &f.pdf)

	return fs
}

// newInitFlagSet registers every init flag on a new FlagSet bound to f.
func newInitFlagSet(f *initFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)

	fs.BoolVarP(&f.force, "force", "f", false, "overwrite existing files")
	fs.StringVar(&f.from, "from", "", "custom scaffold directory (falls back to the built-in one)")

	addCommonFlags(fs, &f.common)

	return fs
}

// parseBuildFlags parses build command flags and returns positional args.
// Parse errors are printed to stderr by pflag.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printBuildUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseInitFlags parses init command flags and returns positional args.
func parseInitFlags(args []string, stderr io.Writer) (*initFlags, []string, error) {
	f := &initFlags{}
	fs := newInitFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printInitUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
