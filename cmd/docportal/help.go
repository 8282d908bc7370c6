package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docportal <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build       Render the site described by the page manifest (default)")
	fmt.Fprintln(w, "  init        Create a starter site")
	fmt.Fprintln(w, "  doctor      Check PDF engines and environment")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docportal help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docportal build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every page of the manifest into the build directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -p, --pre-parse           Convert markdown to HTML at build time")
	fmt.Fprintln(w, "                            (otherwise pages render it in the browser)")
	fmt.Fprintln(w, "  -w, --watch               Rebuild on change until interrupted")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: docportal)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Layout (override the config file):")
	fmt.Fprintln(w, "      --manifest <path>     Page manifest")
	fmt.Fprintln(w, "      --templates <dir>     Template directory")
	fmt.Fprintln(w, "      --content <dir>       Markdown content directory")
	fmt.Fprintln(w, "      --build <dir>         Output directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --pdf <file.pdf>      Also export the documentation pages as one PDF")
	fmt.Fprintln(w, "      --pdf-engine <name>   Engine: prince, chrome (default: prince)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log every page")
	fmt.Fprintln(w, "      --no-color            Disable colored output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOCPORTAL_CONFIG, DOCPORTAL_MANIFEST, DOCPORTAL_TEMPLATE_DIR,")
	fmt.Fprintln(w, "  DOCPORTAL_CONTENT_DIR, DOCPORTAL_BUILD_DIR, DOCPORTAL_PDF_ENGINE,")
	fmt.Fprintln(w, "  DOCPORTAL_PDF_BIN, DOCPORTAL_PDF_TIMEOUT")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  docportal build -p")
	fmt.Fprintln(w, "  docportal build -p -w")
	fmt.Fprintln(w, "  docportal build --pdf manual.pdf --pdf-engine chrome")
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docportal init [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Create a starter site in dir (default: current directory):")
	fmt.Fprintln(w, "a tool/ directory with the manifest, templates and config,")
	fmt.Fprintln(w, "a content/ directory with sample pages, and stylesheets.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --force               Overwrite existing files")
	fmt.Fprintln(w, "      --from <dir>          Custom scaffold directory")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docportal doctor [--json] [--no-color]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that a PDF engine is available and report the environment.")
}

// runHelp prints the help for the command named in args.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docportal version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docportal help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
