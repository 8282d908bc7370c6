// Command docportal renders a manifest-described documentation site to
// static HTML, optionally rebuilding on change and exporting a PDF.
package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
// With no command, or when the first argument is a flag, it builds.
func runMain(args []string, env *Environment) int {
	env = env.withDefaults()
	warnUnknownEnvVars(env.Stderr)

	if len(args) < 2 {
		return runBuildCmd(nil, env)
	}

	cmd, rest := args[1], args[2:]
	switch {
	case cmd == "build":
		return runBuildCmd(rest, env)
	case isFlag(cmd):
		if cmd == "-h" || cmd == "--help" {
			printUsage(env.Stdout)
			return ExitSuccess
		}
		return runBuildCmd(args[1:], env)
	}

	switch cmd {
	case "init":
		return runInitCmd(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		if err := runCompletion(rest, env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "version":
		fmt.Fprintf(env.Stdout, "docportal %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

func isFlag(arg string) bool {
	return strings.HasPrefix(arg, "-")
}

// hasVerboseFlag looks for -v/--verbose before the flags are parsed.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
