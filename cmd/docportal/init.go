package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-docportal/internal/assets"
)

// runInitCmd writes the starter site into the target directory.
func runInitCmd(args []string, env *Environment) int {
	f, rest, err := parseInitFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "%v\nRun 'docportal help init' for usage.\n", err)
		return ExitUsage
	}

	u := newUI(env, f.common.quiet, f.common.noColor)
	if len(rest) > 1 {
		u.failure(fmt.Errorf("%w: %s", ErrTooManyArgs, strings.Join(rest[1:], " ")))
		return ExitUsage
	}

	dest := "."
	if len(rest) == 1 {
		dest = rest[0]
	}

	written, err := runInit(dest, f)
	if err != nil {
		if errors.Is(err, assets.ErrAssetExists) {
			err = fmt.Errorf("%w\n  hint: use --force to overwrite", err)
		}
		u.failure(err)
		return exitCodeFor(err)
	}

	for _, p := range written {
		u.success("created %s", p)
	}
	u.note("next: cd %s && docportal build -p", filepath.Join(dest, "tool"))
	return ExitSuccess
}

// runInit scaffolds dest from the built-in assets, preferring files from
// the --from directory when set.
func runInit(dest string, f *initFlags) ([]string, error) {
	resolver, err := assets.NewResolver(f.from)
	if err != nil {
		return nil, err
	}
	return assets.Scaffold(resolver, dest, f.force)
}
