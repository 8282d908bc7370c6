package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ui prints the end-of-command status lines. Progress goes through the
// logger; ui is what a user reads last.
type ui struct {
	out, err io.Writer
	quiet    bool
	ok, fail *color.Color
	dim      *color.Color
}

func newUI(env *Environment, quiet, noColor bool) *ui {
	u := &ui{
		out:   env.Stdout,
		err:   env.Stderr,
		quiet: quiet,
		ok:    color.New(color.FgGreen, color.Bold),
		fail:  color.New(color.FgRed, color.Bold),
		dim:   color.New(color.Faint),
	}
	if noColor || env.NoColor {
		u.ok.DisableColor()
		u.fail.DisableColor()
		u.dim.DisableColor()
	}
	return u
}

// success prints a ✓ line on stdout unless quiet.
func (u *ui) success(format string, args ...any) {
	if u.quiet {
		return
	}
	fmt.Fprintf(u.out, "%s %s\n", u.ok.Sprint("✓"), fmt.Sprintf(format, args...))
}

// note prints a dimmed line on stdout unless quiet.
func (u *ui) note(format string, args ...any) {
	if u.quiet {
		return
	}
	fmt.Fprintln(u.out, u.dim.Sprintf(format, args...))
}

// failure prints a ✗ line on stderr, even when quiet.
func (u *ui) failure(err error) {
	fmt.Fprintf(u.err, "%s %v\n", u.fail.Sprint("✗"), err)
}
