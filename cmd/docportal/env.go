package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-docportal/internal/pdf"
)

// EngineFactory builds the PDF engine selected by the config.
type EngineFactory func(name, bin string, timeout time.Duration) (pdf.Engine, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, the working directory and the PDF engine factory.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	Getwd     func() (string, error)
	NewEngine EngineFactory
	// Context is the parent of every command context. Nil means
	// context.Background.
	Context context.Context
	NoColor bool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:       time.Now,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Getwd:     os.Getwd,
		NewEngine: pdf.NewEngine,
	}
}

// withDefaults fills the fields a test environment may leave out.
func (e *Environment) withDefaults() *Environment {
	out := *e
	if out.Now == nil {
		out.Now = time.Now
	}
	if out.Stdout == nil {
		out.Stdout = io.Discard
	}
	if out.Stderr == nil {
		out.Stderr = io.Discard
	}
	if out.Getwd == nil {
		out.Getwd = os.Getwd
	}
	if out.NewEngine == nil {
		out.NewEngine = pdf.NewEngine
	}
	if out.Context == nil {
		out.Context = context.Background()
	}
	return &out
}
