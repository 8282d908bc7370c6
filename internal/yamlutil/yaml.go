// Package yamlutil decodes the YAML documents docportal reads: config files
// and page manifests. JSON is accepted as YAML.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize caps the size of a decoded document.
var MaxInputSize = 1 << 20

var (
	ErrEmptyInput    = errors.New("document is empty")
	ErrInputTooLarge = errors.New("document too large")
)

// Mode selects how keys without a matching struct field are handled.
type Mode int

const (
	// Lenient ignores unknown keys. Used for manifests, whose entries carry
	// arbitrary template data.
	Lenient Mode = iota
	// Strict rejects unknown keys. Used for config files, where one is
	// almost always a typo.
	Strict
)

// Decode parses data into v. Syntax and field errors are reported with
// their line and column followed by an excerpt of the offending source.
func Decode(data []byte, v any, mode Mode) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyInput
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}

	var opts []yaml.DecodeOption
	if mode == Strict {
		opts = append(opts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return &SyntaxError{Detail: yaml.FormatError(err, false, true), err: err}
	}
	return nil
}

// SyntaxError is a decode failure located in the source document.
type SyntaxError struct {
	Detail string // message with position and source excerpt
	err    error
}

func (e *SyntaxError) Error() string { return e.Detail }

func (e *SyntaxError) Unwrap() error { return e.err }
