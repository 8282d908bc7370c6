package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/alnah/go-docportal/internal/hints"
)

// DefaultPrinceBin is looked up on PATH when no binary is configured.
const DefaultPrinceBin = "prince"

// commandRunner runs an external command and returns its combined diagnostic
// output. Replaced in tests.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// runCommand is the production commandRunner.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binary comes from config
	var stderr bytes.Buffer
	cmd.Stdout = &stderr
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// PrinceEngine composes PDFs with the Prince command-line compositor.
type PrinceEngine struct {
	bin string
	run commandRunner
}

// NewPrinceEngine creates a PrinceEngine for the given binary.
func NewPrinceEngine(bin string) *PrinceEngine {
	if bin == "" {
		bin = DefaultPrinceBin
	}
	return &PrinceEngine{bin: bin, run: runCommand}
}

func (p *PrinceEngine) Name() string { return EnginePrince }

// Compose runs `prince -o out inputs...`.
func (p *PrinceEngine) Compose(ctx context.Context, inputs []string, out string) error {
	args := append([]string{"-o", out}, inputs...)

	output, err := p.run(ctx, p.bin, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %s: %v%s", ErrExternalTool, p.bin, ctxErr, hints.ForTimeout())
		}
		msg := strings.TrimSpace(string(output))
		if msg != "" {
			msg = ": " + msg
		}
		hint := ""
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			hint = hints.ForPrinceNotFound()
		}
		return fmt.Errorf("%w: %s: %v%s%s", ErrExternalTool, p.bin, err, msg, hint)
	}
	return nil
}

// Close is a no-op: each composition is a separate process.
func (p *PrinceEngine) Close() error { return nil }
