package pdf

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-docportal/internal/fileutil"
	"github.com/alnah/go-docportal/internal/hints"
	"github.com/alnah/go-docportal/internal/process"
)

// renderer prints one local HTML file to PDF bytes.
type renderer interface {
	RenderFile(ctx context.Context, path string) ([]byte, error)
	Close() error
}

var (
	_ Engine   = (*ChromeEngine)(nil)
	_ renderer = (*rodRenderer)(nil)
)

// ChromeEngine merges the input pages into one document and prints it with
// headless Chrome. The browser is started on first use and kept until Close.
type ChromeEngine struct {
	renderer renderer
	root     string // directory the merged document's URLs resolve against
}

// NewChromeEngine creates a ChromeEngine. bin overrides the browser binary;
// when empty, ROD_BROWSER_BIN or a browser found (or downloaded) by rod is used.
func NewChromeEngine(bin string, timeout time.Duration) *ChromeEngine {
	return &ChromeEngine{renderer: newRodRenderer(bin, timeout)}
}

func (c *ChromeEngine) Name() string { return EngineChrome }

// Compose merges inputs and writes the printed PDF to out.
func (c *ChromeEngine) Compose(ctx context.Context, inputs []string, out string) error {
	merged, err := mergeDocuments(c.root, inputs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalTool, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTemp([]byte(merged), "html")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalTool, err)
	}
	defer cleanup()

	data, err := c.renderer.RenderFile(ctx, tmpPath)
	if err != nil {
		return err
	}

	if err := fileutil.WriteAtomic(out, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v%s", ErrExternalTool, out, err, hints.ForOutputDirectory())
	}
	return nil
}

func (c *ChromeEngine) setRoot(dir string) { c.root = dir }

// Close shuts the browser down.
func (c *ChromeEngine) Close() error {
	return c.renderer.Close()
}

// rodRenderer implements renderer using go-rod.
type rodRenderer struct {
	bin     string
	timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRenderer(bin string, timeout time.Duration) *rodRenderer {
	return &rodRenderer{bin: bin, timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	bin := r.bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	if hints.NeedsNoSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return fmt.Errorf("%w: launching browser: %v%s", ErrExternalTool, err, hints.ForBrowserConnect())
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		_ = process.KillGroup(l.PID())
		l.Kill()
		return fmt.Errorf("%w: connecting to browser: %v%s", ErrExternalTool, err, hints.ForBrowserConnect())
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// RenderFile opens a local HTML file and prints it to PDF.
func (r *rodRenderer) RenderFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: fileURL(path)})
	if err != nil {
		return nil, fmt.Errorf("%w: opening page: %v", ErrExternalTool, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	page = page.Context(ctx)
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: loading page: %v%s", ErrExternalTool, err, hints.ForTimeout())
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: printing page: %v", ErrExternalTool, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrExternalTool, err)
	}
	return data, nil
}

// Close releases the browser and any process it left behind.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if kerr := process.KillGroup(r.launcher.PID()); kerr != nil && err == nil {
			err = kerr
		}
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// fileURL converts a filesystem path to a file:// URL.
func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // windows drive letter
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
