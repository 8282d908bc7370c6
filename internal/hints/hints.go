// Package hints suggests a next step for failures the user can fix, and
// detects the container and CI environments those suggestions depend on.
//
// Every hint renders as "\n  hint: <text>" so it can be appended to an
// error message.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docportal/internal/fileutil"
)

// markerFiles are created by container runtimes at the filesystem root.
var markerFiles = []string{"/.dockerenv", "/run/.containerenv"}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// Container reports whether the process runs in a container, and the
// signal that gave it away.
func Container() (signal string, ok bool) {
	if os.Getenv("DOCPORTAL_CONTAINER") == "1" {
		return "DOCPORTAL_CONTAINER=1", true
	}
	for _, f := range markerFiles {
		if fileutil.FileExists(f) {
			return f, true
		}
	}
	// podman and systemd-nspawn
	if v := os.Getenv("container"); v != "" {
		return "container=" + v, true
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "KUBERNETES_SERVICE_HOST", true
	}
	return "", false
}

// CI reports whether a known CI runner variable is set.
func CI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// NeedsNoSandbox reports whether Chrome should run without its sandbox:
// containers and CI runners usually lack the user namespaces it needs.
func NeedsNoSandbox() bool {
	if os.Getenv("ROD_NO_SANDBOX") == "1" {
		return true
	}
	_, inContainer := Container()
	return inContainer || CI()
}

// ForBrowserConnect covers a browser that failed to start or answer.
func ForBrowserConnect() string {
	var steps []string
	if _, inContainer := Container(); (inContainer || CI()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		steps = append(steps, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		steps = append(steps, "set ROD_BROWSER_BIN or pdf.bin to use a custom Chrome")
	}
	steps = append(steps, "run 'docportal doctor' to check the setup")
	return hint(steps...)
}

func ForPrinceNotFound() string {
	return hint("install Prince from https://www.princexml.com", "set pdf.bin", "or use --pdf-engine chrome")
}

func ForTimeout() string {
	return hint("raise pdf.timeout (or DOCPORTAL_PDF_TIMEOUT) for large sites")
}

// ForConfigNotFound offers the per-user config location among tried.
func ForConfigNotFound(tried []string) string {
	steps := []string{"use --config /path/to/docportal.yaml"}
	for _, p := range tried {
		if strings.Contains(filepath.ToSlash(p), ".config/docportal/") {
			steps = append(steps, "create "+p)
			break
		}
	}
	steps = append(steps, "or run 'docportal init' for a starter site")
	return hint(steps...)
}

func ForOutputDirectory() string {
	return hint("check that the parent directory exists and is writable")
}

// ForTemplateNotFound lists the templates the renderer could see.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return hint("no templates found; check templates.dir or run 'docportal init'")
	}
	return hint("available: " + strings.Join(available, ", "))
}

func ForManifest() string {
	return hint(`each entry is {"html": ..., "md": ...} for a documentation page or {"html": ..., "template": ...} for a static page`)
}

// hint joins the non-empty steps into one hint line.
func hint(steps ...string) string {
	kept := steps[:0:0]
	for _, s := range steps {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "\n  hint: " + strings.Join(kept, "; ")
}
