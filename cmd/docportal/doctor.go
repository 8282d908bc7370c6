package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-docportal/internal/config"
	"github.com/alnah/go-docportal/internal/hints"
	"github.com/alnah/go-docportal/internal/pdf"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo `json:"config"`
	Prince   engineInfo `json:"prince"`
	Chrome   engineInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// configInfo reports the config file docportal would use.
type configInfo struct {
	Path   string `json:"path,omitempty"` // empty when running on defaults
	Engine string `json:"engine"`
}

// engineInfo holds PDF engine detection results.
type engineInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox *bool  `json:"sandbox,omitempty"` // chrome only
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd reports whether this machine can build the site and its PDF.
// It exits 1 only when the configured engine cannot run; warnings alone
// keep the exit code at 0.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput, noColor := false, env.NoColor
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "--no-color":
			noColor = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		default:
			fmt.Fprintf(env.Stderr, "unknown flag: %s\nRun 'docportal help doctor' for usage.\n", arg)
			return ExitUsage
		}
	}

	result := runDoctor(env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		newReport(env.Stdout, noColor).write(result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	bin := checkConfig(result, env)
	checkPrince(result, bin)
	checkChrome(result, bin)
	checkEngines(result)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig loads the config the build command would use and returns the
// configured engine binary, if any.
func checkConfig(result *doctorResult, env *Environment) string {
	result.Config.Engine = pdf.EnginePrince

	workDir, err := env.Getwd()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot resolve working directory: %v", err))
		return ""
	}

	ec := loadEnvConfig()
	var cfg *config.Config
	if ec.ConfigPath != "" {
		cfg, err = config.LoadConfig(absPath(ec.ConfigPath, workDir))
		result.Config.Path = ec.ConfigPath
	} else {
		cfg, result.Config.Path, err = config.Discover(workDir)
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		return ""
	}
	applyEnvConfig(ec, cfg, workDir)

	result.Config.Engine = strings.ToLower(cfg.PDF.Engine)
	return cfg.PDF.Bin
}

// checkPrince detects the Prince compositor.
func checkPrince(result *doctorResult, bin string) {
	name := pdf.DefaultPrinceBin
	if bin != "" && result.Config.Engine == pdf.EnginePrince {
		name = bin
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return
	}
	result.Prince.Found = true
	result.Prince.Path = path
	result.Prince.Version = firstLine(versionOf(path))
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult, bin string) {
	chromePath := result.Env.BrowserBin
	if bin != "" && result.Config.Engine == pdf.EngineChrome {
		chromePath = bin
	}

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Version = firstLine(versionOf(chromePath))

	sandbox := result.Env.NoSandbox != "1"
	result.Chrome.Sandbox = &sandbox
}

// checkEngines turns missing engines into errors or warnings: the configured
// engine is required, the other one is optional.
func checkEngines(result *doctorResult) {
	switch result.Config.Engine {
	case pdf.EngineChrome:
		if !result.Chrome.Found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
		}
		if !result.Prince.Found {
			result.Warnings = append(result.Warnings, "Prince not found (only needed for --pdf-engine prince)")
		}
	default:
		if !result.Prince.Found {
			result.Errors = append(result.Errors,
				"Prince not found. Install it from https://www.princexml.com or use --pdf-engine chrome")
		}
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.ContainerHint, result.Env.Container = hints.Container()
	result.Env.CI = hints.CI()

	// Only relevant when headless Chrome will be launched.
	if result.Config.Engine == pdf.EngineChrome &&
		(result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkSystem verifies the temp directory used by the chrome engine.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "docportal-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

func versionOf(bin string) string {
	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- binary found on PATH or set by the user
	if err != nil {
		return ""
	}
	return string(out)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// report renders a doctorResult for a terminal.
type report struct {
	w                  io.Writer
	ok, warn, bad, dim *color.Color
}

func newReport(w io.Writer, noColor bool) *report {
	r := &report{
		w:    w,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{r.ok, r.warn, r.bad, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

func (r *report) write(res *doctorResult) {
	fmt.Fprintln(r.w, "docportal doctor")

	r.section("Config")
	configFile := "none (defaults)"
	if res.Config.Path != "" {
		configFile = filepath.Clean(res.Config.Path)
	}
	r.row(r.ok, "✓", "file", configFile)
	r.row(r.ok, "✓", "pdf engine", res.Config.Engine)

	r.engine("Prince", res.Prince, res.Config.Engine == pdf.EnginePrince)
	r.engine("Chrome/Chromium", res.Chrome, res.Config.Engine == pdf.EngineChrome)

	r.section("Environment")
	r.row(r.ok, "✓", "platform", res.Env.OS+"/"+res.Env.Arch)
	if res.Env.Container {
		r.row(r.ok, "✓", "container", "detected via "+res.Env.ContainerHint)
	}
	if res.Env.CI {
		r.row(r.ok, "✓", "ci", "detected")
	}

	r.section("System")
	if res.System.TempWritable {
		r.row(r.ok, "✓", "temp dir", "writable")
	} else {
		r.row(r.bad, "✗", "temp dir", "not writable")
	}

	if len(res.Warnings)+len(res.Errors) > 0 {
		r.section("Problems")
		for _, msg := range res.Errors {
			fmt.Fprintf(r.w, "  %s %s\n", r.bad.Sprint("✗"), msg)
		}
		for _, msg := range res.Warnings {
			fmt.Fprintf(r.w, "  %s %s\n", r.warn.Sprint("!"), msg)
		}
	}

	fmt.Fprintln(r.w)
	switch res.Status {
	case "ready":
		fmt.Fprintln(r.w, r.ok.Sprint("Status: Ready to build"))
	case "warnings":
		fmt.Fprintln(r.w, r.warn.Sprint("Status: Ready with warnings"))
	default:
		fmt.Fprintln(r.w, r.bad.Sprint("Status: Not ready (see problems above)"))
	}
}

// engine prints one PDF engine. A missing engine that the config does not
// select is only informative.
func (r *report) engine(title string, e engineInfo, selected bool) {
	r.section(title)
	if !e.Found {
		if selected {
			r.row(r.bad, "✗", "binary", "not found")
		} else {
			r.row(r.dim, "-", "binary", "not found (not selected)")
		}
		return
	}
	r.row(r.ok, "✓", "binary", e.Path)
	if e.Version != "" {
		r.row(r.ok, "✓", "version", e.Version)
	}
	if e.Sandbox != nil {
		sandbox := "enabled"
		if !*e.Sandbox {
			sandbox = "disabled (ROD_NO_SANDBOX=1)"
		}
		r.row(r.ok, "✓", "sandbox", sandbox)
	}
}

func (r *report) section(title string) {
	fmt.Fprintf(r.w, "\n%s\n", title)
}

func (r *report) row(c *color.Color, mark, label, value string) {
	fmt.Fprintf(r.w, "  %s %-11s %s\n", c.Sprint(mark), label, value)
}
