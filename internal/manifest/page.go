package manifest

// Kind identifies the variant of a page descriptor.
type Kind int

const (
	// KindDoc is a documentation page rendered from a markdown source.
	KindDoc Kind = iota + 1
	// KindStatic is a page rendered from its own template.
	KindStatic
)

func (k Kind) String() string {
	switch k {
	case KindDoc:
		return "doc"
	case KindStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Page is one manifest entry. It is implemented by DocPage and StaticPage
// only; callers dispatch with a type switch.
type Page interface {
	Kind() Kind
	// OutputPath is the output file path relative to the build root.
	OutputPath() string
	// Data returns every key of the entry exactly as written in the manifest.
	Data() map[string]any
}

// DocPage is an entry with an "md" key.
type DocPage struct {
	HTML     string
	Markdown string
	Fields   map[string]any
}

func (p *DocPage) Kind() Kind           { return KindDoc }
func (p *DocPage) OutputPath() string   { return p.HTML }
func (p *DocPage) Data() map[string]any { return p.Fields }

// StaticPage is an entry without an "md" key. It names its own template.
type StaticPage struct {
	HTML     string
	Template string
	Fields   map[string]any
}

func (p *StaticPage) Kind() Kind           { return KindStatic }
func (p *StaticPage) OutputPath() string   { return p.HTML }
func (p *StaticPage) Data() map[string]any { return p.Fields }

// Compile-time interface checks.
var (
	_ Page = (*DocPage)(nil)
	_ Page = (*StaticPage)(nil)
)
