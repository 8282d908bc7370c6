package pipeline

import (
	"context"
	"regexp"
	"slices"
	"strings"
)

// markdownAttr is the attribute that asks the converter to parse markdown
// nested inside a raw HTML block.
const markdownAttr = `markdown="1"`

// containerTags lists the raw HTML block tags that may hold nested markdown
// blocks. Their content is isolated so the converter parses it.
var containerTags = []string{
	"address", "article", "aside", "blockquote", "details", "div",
	"fieldset", "figcaption", "figure", "footer", "form", "header",
	"main", "nav", "section", "summary",
}

// leafTags are the remaining block-level tags. They get the attribute too,
// but never hold nested markdown blocks: paragraphs inside them would produce
// invalid markup. The span tags among them get inline markdown only.
var leafTags = []string{
	"caption", "dd", "dl", "dt", "h1", "h2", "h3", "h4", "h5", "h6",
	"hgroup", "legend", "li", "ol", "p", "pre", "table", "tbody", "td",
	"tfoot", "th", "thead", "tr", "ul",
}

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Opening block-level tag. Captures: 1=tag name, 2=attributes (may end in "/")
	blockOpenPattern = regexp.MustCompile(`(?i)<(` + strings.Join(append(containerTags, leafTags...), "|") + `)\b([^>]*)>`)

	// Any markdown= attribute, whatever its value
	hasMarkdownAttr = regexp.MustCompile(`(?i)\bmarkdown\s*=`)

	// A line that is exactly one opening container tag with markdown enabled
	markdownOpenLine = regexp.MustCompile(`(?i)^<(` + strings.Join(containerTags, "|") + `)\b[^>]*\bmarkdown\s*=\s*["']?(?:1|block)["']?[^>]*>$`)

	// A line that is exactly one closing container tag
	containerCloseLine = regexp.MustCompile(`(?i)^</(` + strings.Join(containerTags, "|") + `)\s*>$`)

	// An opening block-level tag whose ">" is on a later line
	unclosedOpenLine = regexp.MustCompile(`(?i)^<(` + strings.Join(append(containerTags, leafTags...), "|") + `)\b[^>]*$`)

	// Opening container tag at the start of a trimmed line. Captures: 1=tag name
	containerOpenPrefix = regexp.MustCompile(`(?i)^<(` + strings.Join(containerTags, "|") + `)\b[^>]*>`)

	// Closing container tag. Captures: 1=tag name
	containerClose = regexp.MustCompile(`(?i)</(` + strings.Join(containerTags, "|") + `)\s*>`)

	// Run of closing container tags ending a trimmed line
	containerCloseRun = regexp.MustCompile(`(?i)(?:</(?:` + strings.Join(containerTags, "|") + `)\s*>\s*)+$`)

	// Value of a markdown= attribute. Captures: 1=value
	markdownValue = regexp.MustCompile(`(?i)\bmarkdown\s*=\s*["']?(\w+)`)

	// Fenced code delimiter (``` or ~~~), indented at most 3 spaces
	fencePattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// ExtraPreprocessor prepares markdown with embedded HTML for Goldmark.
type ExtraPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for conversion.
func (p *ExtraPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = JoinOpeningTags(content)
	content = EnableMarkdownInHTML(content)
	content = SplitContainerTags(content)
	content = IsolateMarkdownBlocks(content)
	content = RenderMarkdownSpans(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// JoinOpeningTags folds an opening block-level tag written across several
// lines back onto its first line. A tag left unclosed at a blank line, a
// fence or the end of the document is not touched.
func JoinOpeningTags(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var fence fenceState

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fence.toggle(line) || fence.open() || !unclosedOpenLine.MatchString(strings.TrimSpace(line)) {
			out = append(out, line)
			continue
		}

		end := i + 1
		for end < len(lines) && !strings.Contains(lines[end], ">") &&
			strings.TrimSpace(lines[end]) != "" && !fencePattern.MatchString(lines[end]) {
			end++
		}
		if end == len(lines) || !strings.Contains(lines[end], ">") || fencePattern.MatchString(lines[end]) {
			out = append(out, line)
			continue
		}

		parts := []string{strings.TrimRight(line, " \t")}
		for _, l := range lines[i+1 : end+1] {
			parts = append(parts, strings.TrimSpace(l))
		}
		out = append(out, strings.Join(parts, " "))
		i = end
	}

	return strings.Join(out, "\n")
}

// EnableMarkdownInHTML adds markdown="1" to every raw HTML block-level tag
// that does not already declare a markdown attribute. Tags that declare one
// are returned byte-for-byte, so the function is idempotent. Only lines that
// start with a tag are considered, and fenced code blocks are skipped.
func EnableMarkdownInHTML(content string) string {
	lines := strings.Split(content, "\n")
	var fence fenceState

	for i, line := range lines {
		if fence.toggle(line) || fence.open() {
			continue
		}
		if !strings.HasPrefix(strings.TrimLeft(line, " \t"), "<") {
			continue
		}
		lines[i] = blockOpenPattern.ReplaceAllStringFunc(line, addMarkdownAttr)
	}

	return strings.Join(lines, "\n")
}

// addMarkdownAttr injects markdown="1" into a single opening tag.
func addMarkdownAttr(tag string) string {
	if hasMarkdownAttr.MatchString(tag) {
		return tag
	}

	body := strings.TrimSuffix(tag, ">")
	if strings.HasSuffix(body, "/") {
		return strings.TrimRight(strings.TrimSuffix(body, "/"), " ") + " " + markdownAttr + " />"
	}
	return strings.TrimRight(body, " ") + " " + markdownAttr + ">"
}

// openContainer is a container tag still open at the end of a line.
type openContainer struct {
	name     string
	markdown bool
}

// SplitContainerTags moves the opening and closing tags of markdown-enabled
// containers that share a line with content onto lines of their own, so
// IsolateMarkdownBlocks can hand that content to the block parser.
func SplitContainerTags(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var fence fenceState
	var open []openContainer

	for _, line := range lines {
		if fence.toggle(line) || fence.open() {
			out = append(out, line)
			continue
		}

		var pieces []string
		pieces, open = splitContainerLine(strings.TrimSpace(line), open)
		if len(pieces) < 2 {
			out = append(out, line)
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		for _, p := range pieces {
			out = append(out, indent+p)
		}
	}

	return strings.Join(out, "\n")
}

// splitContainerLine breaks a trimmed line into its leading markdown-enabled
// opening tags, its content, and the trailing closing tags of those
// containers. open is the stack left by earlier lines; the updated stack is
// returned. A line whose content closes one of its own leading tags is kept
// whole.
func splitContainerLine(line string, open []openContainer) ([]string, []openContainer) {
	stack := slices.Clone(open)
	rest := line

	var head []string
	for {
		loc := containerOpenPrefix.FindStringSubmatchIndex(rest)
		if loc == nil || strings.HasSuffix(rest[:loc[1]], "/>") {
			break
		}
		tag := rest[:loc[1]]
		enabled := blockMarkdown(tag)
		stack = append(stack, openContainer{name: strings.ToLower(rest[loc[2]:loc[3]]), markdown: enabled})
		if !enabled {
			break
		}
		head = append(head, tag)
		rest = strings.TrimSpace(rest[loc[1]:])
	}

	runStart := len(rest)
	if loc := containerCloseRun.FindStringIndex(rest); loc != nil {
		runStart = loc[0]
	}
	for _, h := range head {
		name := containerOpenPrefix.FindStringSubmatch(h)[1]
		if closingTagIndex(rest[:runStart], name) >= 0 {
			return []string{line}, open
		}
	}

	var tail []string
	if runStart < len(rest) {
		run := rest[runStart:]
		closes := containerClose.FindAllStringSubmatchIndex(run, -1)
		var enabled []bool
		for _, m := range closes {
			n := len(stack)
			if n == 0 || !strings.EqualFold(stack[n-1].name, run[m[2]:m[3]]) {
				break
			}
			enabled = append(enabled, stack[n-1].markdown)
			stack = stack[:n-1]
		}
		if len(enabled) == len(closes) {
			k := len(enabled)
			for k > 0 && enabled[k-1] {
				k--
			}
			if k < len(closes) {
				for _, m := range closes[k:] {
					tail = append(tail, run[m[0]:m[1]])
				}
				rest = strings.TrimSpace(rest[:runStart+closes[k][0]])
			}
		}
	}

	pieces := head
	if rest != "" {
		pieces = append(pieces, rest)
	}
	return append(pieces, tail...), stack
}

// blockMarkdown reports whether an opening tag asks for nested markdown
// blocks.
func blockMarkdown(tag string) bool {
	m := markdownValue.FindStringSubmatch(tag)
	return m != nil && (m[1] == "1" || strings.EqualFold(m[1], "block"))
}

// closingTagIndex returns the offset of the first </name> in s, or -1.
func closingTagIndex(s, name string) int {
	lower := strings.ToLower(s)
	needle := "</" + strings.ToLower(name)
	for off := 0; ; {
		i := strings.Index(lower[off:], needle)
		if i < 0 {
			return -1
		}
		i += off
		if after := strings.TrimLeft(lower[i+len(needle):], " \t"); strings.HasPrefix(after, ">") {
			return i
		}
		off = i + len(needle)
	}
}

// IsolateMarkdownBlocks surrounds the content of markdown-enabled containers
// with blank lines. Goldmark ends a raw HTML block at the first blank line,
// so the opening tag line must be followed by one and the closing tag line
// preceded by one for the nested markdown to be parsed.
func IsolateMarkdownBlocks(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var fence fenceState
	var open []string // stack of markdown-enabled container names

	for i, line := range lines {
		if fence.toggle(line) || fence.open() {
			out = append(out, line)
			continue
		}

		trimmed := strings.TrimSpace(line)

		if m := containerCloseLine.FindStringSubmatch(trimmed); m != nil && len(open) > 0 &&
			strings.EqualFold(open[len(open)-1], m[1]) {
			open = open[:len(open)-1]
			if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
				out = append(out, "")
			}
			out = append(out, line)
			continue
		}

		out = append(out, line)

		if m := markdownOpenLine.FindStringSubmatch(trimmed); m != nil && !strings.HasSuffix(trimmed, "/>") {
			open = append(open, m[1])
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
				out = append(out, "")
			}
		}
	}

	return strings.Join(out, "\n")
}

// fenceState tracks whether a line scan is inside a fenced code block.
type fenceState struct {
	marker string // opening delimiter; empty when outside a fence
}

// open reports whether the scan is inside a fence.
func (f *fenceState) open() bool {
	return f.marker != ""
}

// toggle updates the state for a delimiter line and reports whether the line
// was a delimiter. A fence closes on a delimiter of the same character that
// is at least as long as the opening one.
func (f *fenceState) toggle(line string) bool {
	m := fencePattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}

	delim := m[1]
	if f.marker == "" {
		f.marker = delim
		return true
	}
	if delim[0] == f.marker[0] && len(delim) >= len(f.marker) &&
		strings.TrimSpace(line[len(m[0]):]) == "" {
		f.marker = ""
		return true
	}
	return false
}
