// Package pipeline implements the Markdown-to-HTML transform used for
// pre-parsed documentation pages.
//
// The transform runs in four stages:
//   - Markdown preprocessing (line normalization, markdown="1" injection on
//     raw HTML block tags, container tags moved to lines of their own and
//     isolated with blank lines, inline markdown rendered inside span tags)
//   - Markdown to HTML conversion via Goldmark with the "extra" profile
//     (tables, footnotes, definition lists, fenced code, heading attributes,
//     heading IDs slugified from the visible heading text)
//   - DOM fixups via golang.org/x/net/html (heading IDs use hyphens, the
//     processing-only markdown attribute is dropped)
//   - Indented serialization of the fixed-up fragment
//
// Every stage is pure: identical input yields byte-identical output.
// Template rendering and file output are handled by the site package.
package pipeline
