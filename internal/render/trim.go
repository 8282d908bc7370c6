package render

import "regexp"

// blockLinePattern matches a line holding nothing but one block action, with
// its leading indentation and trailing newline. The action body may not
// contain "}}", so lines with several actions or with text are left alone.
var blockLinePattern = regexp.MustCompile(
	`(?m)^[ \t]*(\{\{-?[ \t]*(?:/\*|(?:if|else|end|range|with|define|block|template|break|continue)\b)(?:[^}\n]|\}[^}\n])*\}\})[ \t]*\r?\n`,
)

// TrimBlocks strips the whitespace that block actions would otherwise leave
// in the output. A line containing only a block action loses its leading
// indentation and its trailing newline:
//
//	<ul>
//	  {{ range .pages }}
//	  <li>{{ .title }}</li>
//	  {{ end }}
//	</ul>
//
// renders each item on its own line with no blank lines in between.
func TrimBlocks(text string) string {
	return blockLinePattern.ReplaceAllString(text, "$1")
}
