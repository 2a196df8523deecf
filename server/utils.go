package server

import (
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
)

var codeBlockRegexp = regexp.MustCompile("```([a-zA-Z]*)\n([\\s\\S]+?)```")

// formatMessage renders a message body as HTML, turning fenced code
// blocks into highlightable <pre> elements.
func formatMessage(content string) template.HTML {
	processed := codeBlockRegexp.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegexp.FindStringSubmatch(match)
		if len(parts) < 3 {
			return match
		}

		language := parts[1]
		code := strings.TrimSpace(parts[2])

		// Create HTML for the code block
		return fmt.Sprintf(`<pre class="line-numbers"><code class="language-%s">%s</code></pre>`,
			html.EscapeString(language),
			html.EscapeString(code))
	})
	return template.HTML(processed)
}
