package fanout

import (
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render substitutes {{name}} placeholders. Unknown names stay as written.
func Render(text string, variables map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		if value, ok := variables[name]; ok {
			return value
		}
		return match
	})
}

// Rendered is a template after substitution.
type Rendered struct {
	Subject string
	Body    string
}

func RenderTemplate(tpl Template, variables map[string]string) Rendered {
	return Rendered{
		Subject: Render(tpl.Subject, variables),
		Body:    strings.TrimRight(Render(tpl.Body, variables), "\n"),
	}
}
