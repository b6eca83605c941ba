// Package prompt renders the rewrite instructions sent to the generation service.
package prompt

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed template.tmpl
var templateText string

var tmpl = template.Must(template.New("rewrite").Option("missingkey=error").Parse(templateText))

type data struct {
	Title string
	Body  string
}

// Build returns the prompt for a post with the given title and body.
func Build(title, body string) string {
	var sb strings.Builder
	// The template is static and only references fields of data.
	if err := tmpl.Execute(&sb, data{Title: title, Body: body}); err != nil {
		panic("prompt: execute template: " + err.Error())
	}
	return sb.String()
}
