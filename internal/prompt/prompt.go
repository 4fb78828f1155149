// Package prompt renders instruction templates for capability providers.
// Templates use text/template syntax and receive the task prompt plus the
// accumulated context from prior tasks.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Data is the payload available inside a template.
type Data struct {
	// Prompt is the task's instruction text.
	Prompt string
	// Context holds the accumulated strings from prior tasks.
	Context []string
	// Vars carries any extra template variables.
	Vars map[string]string
}

// ContextBlock joins the context strings into a single newline-separated
// block for embedding in a prompt body.
func (d Data) ContextBlock() string {
	return strings.Join(d.Context, "\n")
}

// Renderer loads and renders named templates from a directory.
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer rooted at dir. Template files use the
// .tmpl extension.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render parses the named template and executes it with the given data.
func (r *Renderer) Render(name string, data Data) (string, error) {
	path := filepath.Join(r.dir, name+".tmpl")
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return RenderString(name, string(raw), data)
}

// RenderString renders an inline template body with the given data.
func RenderString(name, body string, data Data) (string, error) {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return sb.String(), nil
}

// WithContext appends a standard context section to a prompt when prior
// results exist. Providers use this when no template file is configured.
func WithContext(prompt string, context []string) string {
	if len(context) == 0 {
		return prompt
	}
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nContext from previous steps:\n")
	for _, c := range context {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	return sb.String()
}
