package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

// embeddedTemplates carries the default itinerary template so the binary
// works without any template file on disk. It is read-only shared state and
// safe for concurrent render requests.
//
//go:embed templates/default.html
var embeddedTemplates embed.FS

// RenderFailure reports a downstream template or PDF-conversion failure.
// When HTML output was already produced it remains usable as a fallback.
type RenderFailure struct {
	Stage string
	Err   error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render failure in %s: %v", e.Stage, e.Err)
}

func (e *RenderFailure) Unwrap() error { return e.Err }

// DefaultTemplate parses the embedded default template.
func DefaultTemplate() (*template.Template, error) {
	tpl, err := template.ParseFS(embeddedTemplates, "templates/default.html")
	if err != nil {
		return nil, &RenderFailure{Stage: "template", Err: err}
	}
	return tpl, nil
}

// LoadTemplate parses a caller-supplied template file, falling back to the
// embedded default when path is empty.
func LoadTemplate(path string) (*template.Template, error) {
	if path == "" {
		return DefaultTemplate()
	}
	tpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, &RenderFailure{Stage: "template", Err: err}
	}
	return tpl, nil
}

// ParseTemplate parses template source held in memory (an uploaded file).
func ParseTemplate(name string, src []byte) (*template.Template, error) {
	tpl, err := template.New(name).Parse(string(src))
	if err != nil {
		return nil, &RenderFailure{Stage: "template", Err: err}
	}
	return tpl, nil
}

// HTML executes the template against the context and returns the rendered
// document.
func HTML(tpl *template.Template, ctx Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, ctx); err != nil {
		return nil, &RenderFailure{Stage: "template", Err: err}
	}
	return buf.Bytes(), nil
}
