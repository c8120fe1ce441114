package view

import (
	"html/template"
	"io"
	"time"
)

// Document is the full comparison page: the selection form plus, when a
// comparison has been made, its results.
type Document struct {
	Ecosystem   string
	Versions    []string
	Connectors  []string
	FromVersion string
	ToVersion   string
	Results     *Page
	Error       string
}

var funcs = template.FuncMap{
	"ms":             func(d time.Duration) int64 { return d.Milliseconds() },
	"scrollOffset":   func() int { return ScrollOffset },
	"revealDuration": func() time.Duration { return RevealDuration },
}

var templates = template.Must(template.Must(
	template.New("page").Funcs(funcs).Parse(pageHTML)).
	New("results").Parse(resultsHTML))

// Render writes the results region for p. Connector names and change
// descriptions are escaped.
func Render(w io.Writer, p Page) error {
	return templates.ExecuteTemplate(w, "results", p)
}

// RenderDocument writes the complete HTML page.
func RenderDocument(w io.Writer, d Document) error {
	if d.Ecosystem == "" {
		d.Ecosystem = DefaultEcosystem
	}
	return templates.ExecuteTemplate(w, "page", d)
}
