// Package render turns parsed insights into HTML fragments safe to embed in
// the dashboard.
package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"attrition-workers/internal/insight"
)

// Sanitizer strips markup that is not allowed in rendered insight text.
type Sanitizer interface {
	Sanitize(s string) string
}

// NewSanitizer allows only the inline emphasis tags the narratives use.
func NewSanitizer() Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "em", "i", "br")
	return p
}

// Renderer builds HTML from insight values.
type Renderer struct {
	sanitizer Sanitizer
}

func NewRenderer(s Sanitizer) *Renderer {
	if s == nil {
		s = NewSanitizer()
	}
	return &Renderer{sanitizer: s}
}

// ActionsHTML renders the two labelled action blocks, or the flat list when
// the narrative had no controllable labels. Returns "" when there is nothing
// to show.
func (r *Renderer) ActionsHTML(split insight.ActionSplit, fallback []string) string {
	if split.Empty() {
		return r.BulletsHTML(fallback)
	}

	var b strings.Builder
	if split.Us != "" {
		r.block(&b, insight.LabelUs, split.Us)
	}
	if split.Client != "" {
		r.block(&b, insight.LabelClient, split.Client)
	}
	return b.String()
}

func (r *Renderer) block(b *strings.Builder, label, body string) {
	b.WriteString("<p><b>")
	b.WriteString(html.EscapeString(label))
	b.WriteString(":</b> ")
	b.WriteString(r.sanitizer.Sanitize(strings.ReplaceAll(body, "\n", "<br>")))
	b.WriteString("</p>")
}

// BulletsHTML renders items as an escaped <ul>.
func (r *Renderer) BulletsHTML(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(item))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
