package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/pthm/islet"
	"github.com/yuin/goldmark"
)

// Markdown is an island component that renders a markdown source carried
// in the island's props:
//
//	<div class="react-island" data-component="markdown"
//	     data-props='{"source": "# Hello"}'></div>
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates the markdown island component.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

// Render implements islet.Component.
func (m *Markdown) Render(ctx context.Context, props islet.Props) templ.Component {
	source, _ := props["source"].(string)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return m.md.Convert([]byte(source), w)
	})
}

// Register wires the example components into a registry.
func Register(reg *islet.Registry) {
	reg.Register("markdown", islet.Static(NewMarkdown()))
}
