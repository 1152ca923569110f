package template

import (
	"io"
)

// TemplateRenderer mirrors the github.com/goliatone/go-template engine
// contract, providing the seam the kit and CLI render through.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// PartialRenderer is implemented by renderers that can render a single named
// partial of a template.
type PartialRenderer interface {
	TemplateRenderer
	RenderPartial(name, partial string, data any, out ...io.Writer) (string, error)
	Invalidate(names ...string)
}
