package tags

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-component-kit/pkg/assets"
	"github.com/goliatone/go-component-kit/pkg/attrs"
	"github.com/goliatone/go-component-kit/pkg/component"
	"github.com/goliatone/go-component-kit/pkg/partial"
)

// RuntimeKey is the global context key under which the engine exposes its
// Runtime to the tags.
const RuntimeKey = "_componentkit"

// Keys placed in pongo2's private context by the tags.
const (
	collectorKey  = "_componentkit_slots"
	attributesKey = "attributes"
	slotsKey      = "slots"
	isPartialKey  = "is_partial"
)

// Runtime is the shared state the tags need while executing. The template
// engine implements it and injects itself under RuntimeKey.
type Runtime interface {
	Component(name string) (component.Descriptor, bool)
	Template(name string) (*pongo2.Template, error)
	Partials(key string) *partial.Cache
	Assets() *assets.Registry
}

// RenderObserver is optionally implemented by a Runtime to receive component
// render timings.
type RenderObserver interface {
	ObserveComponent(name string, duration time.Duration, err error)
}

func runtimeFrom(ctx *pongo2.ExecutionContext, token *pongo2.Token) (Runtime, *pongo2.Error) {
	value, ok := ctx.Private[RuntimeKey]
	if !ok {
		value = ctx.Public[RuntimeKey]
	}
	rt, ok := value.(Runtime)
	if !ok || rt == nil {
		return nil, ctx.Error("componentkit runtime is not configured for this template set", token)
	}
	return rt, nil
}

func observe(rt Runtime, name string, started time.Time, err error) {
	if observer, ok := rt.(RenderObserver); ok {
		observer.ObserveComponent(name, time.Since(started), err)
	}
}

// asTagError converts err into the pongo2 error type. pongo2 errors are
// returned unchanged so their template position is kept.
func asTagError(ctx *pongo2.ExecutionContext, err error, token *pongo2.Token) *pongo2.Error {
	if err == nil {
		return nil
	}
	if perr, ok := err.(*pongo2.Error); ok && perr != nil {
		return perr
	}
	return ctx.OrigError(err, token)
}

// flatten merges the public and private context into one map for rendering
// another template. Internal keys are dropped.
func flatten(ctx *pongo2.ExecutionContext) pongo2.Context {
	out := make(pongo2.Context, len(ctx.Public)+len(ctx.Private))
	for key, value := range ctx.Public {
		out[key] = value
	}
	for key, value := range ctx.Private {
		if strings.HasPrefix(key, collectorKey) {
			continue
		}
		out[key] = value
	}
	return out
}

func lookup(ctx *pongo2.ExecutionContext, name string) any {
	if value, ok := ctx.Private[name]; ok {
		return value
	}
	return ctx.Public[name]
}

type templateWriter struct {
	io.Writer
}

func (w templateWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func toTemplateWriter(w io.Writer) pongo2.TemplateWriter {
	if tw, ok := w.(pongo2.TemplateWriter); ok {
		return tw
	}
	return templateWriter{Writer: w}
}

func execute(body *pongo2.NodeWrapper, ctx *pongo2.ExecutionContext, w io.Writer) error {
	if body == nil {
		return nil
	}
	if err := body.Execute(ctx, toTemplateWriter(w)); err != nil {
		return err
	}
	return nil
}

func letName(special *attrs.Set) (string, error) {
	name := strings.TrimSpace(special.Get(":let").Text())
	if name == "" {
		return "", nil
	}
	if !component.IsIdentifier(name) {
		return "", fmt.Errorf(":let name %q is not a valid identifier", name)
	}
	return name, nil
}
