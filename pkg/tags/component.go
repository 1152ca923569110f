package tags

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-component-kit/pkg/attrs"
	"github.com/goliatone/go-component-kit/pkg/component"
	"github.com/goliatone/go-component-kit/pkg/slots"
)

// collector receives slot registrations while a block component body runs.
// A sink collector swallows them, which is how children content is
// re-rendered without its named slots. A collectOnly collector marks a pass
// whose output is discarded; tags that render or register content skip it.
type collector struct {
	slots       slots.Map
	sink        bool
	collectOnly bool
}

type componentNode struct {
	name     string
	block    bool
	args     argumentList
	body     *pongo2.NodeWrapper
	token    *pongo2.Token
	hasSlots bool
}

func (node *componentNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	if collecting(ctx) {
		return nil
	}

	rt, perr := runtimeFrom(ctx, node.token)
	if perr != nil {
		return perr
	}

	started := time.Now()
	err := node.render(ctx, rt, writer)
	observe(rt, node.name, started, err)
	if err != nil {
		return asTagError(ctx, err, node.token)
	}
	return nil
}

func (node *componentNode) render(ctx *pongo2.ExecutionContext, rt Runtime, writer io.Writer) error {
	desc, ok := rt.Component(node.name)
	if !ok {
		return fmt.Errorf("%w: %q", component.ErrNotFound, node.name)
	}

	set, perr := node.args.resolve(ctx)
	if perr != nil {
		return perr
	}
	special, attributes := attrs.SplitSpecial(set)

	props, err := popProps(desc, attributes)
	if err != nil {
		return err
	}

	slotMap := slots.NewMap()
	if node.block {
		if slotMap, err = node.collect(ctx, special); err != nil {
			return err
		}
	}

	data := flatten(ctx)
	data[attributesKey] = attributes
	data[slotsKey] = slotMap
	for key, value := range props {
		data[key] = value
	}
	if desc.Context != nil {
		extra, err := desc.Context(maps.Clone(props), maps.Clone(map[string]any(data)))
		if err != nil {
			return fmt.Errorf("component %q: context: %w", node.name, err)
		}
		for key, value := range extra {
			data[key] = value
		}
	}

	tpl, err := rt.Template(desc.Template)
	if err != nil {
		return fmt.Errorf("component %q: %w", node.name, err)
	}
	if err := tpl.ExecuteWriter(data, writer); err != nil {
		return fmt.Errorf("component %q: %w", node.name, err)
	}
	return nil
}

// popProps moves declared props out of the attribute set.
func popProps(desc component.Descriptor, attributes *attrs.Set) (map[string]any, error) {
	props := make(map[string]any, len(desc.Props))
	for _, prop := range desc.Props {
		value, ok := attributes.Pop(prop.Name)
		switch {
		case ok:
			props[prop.Name] = value.Interface()
		case prop.Required:
			return nil, fmt.Errorf("%s component is missing required argument: %s", desc.Name, prop.Name)
		default:
			props[prop.Name] = prop.Default
		}
	}
	return props, nil
}

// collect runs the component body once, registering named slots and keeping
// everything else as children. With :let the children depend on the binding,
// so the body only runs up front when it declares slots of its own, and that
// pass renders nothing.
func (node *componentNode) collect(ctx *pongo2.ExecutionContext, special *attrs.Set) (slots.Map, error) {
	let, err := letName(special)
	if err != nil {
		return nil, err
	}

	collected := slots.NewMap()
	if let == "" || node.hasSlots {
		scope := pongo2.NewChildExecutionContext(ctx)
		scope.Private[collectorKey] = &collector{slots: collected, collectOnly: let != ""}
		scope.Private[attributesKey] = attrs.New()

		var children bytes.Buffer
		if err := execute(node.body, scope, &children); err != nil {
			return nil, err
		}
		if let == "" {
			if strings.TrimSpace(children.String()) != "" {
				collected.Add(slots.Static(slots.Children, children.String()))
			}
			return collected, nil
		}
	}

	body := node.body
	collected.Add(slots.New(slots.Children, special.Without(":let"), let, func(w io.Writer, binding any, bound bool) error {
		inner := pongo2.NewChildExecutionContext(ctx)
		inner.Private[collectorKey] = &collector{sink: true}
		inner.Private[attributesKey] = attrs.New()
		if bound {
			inner.Private[let] = binding
		}
		return execute(body, inner, w)
	}))
	return collected, nil
}

func componentParser(name string, block bool) pongo2.TagParser {
	return func(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
		args, err := parseArguments(arguments, false)
		if err != nil {
			return nil, err
		}
		node := &componentNode{
			name:  name,
			block: block,
			args:  args,
			token: start,
		}
		if !block {
			return node, nil
		}

		enterBody(doc, node)
		body, endArgs, err := doc.WrapUntilTag("end" + name)
		leaveBody(doc)
		if err != nil {
			return nil, err
		}
		if endArgs.Count() > 0 {
			return nil, endArgs.Error(fmt.Sprintf("'end%s' takes no arguments", name), nil)
		}
		node.body = body
		return node, nil
	}
}
