package tags

import (
	"fmt"
	"io"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-component-kit/pkg/attrs"
	"github.com/goliatone/go-component-kit/pkg/slots"
)

type slotNode struct {
	name  string
	args  argumentList
	body  *pongo2.NodeWrapper
	token *pongo2.Token
}

func (node *slotNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	set, perr := node.args.resolve(ctx)
	if perr != nil {
		return perr
	}
	special, regular := attrs.SplitSpecial(set)

	owner, ok := ctx.Private[collectorKey].(*collector)
	if !ok {
		inner := pongo2.NewChildExecutionContext(ctx)
		inner.Private[attributesKey] = regular
		if err := execute(node.body, inner, writer); err != nil {
			return asTagError(ctx, err, node.token)
		}
		return nil
	}
	if owner.sink {
		return nil
	}

	let, err := letName(special)
	if err != nil {
		return ctx.OrigError(err, node.token)
	}

	captured := pongo2.NewChildExecutionContext(ctx)
	delete(captured.Private, collectorKey)
	body := node.body
	owner.slots.Add(slots.New(node.name, regular, let, func(w io.Writer, binding any, bound bool) error {
		inner := pongo2.NewChildExecutionContext(captured)
		inner.Private[attributesKey] = regular
		if bound {
			inner.Private[let] = binding
		}
		return execute(body, inner, w)
	}))
	return nil
}

func tagSlotParser(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	nameToken := arguments.Current()
	if nameToken == nil || (nameToken.Typ != pongo2.TokenIdentifier && nameToken.Typ != pongo2.TokenString) {
		return nil, arguments.Error("slot requires a name", nil)
	}
	arguments.Consume()
	if nameToken.Val == "" {
		return nil, arguments.Error("slot name must not be empty", nameToken)
	}

	args, err := parseArguments(arguments, false)
	if err != nil {
		return nil, err
	}
	markSlotOwner(doc)

	body, endArgs, err := doc.WrapUntilTag("endslot")
	if err != nil {
		return nil, err
	}
	if endArgs.Count() > 0 {
		return nil, endArgs.Error("'endslot' takes no arguments", nil)
	}

	return &slotNode{
		name:  nameToken.Val,
		args:  args,
		body:  body,
		token: start,
	}, nil
}

type renderSlotNode struct {
	slot    pongo2.IEvaluator
	binding pongo2.IEvaluator
	token   *pongo2.Token
}

func (node *renderSlotNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	if collecting(ctx) {
		return nil
	}
	target, perr := node.slot.Evaluate(ctx)
	if perr != nil {
		return perr
	}

	var list slots.List
	switch value := target.Interface().(type) {
	case nil:
		return nil
	case slots.List:
		list = value
	case *slots.Slot:
		if value == nil {
			return nil
		}
		list = slots.List{value}
	case string:
		available, _ := lookup(ctx, slotsKey).(slots.Map)
		list = available.Get(value)
	default:
		return ctx.Error(fmt.Sprintf("render_slot: cannot render %T as a slot", value), node.token)
	}

	var binding []any
	if node.binding != nil {
		bound, perr := node.binding.Evaluate(ctx)
		if perr != nil {
			return perr
		}
		binding = append(binding, bound.Interface())
	}

	if err := list.Render(writer, binding...); err != nil {
		return asTagError(ctx, err, node.token)
	}
	return nil
}

func tagRenderSlotParser(_ *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	if arguments.Remaining() == 0 {
		return nil, arguments.Error("render_slot requires a slot", nil)
	}
	node := &renderSlotNode{token: start}

	slot, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	node.slot = slot

	if arguments.Remaining() > 0 {
		binding, err := arguments.ParseExpression()
		if err != nil {
			return nil, err
		}
		node.binding = binding
	}
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("render_slot takes a slot and at most one argument", nil)
	}
	return node, nil
}
