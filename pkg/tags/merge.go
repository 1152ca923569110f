package tags

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-component-kit/pkg/attrs"
)

type mergeAttrsNode struct {
	base  pongo2.IEvaluator
	args  argumentList
	token *pongo2.Token
}

func (node *mergeAttrsNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	value, perr := node.base.Evaluate(ctx)
	if perr != nil {
		return perr
	}
	base, err := toSet(value.Interface())
	if err != nil {
		return ctx.OrigError(err, node.token)
	}

	spec := attrs.NewMergeSpec()
	for _, arg := range node.args {
		resolved, perr := arg.value(ctx)
		if perr != nil {
			return perr
		}
		if arg.append {
			spec.Append(arg.key, resolved)
			continue
		}
		spec.Default(arg.key, resolved)
	}

	if _, err := writer.WriteString(attrs.Merge(base, spec).String()); err != nil {
		return ctx.OrigError(err, node.token)
	}
	return nil
}

func toSet(value any) (*attrs.Set, error) {
	switch v := value.(type) {
	case nil:
		return attrs.New(), nil
	case *attrs.Set:
		if v == nil {
			return attrs.New(), nil
		}
		return v, nil
	case map[string]any:
		return attrs.FromMap(v), nil
	case pongo2.Context:
		return attrs.FromMap(v), nil
	case map[string]string:
		converted := make(map[string]any, len(v))
		for key, val := range v {
			converted[key] = val
		}
		return attrs.FromMap(converted), nil
	default:
		return nil, fmt.Errorf("merge_attrs: cannot merge into %T", value)
	}
}

func tagMergeAttrsParser(_ *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	if arguments.Remaining() == 0 {
		return nil, arguments.Error("merge_attrs requires the attributes to merge into", nil)
	}
	base, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	args, err := parseArguments(arguments, true)
	if err != nil {
		return nil, err
	}
	return &mergeAttrsNode{base: base, args: args, token: start}, nil
}
