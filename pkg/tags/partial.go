package tags

import (
	"bytes"
	"fmt"

	"github.com/flosch/pongo2/v6"
)

type partialNode struct {
	name   string
	inline bool
	key    string
	body   *pongo2.NodeWrapper
	token  *pongo2.Token
}

func (node *partialNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	if collecting(ctx) {
		return nil
	}

	rt, perr := runtimeFrom(ctx, node.token)
	if perr != nil {
		return perr
	}

	cache := rt.Partials(node.key)
	if cache != nil && !cache.Has(node.name) {
		snapshot := pongo2.NewChildExecutionContext(ctx)
		delete(snapshot.Private, collectorKey)
		body := node.body
		cache.Register(node.name, func() (string, error) {
			inner := pongo2.NewChildExecutionContext(snapshot)
			inner.Private[isPartialKey] = true
			var buf bytes.Buffer
			if err := execute(body, inner, &buf); err != nil {
				return "", err
			}
			return buf.String(), nil
		}, node.inline)
	}

	if !node.inline {
		return nil
	}
	inner := pongo2.NewChildExecutionContext(ctx)
	inner.Private[isPartialKey] = false
	if err := execute(node.body, inner, writer); err != nil {
		return asTagError(ctx, err, node.token)
	}
	return nil
}

func tagPartialParser(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	nameToken := arguments.Current()
	if nameToken == nil || (nameToken.Typ != pongo2.TokenIdentifier && nameToken.Typ != pongo2.TokenString) {
		return nil, arguments.Error("partial requires a name", nil)
	}
	arguments.Consume()

	node := &partialNode{
		name:  nameToken.Val,
		key:   start.Filename,
		token: start,
	}

	if option := arguments.Current(); option != nil {
		if option.Val != "inline" {
			return nil, arguments.Error(fmt.Sprintf("Invalid argument %s. Possible options: [inline]", option.Val), option)
		}
		arguments.Consume()
		node.inline = true
	}
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("partial takes a name and an optional 'inline'", nil)
	}

	body, endArgs, err := doc.WrapUntilTag("endpartial")
	if err != nil {
		return nil, err
	}
	if endArgs.Count() > 0 {
		return nil, endArgs.Error("'endpartial' takes no arguments", nil)
	}
	node.body = body
	return node, nil
}

type renderPartialNode struct {
	name  string
	key   string
	token *pongo2.Token
}

func (node *renderPartialNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	rt, perr := runtimeFrom(ctx, node.token)
	if perr != nil {
		return perr
	}
	cache := rt.Partials(node.key)
	if cache == nil {
		return nil
	}
	output, err := cache.Resolve(node.name)
	if err != nil {
		return asTagError(ctx, err, node.token)
	}
	if _, err := writer.WriteString(output); err != nil {
		return ctx.OrigError(err, node.token)
	}
	return nil
}

func tagRenderPartialParser(_ *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	nameToken := arguments.Current()
	if nameToken == nil || (nameToken.Typ != pongo2.TokenIdentifier && nameToken.Typ != pongo2.TokenString) {
		return nil, arguments.Error("render_partial requires a partial name", nil)
	}
	arguments.Consume()
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("render_partial takes a single partial name", nil)
	}
	return &renderPartialNode{name: nameToken.Val, key: start.Filename, token: start}, nil
}
