package tags

import (
	"github.com/flosch/pongo2/v6"
)

type renderAssetsNode struct {
	token *pongo2.Token
}

func (node *renderAssetsNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	rt, perr := runtimeFrom(ctx, node.token)
	if perr != nil {
		return perr
	}
	registry := rt.Assets()
	if registry == nil {
		return nil
	}
	if _, err := writer.WriteString(registry.Render()); err != nil {
		return ctx.OrigError(err, node.token)
	}
	return nil
}

func tagRenderAssetsParser(_ *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	if arguments.Remaining() > 0 {
		return nil, arguments.Error("render_assets takes no arguments", nil)
	}
	return &renderAssetsNode{token: start}, nil
}
