package lower

import (
	"weave/internal/builder"
	"weave/internal/model"
	"weave/internal/syntax"
)

// ParamFromData lowers a frozen parameter.
func ParamFromData(ctx *Context, p *builder.ParameterData) syntax.Param {
	out := syntax.Param{
		Attributes: ctx.Gen.Attributes(p.Attributes),
		Type:       ctx.Gen.TypeSyntax(p.Type),
		Name:       p.Name,
		Default:    p.Default,
	}
	if p.Flags&model.FlagParams != 0 {
		out.Modifiers = []string{"params"}
	}
	return out
}

// ParamFromDecl lowers a parameter declaration.
func ParamFromDecl(ctx *Context, p *model.Decl) syntax.Param {
	out := syntax.Param{
		Attributes: ctx.Gen.Attributes(p.Attributes),
		Type:       ctx.Gen.TypeSyntax(p.Type),
		Name:       p.Name,
		Default:    p.Value,
	}
	if p.Has(model.FlagParams) {
		out.Modifiers = []string{"params"}
	}
	return out
}

func paramsFromData(ctx *Context, ps []*builder.ParameterData) ([]syntax.Param, []string) {
	out := make([]syntax.Param, len(ps))
	names := make([]string, len(ps))
	for i, p := range ps {
		out[i] = ParamFromData(ctx, p)
		names[i] = p.Name
	}
	return out, names
}

func paramsFromDecl(ctx *Context, owner model.Ref) ([]syntax.Param, []string) {
	ps := ctx.Snapshot.Params(owner)
	out := make([]syntax.Param, len(ps))
	names := make([]string, len(ps))
	for i, p := range ps {
		out[i] = ParamFromDecl(ctx, p)
		names[i] = p.Name
	}
	return out, names
}
