package tags

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-component-kit/pkg/attrs"
)

// argument is one collected `key`, `key=expr` or `key+=expr` tag argument.
// expr is nil for flags.
type argument struct {
	key    string
	expr   pongo2.IEvaluator
	append bool
	token  *pongo2.Token
}

type argumentList []argument

// parseArguments collects the remaining tokens of a tag into arguments.
// Keys are built from adjacent identifier, number, keyword and `- : .`
// tokens, so `hx-get`, `x-on:click` and `:let` are single keys. A quoted
// string is accepted as a key for names pongo2 cannot lex, such as "@click".
func parseArguments(p *pongo2.Parser, allowAppend bool) (argumentList, *pongo2.Error) {
	var (
		out  argumentList
		seen = make(map[string]struct{})
	)
	for p.Remaining() > 0 {
		key, start, err := parseKey(p)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			return nil, p.Error(fmt.Sprintf("duplicate attribute %q", key), start)
		}
		seen[key] = struct{}{}

		arg := argument{key: key, token: start}
		switch {
		case p.Match(pongo2.TokenSymbol, "=") != nil:
			expr, err := parseValue(p, key)
			if err != nil {
				return nil, err
			}
			arg.expr = expr
		case p.Peek(pongo2.TokenSymbol, "+") != nil && p.PeekN(1, pongo2.TokenSymbol, "=") != nil:
			if !allowAppend {
				return nil, p.Error(fmt.Sprintf("attribute %q: '+=' is only supported by merge_attrs", key), start)
			}
			p.ConsumeN(2)
			expr, err := parseValue(p, key)
			if err != nil {
				return nil, err
			}
			arg.expr = expr
			arg.append = true
		}
		out = append(out, arg)
	}
	return out, nil
}

func parseValue(p *pongo2.Parser, key string) (pongo2.IEvaluator, *pongo2.Error) {
	if p.Remaining() == 0 {
		return nil, p.Error(fmt.Sprintf("attribute %q is missing a value after '='", key), nil)
	}
	return p.ParseExpression()
}

func parseKey(p *pongo2.Parser) (string, *pongo2.Token, *pongo2.Error) {
	first := p.Current()
	if first == nil {
		return "", nil, p.Error("expected an attribute name", nil)
	}
	if first.Typ == pongo2.TokenString {
		p.Consume()
		if strings.TrimSpace(first.Val) == "" {
			return "", nil, p.Error("attribute name must not be empty", first)
		}
		return first.Val, first, nil
	}
	if !startsKey(first) {
		return "", nil, p.Error(fmt.Sprintf("unexpected '%s', expected an attribute name", first.Val), first)
	}

	var (
		b    strings.Builder
		prev *pongo2.Token
	)
	for tok := p.Current(); tok != nil && isKeyPart(tok); tok = p.Current() {
		if prev != nil && !adjacent(prev, tok) {
			break
		}
		b.WriteString(tok.Val)
		p.Consume()
		prev = tok
	}

	key := b.String()
	if key == attrs.SpecialPrefix {
		return "", nil, p.Error("attribute name must follow ':'", first)
	}
	return key, first, nil
}

func startsKey(tok *pongo2.Token) bool {
	switch tok.Typ {
	case pongo2.TokenIdentifier, pongo2.TokenKeyword, pongo2.TokenNumber:
		return true
	case pongo2.TokenSymbol:
		return tok.Val == ":"
	default:
		return false
	}
}

func isKeyPart(tok *pongo2.Token) bool {
	switch tok.Typ {
	case pongo2.TokenIdentifier, pongo2.TokenKeyword, pongo2.TokenNumber:
		return true
	case pongo2.TokenSymbol:
		return tok.Val == "-" || tok.Val == ":" || tok.Val == "."
	default:
		return false
	}
}

// adjacent reports whether next starts where prev ends on the same line.
func adjacent(prev, next *pongo2.Token) bool {
	return prev.Line == next.Line && prev.Col+len(prev.Val) == next.Col
}

// resolve evaluates the arguments in order into an attribute set.
func (args argumentList) resolve(ctx *pongo2.ExecutionContext) (*attrs.Set, *pongo2.Error) {
	set := attrs.New()
	for _, arg := range args {
		value, err := arg.value(ctx)
		if err != nil {
			return nil, err
		}
		set.Set(arg.key, value)
	}
	return set, nil
}

func (arg argument) value(ctx *pongo2.ExecutionContext) (attrs.Value, *pongo2.Error) {
	if arg.expr == nil {
		return attrs.Bool(true), nil
	}
	value, err := arg.expr.Evaluate(ctx)
	if err != nil {
		return attrs.Value{}, err
	}
	return valueOf(value, arg.expr.FilterApplied("safe")), nil
}

// valueOf classifies an evaluated expression once, at collection time.
func valueOf(value *pongo2.Value, safe bool) attrs.Value {
	switch {
	case value == nil || value.IsNil():
		return attrs.Reference(nil)
	case value.IsString():
		if safe {
			return attrs.Safe(value.String())
		}
		return attrs.String(value.String())
	case value.IsBool():
		return attrs.Bool(value.Bool())
	default:
		return attrs.Of(value.Interface())
	}
}
