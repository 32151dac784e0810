package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
)

// extCallForType calls a drawn extension function returning exactly t.
// Arguments are typed by the function's parameters and generated at depth d.
func (g *Generator) extCallForType(t abac.Type, d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		if !g.settings.EnableExtensions {
			return nil, errExtensionsDisabled
		}
		f, err := g.extensions.ArbitraryForType(t, o)
		if err != nil {
			return nil, err
		}
		args := make([]ast.IsNode, len(f.Params))
		for i, p := range f.Params {
			if args[i], err = g.generateExprForType(p, d, o); err != nil {
				return nil, err
			}
		}
		return ast.ExtensionCall(f.Name, args...), nil
	}
}

// extConstructorCall builds a constant of extension type t: a constructor
// applied to pool literals. It never recurses into the expression
// generators.
func (g *Generator) extConstructorCall(t abac.Type, o arbitrary.Oracle) (ast.IsNode, error) {
	if !g.settings.EnableExtensions {
		return nil, errExtensionsDisabled
	}
	f, err := g.extensions.ArbitraryConstructorForType(t, o)
	if err != nil {
		return nil, err
	}
	args := make([]ast.IsNode, len(f.Params))
	for i, p := range f.Params {
		if !p.IsExtension() {
			args[i], err = g.constructorLiteral(f.Return, o)
		} else {
			// offset(datetime("..."), duration("..."))
			var lit ast.IsNode
			lit, err = g.constructorLiteral(p, o)
			args[i] = ast.ExtensionCall(literalConstructors[p.Kind], lit)
		}
		if err != nil {
			return nil, err
		}
	}
	return ast.ExtensionCall(f.Name, args...), nil
}

// literalConstructors name the constructor that parses a string of each
// extension kind.
var literalConstructors = map[abac.Kind]types.Path{
	abac.KindIPAddr:   "ip",
	abac.KindDecimal:  "decimal",
	abac.KindDatetime: "datetime",
	abac.KindDuration: "duration",
}

// constructorLiteral draws the pool string a constructor of t parses.
func (g *Generator) constructorLiteral(t abac.Type, o arbitrary.Oracle) (ast.IsNode, error) {
	s, err := g.extensionLiteral(t, o)
	if err != nil {
		return nil, err
	}
	return ast.String(s), nil
}

func (g *Generator) extensionLiteral(t abac.Type, o arbitrary.Oracle) (string, error) {
	switch t.Kind {
	case abac.KindIPAddr:
		return g.constants.ArbitraryIP(o)
	case abac.KindDecimal:
		return g.constants.ArbitraryDecimal(o)
	case abac.KindDatetime:
		return g.constants.ArbitraryDatetime(o)
	case abac.KindDuration:
		return g.constants.ArbitraryDuration(o)
	default:
		return "", errors.AssertionFailedf("%s is not an extension type", t)
	}
}
