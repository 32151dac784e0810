package generator

import (
	"github.com/cedar-policy/cedar-go/types"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
)

// GenerateConstExpr returns an expression built only from literals, sets
// and records. Nesting stops at maxDepth.
func (g *Generator) GenerateConstExpr(maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	n, err := g.generateConstExpr(maxDepth, o)
	return n, g.observe("const_expr", err)
}

// GenerateConstExprForType is GenerateConstExpr for a target type t.
func (g *Generator) GenerateConstExprForType(t abac.Type, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	n, err := g.generateConstExprForType(t, maxDepth, o)
	return n, g.observe("const_expr_for_type", err)
}

func (g *Generator) generateConstExpr(maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	if maxDepth <= 0 {
		return g.generateLiteral(o)
	}
	sub := func() (ast.IsNode, error) { return g.generateConstExpr(maxDepth-1, o) }
	return choose(o,
		prod(4, func() (ast.IsNode, error) { return g.generateLiteral(o) }),
		prod(1, func() (ast.IsNode, error) {
			elems, err := g.loop(sub, o)
			if err != nil {
				return nil, err
			}
			return ast.Set(elems...), nil
		}),
		prod(1, g.constRecord(sub, o)),
	)
}

// constRecord is a record literal keyed by schema attribute names.
func (g *Generator) constRecord(value gen, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		fields := map[types.String]ast.IsNode{}
		err := o.Loop(0, g.settings.MaxWidth, func() error {
			name, err := g.arbitraryAttrName(o)
			if err != nil {
				return err
			}
			v, err := value()
			if err != nil {
				return err
			}
			fields[name] = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return ast.Record(fields), nil
	}
}

func (g *Generator) generateConstExprForType(t abac.Type, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	switch t.Kind {
	case abac.KindBool, abac.KindLong, abac.KindString:
		return typedRules[t.Kind].terminal(g, t, o)
	case abac.KindEntity:
		return choose(o,
			prod(3, func() (ast.IsNode, error) {
				uid, err := g.generateUID(o)
				return ast.EntityUID(uid), err
			}),
			prod(1, func() (ast.IsNode, error) {
				uid, err := g.arbitraryAdHocUID(o)
				return ast.EntityUID(uid), err
			}),
		)
	case abac.KindSet:
		if maxDepth <= 0 {
			return ast.Set(), nil
		}
		elem, err := g.elementType(t, o)
		if err != nil {
			return nil, err
		}
		elems, err := g.loop(func() (ast.IsNode, error) { return g.generateConstExprForType(elem, maxDepth-1, o) }, o)
		if err != nil {
			return nil, err
		}
		return ast.Set(elems...), nil
	case abac.KindRecord:
		if maxDepth <= 0 {
			return ast.Record(nil), nil
		}
		return g.constRecord(func() (ast.IsNode, error) { return g.generateConstExpr(maxDepth-1, o) }, o)()
	default:
		return g.extConstructorCall(t, o)
	}
}
