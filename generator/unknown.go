package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
)

// shouldGenerateUnknown reports whether to emit an unknown instead of an
// expression. The chance grows as maxDepth falls below the configured
// maximum.
func (g *Generator) shouldGenerateUnknown(maxDepth int, o arbitrary.Oracle) (bool, error) {
	chance := g.settings.MaxDepth - maxDepth
	choice, err := o.IntInRange(0, g.settings.MaxDepth)
	if err != nil {
		return false, errors.Wrap(err, "drawing unknown chance")
	}
	return choice <= chance, nil
}

// unknownFor registers a value of type t in the unknown pool and returns a
// reference to it.
func (g *Generator) unknownFor(t abac.Type, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	v, err := g.generateValueForType(t, maxDepth, o)
	if err != nil {
		return nil, err
	}
	name := g.unknowns.Alloc(t, v)
	return ast.Unknown(types.String(name), t.StaticType()), nil
}
