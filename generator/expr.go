package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/hierarchy"
)

var variables = []types.String{ast.Principal, ast.Action, ast.Resource, ast.Context}

const (
	identStart = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
	identRest  = identStart + "0123456789"
	// maxIdentLen bounds drawn identifiers.
	maxIdentLen = 8
	// maxDrawnArity bounds the argument count of deliberately ill-formed
	// extension calls.
	maxDrawnArity = 4
)

// GenerateExpr returns an expression with no type obligation.
func (g *Generator) GenerateExpr(maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	n, err := g.generateExpr(maxDepth, o)
	return n, g.observe("expr", err)
}

func (g *Generator) generateExpr(maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	if maxDepth <= 0 {
		return g.generateLiteralOrVar(o)
	}
	d := maxDepth - 1
	sub := func() (ast.IsNode, error) { return g.generateExpr(d, o) }
	return choose(o,
		prod(2, func() (ast.IsNode, error) { return g.generateLiteralOrVar(o) }),
		prod(1, binary(ast.Equal, sub, sub)),
		prod(1, unary(ast.Not, sub)),
		prod(1, func() (ast.IsNode, error) { return choose(o, g.otherExprs(d, o)...) }),
	)
}

// otherExprs is the secondary menu of the untyped rule.
func (g *Generator) otherExprs(d int, o arbitrary.Oracle) []production[ast.IsNode] {
	sub := func() (ast.IsNode, error) { return g.generateExpr(d, o) }
	return []production[ast.IsNode]{
		prod(2, ite(sub, sub, sub)),
		prod(2, binary(ast.And, sub, sub)),
		prod(2, binary(ast.Or, sub, sub)),
		prod(1, binary(ast.LessThan, sub, sub)),
		prod(1, binary(ast.LessThanOrEqual, sub, sub)),
		prod(1, binary(ast.GreaterThan, sub, sub)),
		prod(1, binary(ast.GreaterThanOrEqual, sub, sub)),
		prod(1, binary(ast.Add, sub, sub)),
		prod(1, binary(ast.Sub, sub, sub)),
		prod(1, binary(ast.Mult, sub, sub)),
		prod(1, unary(ast.Negate, sub)),
		prod(6, binary(ast.In, sub, sub)),
		prod(1, binary(ast.Contains, sub, sub)),
		prod(1, binary(ast.ContainsAll, sub, sub)),
		prod(1, binary(ast.ContainsAny, sub, sub)),
		prod(1, unary(ast.IsEmpty, sub)),
		prod(2, func() (ast.IsNode, error) {
			if !g.settings.EnableLike {
				return nil, errLikeDisabled
			}
			arg, err := sub()
			if err != nil {
				return nil, err
			}
			pattern, err := g.constants.ArbitraryPattern(o)
			if err != nil {
				return nil, err
			}
			return ast.Like(arg, pattern), nil
		}),
		prod(1, func() (ast.IsNode, error) {
			arg, err := sub()
			if err != nil {
				return nil, err
			}
			et, err := arbitrary.Choose(o, g.index.EntityTypes)
			if err != nil {
				return nil, errors.Wrap(err, "choosing an entity type")
			}
			return ast.Is(arg, et), nil
		}),
		prod(1, func() (ast.IsNode, error) {
			var elems []ast.IsNode
			err := o.Loop(0, g.settings.MaxWidth, func() error {
				e, err := sub()
				if err != nil {
					return err
				}
				elems = append(elems, e)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return ast.Set(elems...), nil
		}),
		prod(1, func() (ast.IsNode, error) {
			fields := map[types.String]ast.IsNode{}
			err := o.Loop(0, g.settings.MaxWidth, func() error {
				attr, err := g.index.ArbitraryAttr(o)
				if err != nil {
					return err
				}
				v, err := sub()
				if err != nil {
					return err
				}
				fields[attr.Name] = v
				return nil
			})
			if err != nil {
				return nil, err
			}
			return ast.Record(fields), nil
		}),
		prod(1, g.arbitraryExtCall(d, o)),
		prod(7, func() (ast.IsNode, error) {
			name, err := choose(o,
				prod(1, func() (types.String, error) { return g.arbitraryString(o) }),
				prod(6, func() (types.String, error) { return g.arbitraryAttrName(o) }),
			)
			if err != nil {
				return nil, err
			}
			base, err := sub()
			if err != nil {
				return nil, err
			}
			// "s"["a"] does not survive a round trip through Cedar text,
			// so a bare string base becomes {"s": "s"}["a"].
			if lit, ok := base.(ast.NodeValue); ok {
				if s, ok := lit.Value.(types.String); ok {
					base = ast.Record(map[types.String]ast.IsNode{s: lit})
				}
			}
			return ast.GetAttr(base, name), nil
		}),
		prod(4, func() (ast.IsNode, error) {
			name, err := uniform(o,
				func() (types.String, error) { return g.arbitraryAttrName(o) },
				func() (types.String, error) { return g.arbitraryString(o) },
			)
			if err != nil {
				return nil, err
			}
			base, err := sub()
			if err != nil {
				return nil, err
			}
			return ast.Has(base, name), nil
		}),
		prod(4, func() (ast.IsNode, error) {
			tag, err := uniform(o,
				sub,
				func() (ast.IsNode, error) {
					name, err := g.arbitraryAttrName(o)
					return ast.String(string(name)), err
				},
			)
			if err != nil {
				return nil, err
			}
			base, err := sub()
			if err != nil {
				return nil, err
			}
			return ast.HasTag(base, tag), nil
		}),
	}
}

// arbitraryExtCall calls a drawn extension function. With arbitrary calls
// enabled, the arity and the name are each replaced by drawn ones one time
// in ten.
func (g *Generator) arbitraryExtCall(d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		if !g.settings.EnableExtensions {
			return nil, errExtensionsDisabled
		}
		f, err := g.extensions.ArbitraryAll(o)
		if err != nil {
			return nil, err
		}
		arity := len(f.Params)
		name := f.Name
		if g.settings.EnableArbitraryFuncCall {
			keep, err := o.Ratio(9, 10)
			if err != nil {
				return nil, err
			}
			if !keep {
				if arity, err = o.IntInRange(0, maxDrawnArity); err != nil {
					return nil, err
				}
			}
			if keep, err = o.Ratio(9, 10); err != nil {
				return nil, err
			}
			if !keep {
				id, err := arbitraryIdent(o)
				if err != nil {
					return nil, err
				}
				name = types.Path(id)
			}
		}
		args := make([]ast.IsNode, arity)
		for i := range args {
			if args[i], err = g.generateExpr(d, o); err != nil {
				return nil, err
			}
		}
		return ast.ExtensionCall(name, args...), nil
	}
}

// generateLiteralOrVar never recurses.
func (g *Generator) generateLiteralOrVar(o arbitrary.Oracle) (ast.IsNode, error) {
	isVar, err := o.Ratio(1, 4)
	if err != nil {
		return nil, err
	}
	if isVar {
		v, err := arbitrary.Choose(o, variables)
		return ast.Variable(v), err
	}
	return g.generateLiteral(o)
}

// generateLiteral never recurses.
func (g *Generator) generateLiteral(o arbitrary.Oracle) (ast.IsNode, error) {
	return choose(o,
		prod(11, func() (ast.IsNode, error) {
			b, err := o.Bool()
			return ast.Boolean(b), err
		}),
		prod(10, func() (ast.IsNode, error) {
			i, err := g.constants.ArbitraryInt(o)
			return ast.Value(i), err
		}),
		prod(10, func() (ast.IsNode, error) {
			s, err := g.constants.ArbitraryString(o)
			return ast.Value(s), err
		}),
		prod(20, func() (ast.IsNode, error) {
			uid, err := g.generateUID(o)
			return ast.EntityUID(uid), err
		}),
		prod(4, func() (ast.IsNode, error) {
			uid, err := g.arbitraryAdHocUID(o)
			return ast.EntityUID(uid), err
		}),
	)
}

func (g *Generator) arbitraryString(o arbitrary.Oracle) (types.String, error) {
	s, err := o.Text()
	return types.String(s), err
}

func (g *Generator) arbitraryAttrName(o arbitrary.Oracle) (types.String, error) {
	a, err := g.index.ArbitraryAttr(o)
	return a.Name, err
}

// arbitraryIdent draws a valid identifier that is not a keyword.
func arbitraryIdent(o arbitrary.Oracle) (string, error) {
	var buf []byte
	err := o.Loop(1, maxIdentLen, func() error {
		alphabet := identRest
		if len(buf) == 0 {
			alphabet = identStart
		}
		i, err := o.ChooseIndex(len(alphabet))
		if err != nil {
			return err
		}
		buf = append(buf, alphabet[i])
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "drawing an identifier")
	}
	id := string(buf)
	if !ast.IsIdent(id) {
		id += "_"
	}
	return id, nil
}

// arbitraryAdHocUID synthesizes a UID that is unlikely to name a declared
// entity type or an existing entity.
func (g *Generator) arbitraryAdHocUID(o arbitrary.Oracle) (types.EntityUID, error) {
	et, err := arbitraryIdent(o)
	if err != nil {
		return types.EntityUID{}, err
	}
	id, err := hierarchy.ArbitraryID(o)
	if err != nil {
		return types.EntityUID{}, err
	}
	return types.NewEntityUID(types.EntityType(et), id), nil
}
