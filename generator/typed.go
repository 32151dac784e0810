package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/schema"
)

// typedRule is the generation rule for one semantic kind. terminal never
// recurses; menu lists the weighted productions for a remaining depth d.
type typedRule struct {
	terminal func(g *Generator, t abac.Type, o arbitrary.Oracle) (ast.IsNode, error)
	menu     func(g *Generator, t abac.Type, d int, o arbitrary.Oracle) []production[ast.IsNode]
}

var typedRules map[abac.Kind]typedRule

func init() {
	extension := typedRule{terminal: (*Generator).extensionTerminal, menu: (*Generator).extensionMenu}
	typedRules = map[abac.Kind]typedRule{
		abac.KindBool:     {terminal: (*Generator).boolTerminal, menu: (*Generator).boolMenu},
		abac.KindLong:     {terminal: (*Generator).longTerminal, menu: (*Generator).longMenu},
		abac.KindString:   {terminal: (*Generator).stringTerminal, menu: (*Generator).stringMenu},
		abac.KindEntity:   {terminal: (*Generator).entityTerminal, menu: (*Generator).entityMenu},
		abac.KindSet:      {terminal: (*Generator).setTerminal, menu: (*Generator).setMenu},
		abac.KindRecord:   {terminal: (*Generator).recordTerminal, menu: (*Generator).recordMenu},
		abac.KindIPAddr:   extension,
		abac.KindDecimal:  extension,
		abac.KindDatetime: extension,
		abac.KindDuration: extension,
	}
}

// GenerateExprForType returns an expression that evaluates to a value of
// type t, apart from the productions that deliberately mix operand types.
func (g *Generator) GenerateExprForType(t abac.Type, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	n, err := g.generateExprForType(t, maxDepth, o)
	return n, g.observe("expr_for_type", err)
}

func (g *Generator) generateExprForType(t abac.Type, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	if t.IsExtension() && !g.settings.EnableExtensions {
		return nil, errExtensionsDisabled
	}
	if g.settings.EnableUnknowns {
		inject, err := g.shouldGenerateUnknown(maxDepth, o)
		if err != nil {
			return nil, err
		}
		if inject {
			return g.unknownFor(t, maxDepth, o)
		}
	}
	rule, ok := typedRules[t.Kind]
	if !ok {
		return nil, errors.AssertionFailedf("no rule for %s", t)
	}
	if g.exhausted(maxDepth, o) {
		return rule.terminal(g, t, o)
	}
	return choose(o, rule.menu(g, t, maxDepth-1, o)...)
}

// typed returns a producer of expressions of type t at depth d.
func (g *Generator) typed(t abac.Type, d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) { return g.generateExprForType(t, d, o) }
}

// drawnTyped draws a type, then produces an expression of that type.
func (g *Generator) drawnTyped(d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		t, err := g.arbitraryType(o)
		if err != nil {
			return nil, err
		}
		return g.generateExprForType(t, d, o)
	}
}

// drawnSet draws an element type, then produces a set of that type.
func (g *Generator) drawnSet(d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		elem, err := g.arbitraryType(o)
		if err != nil {
			return nil, err
		}
		return g.generateExprForType(abac.Set(elem), d, o)
	}
}

// differentTypes draws two semantic types of different kinds. Sets collide
// regardless of element type, since an unconstrained set may still draw the
// other's element type.
func (g *Generator) differentTypes(o arbitrary.Oracle) (abac.Type, abac.Type, error) {
	t1, err := g.arbitraryType(o)
	if err != nil {
		return abac.Type{}, abac.Type{}, err
	}
	t2, err := g.arbitraryType(o)
	if err != nil {
		return abac.Type{}, abac.Type{}, err
	}
	if t1.Kind == t2.Kind {
		last := abac.KindDuration
		if !g.settings.EnableExtensions {
			last = abac.KindRecord
		}
		t2 = abac.Type{Kind: (t2.Kind + 1) % (last + 1)}
	}
	return t1, t2, nil
}

func (g *Generator) boolTerminal(_ abac.Type, o arbitrary.Oracle) (ast.IsNode, error) {
	b, err := o.Bool()
	return ast.Boolean(b), err
}

func (g *Generator) boolMenu(t abac.Type, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	boolean := g.typed(abac.Bool(), d, o)
	long := g.typed(abac.Long(), d, o)
	entity := g.typed(abac.Entity(), d, o)
	prods := []production[ast.IsNode]{
		prod(2, func() (ast.IsNode, error) { return g.boolTerminal(t, o) }),
		prod(5, func() (ast.IsNode, error) {
			et, err := g.arbitraryType(o)
			if err != nil {
				return nil, err
			}
			return binary(ast.Equal, g.typed(et, d, o), g.typed(et, d, o))()
		}),
		prod(2, func() (ast.IsNode, error) {
			t1, t2, err := g.differentTypes(o)
			if err != nil {
				return nil, err
			}
			return binary(ast.Equal, g.typed(t1, d, o), g.typed(t2, d, o))()
		}),
		prod(5, unary(ast.Not, boolean)),
		prod(5, ite(boolean, boolean, boolean)),
		prod(5, binary(ast.And, boolean, boolean)),
		prod(5, binary(ast.Or, boolean, boolean)),
		prod(1, binary(ast.LessThan, long, long)),
		prod(1, binary(ast.LessThanOrEqual, long, long)),
		prod(1, binary(ast.GreaterThan, long, long)),
		prod(1, binary(ast.GreaterThanOrEqual, long, long)),
		prod(11, binary(ast.In, entity, entity)),
		prod(2, binary(ast.In, entity, g.typed(abac.Set(abac.Entity()), d, o))),
		prod(2, func() (ast.IsNode, error) {
			elem, err := g.arbitraryType(o)
			if err != nil {
				return nil, err
			}
			e, err := g.generateExprForType(elem, d, o)
			if err != nil {
				return nil, err
			}
			s, err := g.generateExprForType(abac.Set(elem), d, o)
			if err != nil {
				return nil, err
			}
			return ast.Contains(s, e), nil
		}),
		prod(1, binary(ast.ContainsAll, g.drawnSet(d, o), g.drawnSet(d, o))),
		prod(1, binary(ast.ContainsAny, g.drawnSet(d, o), g.drawnSet(d, o))),
		prod(1, unary(ast.IsEmpty, g.drawnSet(d, o))),
		prod(2, func() (ast.IsNode, error) {
			if !g.settings.EnableLike {
				return nil, errLikeDisabled
			}
			arg, err := g.generateExprForType(abac.String(), d, o)
			if err != nil {
				return nil, err
			}
			pattern, err := g.constants.ArbitraryPattern(o)
			if err != nil {
				return nil, err
			}
			return ast.Like(arg, pattern), nil
		}),
		prod(2, func() (ast.IsNode, error) {
			arg, err := entity()
			if err != nil {
				return nil, err
			}
			et, err := arbitrary.Choose(o, g.index.EntityTypes)
			if err != nil {
				return nil, errors.Wrap(err, "choosing an entity type")
			}
			return ast.Is(arg, et), nil
		}),
		prod(2, g.extCallForType(t, d, o)),
	}
	prods = append(prods, g.accessProductions(t, 1, 1, 1, d, o)...)
	return append(prods,
		prod(2, func() (ast.IsNode, error) {
			et, err := arbitrary.Choose(o, g.index.EntityTypes)
			if err != nil {
				return nil, errors.Wrap(err, "choosing an entity type")
			}
			name, err := arbitrary.Choose(o, g.schema.AttrNames(et))
			if err != nil {
				return nil, errors.Wrapf(err, "choosing an attribute of %s", string(et))
			}
			base, err := g.generateExprForSchemaType(schema.EntityType(et), d, o)
			if err != nil {
				return nil, err
			}
			return ast.Has(base, name), nil
		}),
		prod(1, g.has(entity, o)),
		prod(1, binary(ast.HasTag, entity, g.typed(abac.String(), d, o))),
		prod(2, g.has(g.typed(abac.Record(), d, o), o)),
	)
}

// has tests base for a pool-drawn attribute name.
func (g *Generator) has(base gen, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		b, err := base()
		if err != nil {
			return nil, err
		}
		name, err := g.constants.ArbitraryString(o)
		if err != nil {
			return nil, err
		}
		return ast.Has(b, name), nil
	}
}

func (g *Generator) longTerminal(_ abac.Type, o arbitrary.Oracle) (ast.IsNode, error) {
	i, err := g.constants.ArbitraryInt(o)
	return ast.Value(i), err
}

func (g *Generator) longMenu(t abac.Type, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	long := g.typed(t, d, o)
	prods := []production[ast.IsNode]{
		prod(16, func() (ast.IsNode, error) { return g.longTerminal(t, o) }),
		prod(5, ite(g.typed(abac.Bool(), d, o), long, long)),
		prod(1, binary(ast.Add, long, long)),
		prod(1, binary(ast.Sub, long, long)),
		prod(1, binary(ast.Mult, long, long)),
		prod(1, unary(ast.Negate, long)),
		prod(1, g.extCallForType(t, d, o)),
	}
	return append(prods, g.accessProductions(t, 4, 4, 3, d, o)...)
}

func (g *Generator) stringTerminal(_ abac.Type, o arbitrary.Oracle) (ast.IsNode, error) {
	s, err := g.constants.ArbitraryString(o)
	return ast.Value(s), err
}

func (g *Generator) stringMenu(t abac.Type, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	str := g.typed(t, d, o)
	prods := []production[ast.IsNode]{
		prod(16, func() (ast.IsNode, error) { return g.stringTerminal(t, o) }),
		prod(5, ite(g.typed(abac.Bool(), d, o), str, str)),
		prod(1, g.extCallForType(t, d, o)),
	}
	return append(prods, g.accessProductions(t, 4, 4, 3, d, o)...)
}

func (g *Generator) setTerminal(abac.Type, arbitrary.Oracle) (ast.IsNode, error) {
	return ast.Set(), nil
}

func (g *Generator) setMenu(t abac.Type, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	set := g.typed(t, d, o)
	prods := []production[ast.IsNode]{
		prod(6, func() (ast.IsNode, error) {
			var elem abac.Type
			if t.Element != nil {
				elem = *t.Element
			} else {
				var err error
				if elem, err = g.arbitraryType(o); err != nil {
					return nil, err
				}
			}
			elems, err := g.loop(g.typed(elem, d, o), o)
			if err != nil {
				return nil, err
			}
			return ast.Set(elems...), nil
		}),
		prod(2, ite(g.typed(abac.Bool(), d, o), set, set)),
		prod(1, g.extCallForType(t, d, o)),
	}
	return append(prods, g.accessProductions(t, 4, 3, 3, d, o)...)
}

// loop collects up to MaxWidth results of elem.
func (g *Generator) loop(elem gen, o arbitrary.Oracle) ([]ast.IsNode, error) {
	var elems []ast.IsNode
	err := o.Loop(0, g.settings.MaxWidth, func() error {
		e, err := elem()
		if err != nil {
			return err
		}
		elems = append(elems, e)
		return nil
	})
	return elems, err
}

func (g *Generator) recordTerminal(abac.Type, arbitrary.Oracle) (ast.IsNode, error) {
	return nil, errors.Wrap(ErrTooDeep, "record expression")
}

func (g *Generator) recordMenu(t abac.Type, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	record := g.typed(t, d, o)
	prods := []production[ast.IsNode]{
		prod(2, func() (ast.IsNode, error) {
			fields := map[types.String]ast.IsNode{}
			err := o.Loop(0, g.settings.MaxWidth, func() error {
				v, err := g.drawnTyped(d, o)()
				if err != nil {
					return err
				}
				name, err := g.constants.ArbitraryString(o)
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
		}),
		prod(2, ite(g.typed(abac.Bool(), d, o), record, record)),
		prod(1, g.extCallForType(t, d, o)),
	}
	return append(prods, g.accessProductions(t, 4, 3, 3, d, o)...)
}

func (g *Generator) entityTerminal(_ abac.Type, o arbitrary.Oracle) (ast.IsNode, error) {
	v, err := arbitrary.Choose(o, variables[:3])
	return ast.Variable(v), err
}

func (g *Generator) entityMenu(t abac.Type, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	entity := g.typed(t, d, o)
	return []production[ast.IsNode]{
		prod(11, func() (ast.IsNode, error) {
			uid, err := g.generateUID(o)
			return ast.EntityUID(uid), err
		}),
		prod(2, func() (ast.IsNode, error) {
			uid, err := g.arbitraryAdHocUID(o)
			return ast.EntityUID(uid), err
		}),
		prod(6, leaf(ast.Variable(ast.Principal))),
		prod(6, leaf(ast.Variable(ast.Action))),
		prod(6, leaf(ast.Variable(ast.Resource))),
		prod(2, ite(g.typed(abac.Bool(), d, o), entity, entity)),
		prod(1, g.extCallForType(t, d, o)),
		prod(6, func() (ast.IsNode, error) {
			et, err := g.arbitraryEntityType(o)
			if err != nil {
				return nil, err
			}
			return g.entityAttr(isSchemaType(et), d, o)()
		}),
		prod(5, g.recordAttr(func() (schema.IsType, error) { return g.arbitraryEntityType(o) }, d, o)),
		prod(5, g.entityTypedTag(d, o)),
	}
}

// entityTypedTag reads a tag declared with a drawn entity type.
func (g *Generator) entityTypedTag(d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		et, err := g.arbitraryEntityType(o)
		if err != nil {
			return nil, err
		}
		return g.entityTag(isSchemaType(et), d, o)()
	}
}

func (g *Generator) arbitraryEntityType(o arbitrary.Oracle) (schema.IsType, error) {
	et, err := arbitrary.Choose(o, g.index.EntityTypes)
	if err != nil {
		return nil, errors.Wrap(err, "choosing an entity type")
	}
	return schema.EntityType(et), nil
}

func (g *Generator) extensionTerminal(t abac.Type, o arbitrary.Oracle) (ast.IsNode, error) {
	return g.extConstructorCall(t, o)
}

func (g *Generator) extensionMenu(t abac.Type, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	ext := g.typed(t, d, o)
	prods := []production[ast.IsNode]{
		prod(2, ite(g.typed(abac.Bool(), d, o), ext, ext)),
		prod(9, g.extCallForType(t, d, o)),
	}
	return append(prods, g.accessProductions(t, 2, 2, 5, d, o)...)
}
