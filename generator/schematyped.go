package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/schema"
)

// GenerateExprForSchemaType returns an expression whose value conforms to
// the schema type t. References in t are resolved against the schema first;
// an undefined common type panics with an assertion failure.
func (g *Generator) GenerateExprForSchemaType(t schema.IsType, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	n, err := g.generateExprForSchemaType(t, maxDepth, o)
	return n, g.observe("expr_for_schema_type", err)
}

func (g *Generator) generateExprForSchemaType(t schema.IsType, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	resolved := g.schema.Resolve(t)
	var menu func(d int) []production[ast.IsNode]
	var terminal gen
	switch rt := resolved.(type) {
	case schema.SetType:
		terminal = leaf(ast.Set())
		menu = func(d int) []production[ast.IsNode] { return g.schemaSetMenu(rt, d, o) }
	case schema.RecordType:
		terminal = func() (ast.IsNode, error) { return nil, errors.Wrap(ErrTooDeep, "record expression") }
		menu = func(d int) []production[ast.IsNode] { return g.schemaRecordMenu(rt, d, o) }
	case schema.EntityTypeRef:
		terminal = func() (ast.IsNode, error) { return g.entityTerminal(abac.Entity(), o) }
		menu = func(d int) []production[ast.IsNode] { return g.schemaEntityMenu(rt, d, o) }
	default:
		st, ok := abac.FromSchemaType(resolved)
		if !ok {
			return nil, errors.AssertionFailedf("unresolved schema type %T", resolved)
		}
		return g.generateExprForType(st, maxDepth, o)
	}
	if g.exhausted(maxDepth, o) {
		return terminal()
	}
	return choose(o, menu(maxDepth-1)...)
}

func (g *Generator) schemaTyped(t schema.IsType, d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) { return g.generateExprForSchemaType(t, d, o) }
}

// uidOfType produces a UID literal of entity type et.
func (g *Generator) uidOfType(et types.EntityType, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		uid, err := g.arbitraryUIDWithType(et, o)
		return ast.EntityUID(uid), err
	}
}

func (g *Generator) schemaSetMenu(t schema.SetType, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	set := g.schemaTyped(t, d, o)
	prods := []production[ast.IsNode]{
		prod(6, func() (ast.IsNode, error) {
			elems, err := g.loop(g.schemaTyped(t.Element, d, o), o)
			if err != nil {
				return nil, err
			}
			return ast.Set(elems...), nil
		}),
		prod(2, ite(g.typed(abac.Bool(), d, o), set, set)),
		prod(1, func() (ast.IsNode, error) {
			st, _ := abac.FromSchemaType(g.index.Normalize(t))
			return g.extCallForType(st, d, o)()
		}),
	}
	return append(prods, g.schemaAccessProductions(t, 4, 3, 3, d, o)...)
}

func (g *Generator) schemaRecordMenu(t schema.RecordType, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	record := g.schemaTyped(t, d, o)
	prods := []production[ast.IsNode]{
		prod(2, func() (ast.IsNode, error) {
			fields, err := overlayRecord(g, t, o,
				func() (types.String, ast.IsNode, error) {
					at, err := g.arbitraryType(o)
					if err != nil {
						return "", nil, err
					}
					name, err := g.arbitraryString(o)
					if err != nil {
						return "", nil, err
					}
					v, err := g.generateExprForType(at, d, o)
					return name, v, err
				},
				func(ft schema.IsType) (ast.IsNode, error) { return g.generateExprForSchemaType(ft, d, o) },
			)
			if err != nil {
				return nil, err
			}
			return ast.Record(fields), nil
		}),
		// Stands in for reusing context when its type fits; never does.
		prod(14, func() (ast.IsNode, error) { return nil, errors.Wrap(ErrTooDeep, "record from context") }),
		prod(2, ite(g.typed(abac.Bool(), d, o), record, record)),
		prod(1, g.extCallForType(abac.Record(), d, o)),
	}
	return append(prods, g.schemaAccessProductions(t, 4, 3, 3, d, o)...)
}

func (g *Generator) schemaEntityMenu(t schema.EntityTypeRef, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	entity := g.schemaTyped(t, d, o)
	prods := []production[ast.IsNode]{
		prod(13, g.uidOfType(t.Name, o)),
		prod(6, leaf(ast.Variable(ast.Principal))),
		prod(6, leaf(ast.Variable(ast.Action))),
		prod(6, leaf(ast.Variable(ast.Resource))),
		prod(2, ite(g.typed(abac.Bool(), d, o), entity, entity)),
		prod(1, g.extCallForType(abac.Entity(), d, o)),
	}
	return append(prods, g.schemaAccessProductions(t, 6, 5, 5, d, o)...)
}

// overlayRecord builds the fields of a record of type t. For an open record
// it first draws additional fields, then overlays the declared ones: required
// and colliding fields always, optional ones half the time.
func overlayRecord[T any](g *Generator, t schema.RecordType, o arbitrary.Oracle, additional func() (types.String, T, error), field func(schema.IsType) (T, error)) (map[types.String]T, error) {
	fields := map[types.String]T{}
	if t.AdditionalAttributes {
		err := o.Loop(0, g.settings.MaxWidth, func() error {
			name, v, err := additional()
			if err != nil {
				return err
			}
			fields[name] = v
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	for _, name := range t.Names() {
		attr := t.Attributes[name]
		_, collided := fields[name]
		include := !attr.Optional || collided
		if !include {
			var err error
			if include, err = o.Ratio(1, 2); err != nil {
				return nil, err
			}
		}
		if !include {
			continue
		}
		v, err := field(attr.Type)
		if err != nil {
			return nil, err
		}
		fields[name] = v
	}
	return fields, nil
}
