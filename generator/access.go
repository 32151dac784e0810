package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/schema"
)

// Attribute and tag access productions. Each comes in three shapes: an
// attribute of a declared entity, an attribute of a freshly synthesized
// record, and an entity tag.

func isSchemaType(want schema.IsType) func(schema.IsType) bool {
	return func(t schema.IsType) bool { return schema.Equal(t, want) }
}

// recordWithAttr is an open record type with one required attribute.
func recordWithAttr(name types.String, t schema.IsType) schema.RecordType {
	return schema.OpenRecord(schema.Attributes{name: {Type: t}})
}

// entityAttr reads an attribute of an entity whose declared type satisfies
// matches.
func (g *Generator) entityAttr(matches func(schema.IsType) bool, d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		a, err := g.index.ArbitraryAttrWhere(matches, o)
		if err != nil {
			return nil, err
		}
		base, err := g.generateExprForSchemaType(schema.EntityType(a.EntityType), d, o)
		if err != nil {
			return nil, err
		}
		return ast.GetAttr(base, a.Name), nil
	}
}

// recordAttr reads a pool-named attribute of a record synthesized to hold
// it. attrType is drawn after the name.
func (g *Generator) recordAttr(attrType func() (schema.IsType, error), d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		name, err := g.constants.ArbitraryString(o)
		if err != nil {
			return nil, err
		}
		t, err := attrType()
		if err != nil {
			return nil, err
		}
		base, err := g.generateExprForSchemaType(recordWithAttr(name, t), d, o)
		if err != nil {
			return nil, err
		}
		return ast.GetAttr(base, name), nil
	}
}

// entityTag reads a tag of an entity whose tag type satisfies matches. The
// key is a string expression.
func (g *Generator) entityTag(matches func(schema.IsType) bool, d int, o arbitrary.Oracle) gen {
	return func() (ast.IsNode, error) {
		et, err := g.index.ArbitraryEntityTypeWithTagWhere(matches, o)
		if err != nil {
			return nil, err
		}
		base, err := g.generateExprForSchemaType(schema.EntityType(et), d, o)
		if err != nil {
			return nil, err
		}
		key, err := g.generateExprForSchemaType(schema.String(), d, o)
		if err != nil {
			return nil, err
		}
		return ast.GetTag(base, key), nil
	}
}

// accessProductions is the usual trio of access productions for a semantic
// type.
func (g *Generator) accessProductions(t abac.Type, entity, record, tag uint, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	return []production[ast.IsNode]{
		prod(entity, g.entityAttr(t.Matches, d, o)),
		prod(record, g.recordAttr(func() (schema.IsType, error) { return g.schemaTypeFor(t, o) }, d, o)),
		prod(tag, g.entityTag(t.Matches, d, o)),
	}
}

// schemaAccessProductions is accessProductions for a schema type. Nested
// references in t are only resolved if an attribute or tag production is
// chosen.
func (g *Generator) schemaAccessProductions(t schema.IsType, entity, record, tag uint, d int, o arbitrary.Oracle) []production[ast.IsNode] {
	normalized := func(access func(func(schema.IsType) bool, int, arbitrary.Oracle) gen) gen {
		return func() (ast.IsNode, error) {
			return access(isSchemaType(g.index.Normalize(t)), d, o)()
		}
	}
	return []production[ast.IsNode]{
		prod(entity, normalized(g.entityAttr)),
		prod(record, g.recordAttr(func() (schema.IsType, error) { return t, nil }, d, o)),
		prod(tag, normalized(g.entityTag)),
	}
}

// schemaTypeFor maps a semantic type to a schema type that can hold it.
// Entity types are drawn from the schema.
func (g *Generator) schemaTypeFor(t abac.Type, o arbitrary.Oracle) (schema.IsType, error) {
	switch t.Kind {
	case abac.KindBool:
		return schema.Bool(), nil
	case abac.KindLong:
		return schema.Long(), nil
	case abac.KindString:
		return schema.String(), nil
	case abac.KindEntity:
		et, err := arbitrary.Choose(o, g.index.EntityTypes)
		if err != nil {
			return nil, errors.Wrap(err, "choosing an entity type")
		}
		return schema.EntityType(et), nil
	case abac.KindRecord:
		return schema.OpenRecord(nil), nil
	case abac.KindIPAddr:
		return schema.IPAddr(), nil
	case abac.KindDecimal:
		return schema.Decimal(), nil
	case abac.KindDatetime:
		return schema.Datetime(), nil
	case abac.KindDuration:
		return schema.Duration(), nil
	case abac.KindSet:
		if t.Element == nil {
			return nil, errors.Wrapf(ErrUnsupportedPosition, "%s", t)
		}
		elem, err := g.schemaTypeFor(*t.Element, o)
		if err != nil {
			return nil, err
		}
		return schema.Set(elem), nil
	default:
		return nil, errors.AssertionFailedf("unknown kind %s", t.Kind)
	}
}
