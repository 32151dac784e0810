package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/schema"
)

// GenerateAttrValueForType returns a literal-only expression of type t, the
// form entity attribute data takes. Extension values need a unit of depth
// for their constructor call.
func (g *Generator) GenerateAttrValueForType(t abac.Type, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	n, err := g.generateAttrValueForType(t, maxDepth, o)
	return n, g.observe("attr_value_for_type", err)
}

// GenerateAttrValueForSchemaType returns a literal-only expression conforming
// to the schema type t.
func (g *Generator) GenerateAttrValueForSchemaType(t schema.IsType, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	n, err := g.generateAttrValueForSchemaType(t, maxDepth, o)
	return n, g.observe("attr_value_for_schema_type", err)
}

func (g *Generator) generateAttrValueForType(t abac.Type, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	switch t.Kind {
	case abac.KindBool, abac.KindLong, abac.KindString:
		return typedRules[t.Kind].terminal(g, t, o)
	case abac.KindEntity:
		uid, err := g.generateUID(o)
		return ast.EntityUID(uid), err
	case abac.KindSet:
		if maxDepth <= 0 {
			return ast.Set(), nil
		}
		elem, err := g.elementType(t, o)
		if err != nil {
			return nil, err
		}
		elems, err := g.loop(func() (ast.IsNode, error) { return g.generateAttrValueForType(elem, maxDepth-1, o) }, o)
		if err != nil {
			return nil, err
		}
		return ast.Set(elems...), nil
	case abac.KindRecord:
		if maxDepth <= 0 {
			return ast.Record(nil), nil
		}
		fields := map[types.String]ast.IsNode{}
		err := o.Loop(0, g.settings.MaxWidth, func() error {
			attr, err := g.index.ArbitraryAttr(o)
			if err != nil {
				return err
			}
			v, err := g.generateAttrValueForSchemaType(attr.Type, maxDepth-1, o)
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
	default:
		if !g.settings.EnableExtensions {
			return nil, errExtensionsDisabled
		}
		if maxDepth <= 0 {
			return nil, errors.Wrapf(ErrTooDeep, "%s value", t)
		}
		return g.extConstructorCall(t, o)
	}
}

func (g *Generator) generateAttrValueForSchemaType(t schema.IsType, maxDepth int, o arbitrary.Oracle) (ast.IsNode, error) {
	switch rt := g.schema.Resolve(t).(type) {
	case schema.SetType:
		if maxDepth <= 0 {
			return ast.Set(), nil
		}
		elems, err := g.loop(func() (ast.IsNode, error) { return g.generateAttrValueForSchemaType(rt.Element, maxDepth-1, o) }, o)
		if err != nil {
			return nil, err
		}
		return ast.Set(elems...), nil
	case schema.RecordType:
		if maxDepth <= 0 {
			return nil, errors.Wrap(ErrTooDeep, "record value")
		}
		fields, err := overlayRecord(g, rt, o,
			func() (types.String, ast.IsNode, error) {
				attr, err := g.index.ArbitraryAttr(o)
				if err != nil {
					return "", nil, err
				}
				v, err := g.generateAttrValueForSchemaType(attr.Type, maxDepth-1, o)
				return attr.Name, v, err
			},
			func(ft schema.IsType) (ast.IsNode, error) { return g.generateAttrValueForSchemaType(ft, maxDepth-1, o) },
		)
		if err != nil {
			return nil, err
		}
		return ast.Record(fields), nil
	case schema.EntityTypeRef:
		return g.uidOfType(rt.Name, o)()
	default:
		st, ok := abac.FromSchemaType(rt)
		if !ok {
			return nil, errors.AssertionFailedf("unresolved schema type %T", rt)
		}
		return g.generateAttrValueForType(st, maxDepth, o)
	}
}
