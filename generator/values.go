package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/schema"
)

// GenerateValueForType returns a concrete value of type t. Sets and records
// are empty once maxDepth is spent.
func (g *Generator) GenerateValueForType(t abac.Type, maxDepth int, o arbitrary.Oracle) (types.Value, error) {
	v, err := g.generateValueForType(t, maxDepth, o)
	return v, g.observe("value_for_type", err)
}

// GenerateValueForSchemaType returns a concrete value conforming to the
// schema type t.
func (g *Generator) GenerateValueForSchemaType(t schema.IsType, maxDepth int, o arbitrary.Oracle) (types.Value, error) {
	v, err := g.generateValueForSchemaType(t, maxDepth, o)
	return v, g.observe("value_for_schema_type", err)
}

func (g *Generator) generateValueForType(t abac.Type, maxDepth int, o arbitrary.Oracle) (types.Value, error) {
	switch t.Kind {
	case abac.KindBool:
		b, err := o.Bool()
		return types.Boolean(b), err
	case abac.KindLong:
		return g.constants.ArbitraryInt(o)
	case abac.KindString:
		return g.constants.ArbitraryString(o)
	case abac.KindEntity:
		return g.generateUID(o)
	case abac.KindSet:
		if maxDepth <= 0 {
			return types.NewSet(), nil
		}
		elem, err := g.elementType(t, o)
		if err != nil {
			return nil, err
		}
		var elems []types.Value
		err = o.Loop(0, g.settings.MaxWidth, func() error {
			v, err := g.generateValueForType(elem, maxDepth-1, o)
			if err != nil {
				return err
			}
			elems = append(elems, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return types.NewSet(elems...), nil
	case abac.KindRecord:
		if maxDepth <= 0 {
			return types.NewRecord(nil), nil
		}
		fields := types.RecordMap{}
		err := o.Loop(0, g.settings.MaxWidth, func() error {
			attr, err := g.index.ArbitraryAttr(o)
			if err != nil {
				return err
			}
			v, err := g.generateValueForSchemaType(attr.Type, maxDepth-1, o)
			if err != nil {
				return err
			}
			fields[attr.Name] = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return types.NewRecord(fields), nil
	default:
		return g.extensionValue(t, o)
	}
}

// elementType is the element type of set type t, drawn when t leaves it
// unconstrained.
func (g *Generator) elementType(t abac.Type, o arbitrary.Oracle) (abac.Type, error) {
	if t.Element != nil {
		return *t.Element, nil
	}
	return g.arbitraryType(o)
}

// extensionValue parses a pool literal of extension type t.
func (g *Generator) extensionValue(t abac.Type, o arbitrary.Oracle) (types.Value, error) {
	if !g.settings.EnableExtensions {
		return nil, errExtensionsDisabled
	}
	s, err := g.extensionLiteral(t, o)
	if err != nil {
		return nil, err
	}
	var v types.Value
	switch t.Kind {
	case abac.KindIPAddr:
		v, err = types.ParseIPAddr(s)
	case abac.KindDecimal:
		v, err = types.ParseDecimal(s)
	case abac.KindDatetime:
		v, err = types.ParseDatetime(s)
	case abac.KindDuration:
		v, err = types.ParseDuration(s)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s constant %q", t, s)
	}
	return v, nil
}

func (g *Generator) generateValueForSchemaType(t schema.IsType, maxDepth int, o arbitrary.Oracle) (types.Value, error) {
	switch rt := g.schema.Resolve(t).(type) {
	case schema.SetType:
		if maxDepth <= 0 {
			return types.NewSet(), nil
		}
		var elems []types.Value
		err := o.Loop(0, g.settings.MaxWidth, func() error {
			v, err := g.generateValueForSchemaType(rt.Element, maxDepth-1, o)
			if err != nil {
				return err
			}
			elems = append(elems, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return types.NewSet(elems...), nil
	case schema.RecordType:
		if maxDepth <= 0 {
			return nil, errors.Wrap(ErrTooDeep, "record value")
		}
		fields, err := overlayRecord(g, rt, o,
			func() (types.String, types.Value, error) {
				attr, err := g.index.ArbitraryAttr(o)
				if err != nil {
					return "", nil, err
				}
				v, err := g.generateValueForSchemaType(attr.Type, maxDepth-1, o)
				return attr.Name, v, err
			},
			func(ft schema.IsType) (types.Value, error) { return g.generateValueForSchemaType(ft, maxDepth-1, o) },
		)
		if err != nil {
			return nil, err
		}
		return types.NewRecord(types.RecordMap(fields)), nil
	case schema.EntityTypeRef:
		return g.arbitraryUIDWithType(rt.Name, o)
	default:
		st, ok := abac.FromSchemaType(rt)
		if !ok {
			return nil, errors.AssertionFailedf("unresolved schema type %T", rt)
		}
		return g.generateValueForType(st, maxDepth, o)
	}
}
