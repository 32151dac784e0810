package generator

import (
	"github.com/strongdm/cedar-go-generators/arbitrary"
)

// PopulateHierarchy fills the attributes and tags of every entity in the
// generator's hierarchy with values of their declared types. Required
// attributes are always set, optional ones half the time. Existing data is
// overwritten.
func (g *Generator) PopulateHierarchy(o arbitrary.Oracle) error {
	return g.observe("populate_hierarchy", g.populateHierarchy(o))
}

func (g *Generator) populateHierarchy(o arbitrary.Oracle) error {
	if g.hierarchy == nil {
		return ErrNoHierarchy
	}
	for _, e := range g.hierarchy.Entities() {
		decl, ok := g.schema.LookupEntity(e.UID.Type)
		if !ok {
			continue
		}
		for _, name := range decl.Shape.Names() {
			attr := decl.Shape.Attributes[name]
			include := !attr.Optional
			if !include {
				var err error
				if include, err = o.Ratio(1, 2); err != nil {
					return err
				}
			}
			if !include {
				continue
			}
			v, err := g.generateValueForSchemaType(attr.Type, g.settings.MaxDepth, o)
			if err != nil {
				return err
			}
			e.Attrs[name] = v
		}
		if decl.Tags == nil {
			continue
		}
		err := o.Loop(0, g.settings.MaxWidth, func() error {
			key, err := g.constants.ArbitraryString(o)
			if err != nil {
				return err
			}
			v, err := g.generateValueForSchemaType(decl.Tags, g.settings.MaxDepth, o)
			if err != nil {
				return err
			}
			e.Tags[key] = v
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
