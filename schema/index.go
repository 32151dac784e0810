package schema

import (
	"cmp"
	"maps"
	"slices"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
)

// AttrDecl is one declared attribute. EntityType is empty for attributes
// declared on an action context or a nested record.
type AttrDecl struct {
	EntityType types.EntityType
	Name       types.String
	Type       IsType
}

// Index holds the schema facts the generators draw from, computed once.
// All entity type names in an Index are qualified, and all lists are sorted
// so that a given oracle always selects the same element.
type Index struct {
	schema *Schema

	EntityTypes    []types.EntityType
	PrincipalTypes []types.EntityType
	ResourceTypes  []types.EntityType
	ActionIDs      []types.String

	// Attrs is the attribute universe: every attribute of every entity
	// shape, action context and nested record type.
	Attrs []AttrDecl

	entityAttrs []AttrDecl
	tags        map[types.EntityType]IsType
}

// NewIndex builds the index of a validated schema.
func NewIndex(s *Schema) *Index {
	ix := &Index{
		schema: s,
		tags:   make(map[types.EntityType]IsType),
	}
	for _, name := range slices.Sorted(maps.Keys(s.Entities)) {
		ix.EntityTypes = append(ix.EntityTypes, s.Qualify(name))
	}
	for _, name := range slices.Sorted(maps.Keys(s.Enums)) {
		ix.EntityTypes = append(ix.EntityTypes, s.Qualify(name))
	}
	slices.Sort(ix.EntityTypes)

	for _, name := range slices.Sorted(maps.Keys(s.Entities)) {
		e := s.Entities[name]
		qualified := s.Qualify(name)
		for _, attr := range e.Shape.Names() {
			decl := AttrDecl{EntityType: qualified, Name: attr, Type: s.normalize(e.Shape.Attributes[attr].Type)}
			ix.entityAttrs = append(ix.entityAttrs, decl)
			ix.Attrs = append(ix.Attrs, decl)
			ix.addNested(decl.Type)
		}
		if e.Tags != nil {
			ix.tags[qualified] = s.normalize(e.Tags)
		}
	}

	principals := map[types.EntityType]struct{}{}
	resources := map[types.EntityType]struct{}{}
	for _, id := range slices.Sorted(maps.Keys(s.Actions)) {
		ix.ActionIDs = append(ix.ActionIDs, id)
		at := s.Actions[id].AppliesTo
		if at == nil {
			continue
		}
		for _, p := range at.Principals {
			principals[s.Qualify(p)] = struct{}{}
		}
		for _, r := range at.Resources {
			resources[s.Qualify(r)] = struct{}{}
		}
		if at.Context != nil {
			ix.addNested(s.normalize(at.Context))
		}
	}
	ix.PrincipalTypes = slices.Sorted(maps.Keys(principals))
	ix.ResourceTypes = slices.Sorted(maps.Keys(resources))
	if len(ix.PrincipalTypes) == 0 {
		ix.PrincipalTypes = ix.EntityTypes
	}
	if len(ix.ResourceTypes) == 0 {
		ix.ResourceTypes = ix.EntityTypes
	}

	slices.SortStableFunc(ix.Attrs, func(a, b AttrDecl) int {
		return cmp.Or(cmp.Compare(a.EntityType, b.EntityType), cmp.Compare(a.Name, b.Name))
	})
	return ix
}

// addNested adds the attributes of record types nested in t to the universe.
func (ix *Index) addNested(t IsType) {
	walkType(t, func(t IsType) {
		rt, ok := t.(RecordType)
		if !ok {
			return
		}
		for _, name := range rt.Names() {
			ix.Attrs = append(ix.Attrs, AttrDecl{Name: name, Type: rt.Attributes[name].Type})
		}
	})
}

// Schema returns the indexed schema.
func (ix *Index) Schema() *Schema { return ix.schema }

// ArbitraryAttr draws any attribute of the universe.
func (ix *Index) ArbitraryAttr(o arbitrary.Oracle) (AttrDecl, error) {
	a, err := arbitrary.Choose(o, ix.Attrs)
	return a, errors.Wrap(err, "choosing an attribute")
}

// ArbitraryAttrWhere draws an entity attribute whose declared type
// satisfies pred.
func (ix *Index) ArbitraryAttrWhere(pred func(IsType) bool, o arbitrary.Oracle) (AttrDecl, error) {
	var candidates []AttrDecl
	for _, a := range ix.entityAttrs {
		if pred(a.Type) {
			candidates = append(candidates, a)
		}
	}
	a, err := arbitrary.Choose(o, candidates)
	return a, errors.Wrap(err, "choosing an entity attribute")
}

// ArbitraryAttrForSchemaType draws an entity type and the name of one of its
// attributes declared with type target.
func (ix *Index) ArbitraryAttrForSchemaType(target IsType, o arbitrary.Oracle) (types.EntityType, types.String, error) {
	want := ix.schema.normalize(target)
	a, err := ix.ArbitraryAttrWhere(func(t IsType) bool { return Equal(t, want) }, o)
	return a.EntityType, a.Name, err
}

// ArbitraryEntityTypeWithTagWhere draws an entity type whose tag type
// satisfies pred.
func (ix *Index) ArbitraryEntityTypeWithTagWhere(pred func(IsType) bool, o arbitrary.Oracle) (types.EntityType, error) {
	var candidates []types.EntityType
	for _, et := range slices.Sorted(maps.Keys(ix.tags)) {
		if pred(ix.tags[et]) {
			candidates = append(candidates, et)
		}
	}
	et, err := arbitrary.Choose(o, candidates)
	return et, errors.Wrap(err, "choosing a tagged entity type")
}

// ArbitraryEntityTypeWithTagSchemaType draws an entity type whose tags are
// declared with type target.
func (ix *Index) ArbitraryEntityTypeWithTagSchemaType(target IsType, o arbitrary.Oracle) (types.EntityType, error) {
	want := ix.schema.normalize(target)
	return ix.ArbitraryEntityTypeWithTagWhere(func(t IsType) bool { return Equal(t, want) }, o)
}

// TagType returns the resolved tag type of an entity type, if it has tags.
func (ix *Index) TagType(et types.EntityType) (IsType, bool) {
	t, ok := ix.tags[ix.schema.Qualify(et)]
	return t, ok
}

// Normalize resolves t and every type nested in it.
func (ix *Index) Normalize(t IsType) IsType { return ix.schema.normalize(t) }
