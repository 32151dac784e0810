package schema

import (
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"
)

const cedarPrefix = "__cedar::"

var builtinTypes = map[string]IsType{
	"Long":     LongType{},
	"String":   StringType{},
	"Bool":     BoolType{},
	"Boolean":  BoolType{},
	"ipaddr":   IPAddr(),
	"decimal":  Decimal(),
	"datetime": Datetime(),
	"duration": Duration(),
}

func builtin(name types.Path) (IsType, bool) {
	t, ok := builtinTypes[strings.TrimPrefix(string(name), cedarPrefix)]
	return t, ok
}

// LookupCommonType returns the definition of a common type. The name may be
// qualified with the active namespace.
func (s *Schema) LookupCommonType(name types.Path) (IsType, bool) {
	t, ok := s.CommonTypes[types.Ident(s.local(string(name)))]
	return t, ok
}

// Resolve follows common type references until it reaches a structural
// type. Entity type names come back qualified. Nested types are left as
// they are. An undefined common type is a schema defect and panics with an
// assertion failure; call Validate first.
func (s *Schema) Resolve(t IsType) IsType {
	for range len(s.CommonTypes) + 1 {
		switch v := t.(type) {
		case TypeRef:
			if next, ok := s.LookupCommonType(v.Name); ok {
				t = next
				continue
			}
			if b, ok := builtin(v.Name); ok {
				return b
			}
			panic(errors.AssertionFailedf("undefined common type %q", string(v.Name)))
		case EntityOrCommonRef:
			if next, ok := s.LookupCommonType(v.Name); ok {
				t = next
				continue
			}
			name := types.EntityType(v.Name)
			if s.IsDeclaredEntity(name) {
				return EntityTypeRef{Name: s.Qualify(name)}
			}
			if b, ok := builtin(v.Name); ok {
				return b
			}
			return EntityTypeRef{Name: s.Qualify(name)}
		case EntityTypeRef:
			return EntityTypeRef{Name: s.Qualify(v.Name)}
		default:
			return t
		}
	}
	panic(errors.AssertionFailedf("common type references do not terminate"))
}

// normalize resolves t and every type nested in it.
func (s *Schema) normalize(t IsType) IsType {
	switch v := s.Resolve(t).(type) {
	case SetType:
		return SetType{Element: s.normalize(v.Element)}
	case RecordType:
		attrs := make(Attributes, len(v.Attributes))
		for k, a := range v.Attributes {
			attrs[k] = Attribute{Type: s.normalize(a.Type), Optional: a.Optional}
		}
		return RecordType{Attributes: attrs, AdditionalAttributes: v.AdditionalAttributes}
	default:
		return v
	}
}

// Validate checks that every reference in the schema resolves and that
// common types are acyclic. Generators assume a schema that validates.
func (s *Schema) Validate() error {
	if _, err := s.topoSortCommonTypes(); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(s.CommonTypes)) {
		if err := s.checkType(s.CommonTypes[name]); err != nil {
			return errors.Wrapf(err, "common type %s", name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(s.Entities)) {
		e := s.Entities[name]
		for _, parent := range e.MemberOf {
			if !s.IsDeclaredEntity(parent) {
				return errors.Wrapf(&UndefinedTypeError{Name: string(parent), Context: "in memberOfTypes"}, "entity %s", name)
			}
		}
		if err := s.checkType(e.Shape); err != nil {
			return errors.Wrapf(err, "entity %s shape", name)
		}
		if e.Tags != nil {
			if err := s.checkType(e.Tags); err != nil {
				return errors.Wrapf(err, "entity %s tags", name)
			}
		}
	}
	for _, name := range slices.Sorted(maps.Keys(s.Actions)) {
		if err := s.checkAction(s.Actions[name]); err != nil {
			return errors.Wrapf(err, "action %s", name)
		}
	}
	return nil
}

func (s *Schema) checkAction(a Action) error {
	for _, parent := range a.MemberOf {
		if _, ok := s.Actions[parent]; !ok {
			return &UndefinedTypeError{Name: string(parent), Context: "in action group"}
		}
	}
	if a.AppliesTo == nil {
		return nil
	}
	for _, et := range slices.Concat(a.AppliesTo.Principals, a.AppliesTo.Resources) {
		if !s.IsDeclaredEntity(et) {
			return &UndefinedTypeError{Name: string(et), Context: "in appliesTo"}
		}
	}
	if a.AppliesTo.Context == nil {
		return nil
	}
	if err := s.checkType(a.AppliesTo.Context); err != nil {
		return errors.Wrap(err, "context")
	}
	if _, ok := s.Resolve(a.AppliesTo.Context).(RecordType); !ok {
		return errors.Wrap(ErrUnknownType, "context must resolve to a record type")
	}
	return nil
}

// checkType reports the first reference in t that does not resolve.
func (s *Schema) checkType(t IsType) error {
	var err error
	walkType(t, func(t IsType) {
		if err != nil {
			return
		}
		switch v := t.(type) {
		case TypeRef:
			if _, ok := s.LookupCommonType(v.Name); ok {
				return
			}
			if _, ok := builtin(v.Name); !ok {
				err = &UndefinedTypeError{Name: string(v.Name)}
			}
		case EntityOrCommonRef:
			if _, ok := s.LookupCommonType(v.Name); ok {
				return
			}
			if _, ok := builtin(v.Name); ok {
				return
			}
			if !s.IsDeclaredEntity(types.EntityType(v.Name)) {
				err = &UndefinedTypeError{Name: string(v.Name)}
			}
		case EntityTypeRef:
			if !s.IsDeclaredEntity(v.Name) {
				err = &UndefinedTypeError{Name: string(v.Name), Context: "as entity type"}
			}
		}
	})
	return err
}

func walkType(t IsType, fn func(IsType)) {
	fn(t)
	switch v := t.(type) {
	case SetType:
		walkType(v.Element, fn)
	case RecordType:
		for _, name := range v.Names() {
			walkType(v.Attributes[name].Type, fn)
		}
	}
}

// commonDeps returns the common types t refers to directly or through
// nested set and record types.
func (s *Schema) commonDeps(t IsType) []types.Ident {
	var deps []types.Ident
	walkType(t, func(t IsType) {
		var name types.Path
		switch v := t.(type) {
		case TypeRef:
			name = v.Name
		case EntityOrCommonRef:
			name = v.Name
		default:
			return
		}
		local := types.Ident(s.local(string(name)))
		if _, ok := s.CommonTypes[local]; ok {
			deps = append(deps, local)
		}
	})
	return deps
}

// topoSortCommonTypes performs Kahn's algorithm on the common types and
// returns them in dependency order. Returns a CycleError if a cycle exists.
func (s *Schema) topoSortCommonTypes() ([]types.Ident, error) {
	inDegree := make(map[types.Ident]int, len(s.CommonTypes))
	dependents := make(map[types.Ident][]types.Ident)
	for name := range s.CommonTypes {
		inDegree[name] = 0
	}
	for name, t := range s.CommonTypes {
		for _, dep := range s.commonDeps(t) {
			dependents[dep] = append(dependents[dep], name)
			inDegree[name]++
		}
	}

	var queue []types.Ident
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	slices.Sort(queue)

	var order []types.Ident
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)
		for _, dep := range dependents[curr] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
				slices.Sort(queue)
			}
		}
	}

	if len(order) < len(s.CommonTypes) {
		var cycle []string
		for name, deg := range inDegree {
			if deg > 0 {
				cycle = append(cycle, string(name))
			}
		}
		sort.Strings(cycle)
		return nil, &CycleError{Path: cycle}
	}
	return order, nil
}
