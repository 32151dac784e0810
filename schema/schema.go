// Package schema holds the structural Cedar schema the generators are
// directed by: one active namespace of entity types, enums, actions and
// common types, plus the queries the generators ask of it.
package schema

import (
	"strings"

	"github.com/cedar-policy/cedar-go/types"
)

type Entities map[types.EntityType]Entity
type Enums map[types.EntityType]Enum
type Actions map[types.String]Action
type CommonTypes map[types.Ident]IsType

// Schema is a single-namespace schema. Declaration names are stored
// unqualified; Qualify prefixes the active namespace.
type Schema struct {
	Namespace   types.Path
	Entities    Entities
	Enums       Enums
	Actions     Actions
	CommonTypes CommonTypes
}

type Entity struct {
	MemberOf []types.EntityType
	Shape    RecordType
	Tags     IsType
}

type Enum struct {
	Values []types.String
}

// Action defines what principals can do to resources.
// If AppliesTo is nil, the action never applies.
type Action struct {
	MemberOf  []types.String
	AppliesTo *AppliesTo
}

type AppliesTo struct {
	Principals []types.EntityType
	Resources  []types.EntityType
	Context    IsType
}

const separator = "::"

// Qualify prefixes name with the active namespace. Names that are already
// qualified, and all names in the empty namespace, are returned as is.
func (s *Schema) Qualify(name types.EntityType) types.EntityType {
	if s.Namespace == "" || strings.Contains(string(name), separator) {
		return name
	}
	return types.EntityType(string(s.Namespace) + separator + string(name))
}

// local strips the active namespace from name.
func (s *Schema) local(name string) string {
	if s.Namespace == "" {
		return name
	}
	return strings.TrimPrefix(name, string(s.Namespace)+separator)
}

// ActionType is the qualified entity type of action UIDs.
func (s *Schema) ActionType() types.EntityType {
	return s.Qualify("Action")
}

// ActionUID returns the UID of the action with the given id.
func (s *Schema) ActionUID(id types.String) types.EntityUID {
	return types.NewEntityUID(s.ActionType(), id)
}

// LookupEntity returns the declaration of a standard entity type. The name
// may be qualified or not.
func (s *Schema) LookupEntity(name types.EntityType) (Entity, bool) {
	e, ok := s.Entities[types.EntityType(s.local(string(name)))]
	return e, ok
}

// LookupEnum returns the declaration of an enumerated entity type.
func (s *Schema) LookupEnum(name types.EntityType) (Enum, bool) {
	e, ok := s.Enums[types.EntityType(s.local(string(name)))]
	return e, ok
}

// IsDeclaredEntity reports whether name is a standard or enumerated entity type.
func (s *Schema) IsDeclaredEntity(name types.EntityType) bool {
	if _, ok := s.LookupEntity(name); ok {
		return true
	}
	_, ok := s.LookupEnum(name)
	return ok
}

// AttrNames returns the declared attribute names of an entity type, sorted.
// Enumerated entity types have none.
func (s *Schema) AttrNames(name types.EntityType) []types.String {
	e, ok := s.LookupEntity(name)
	if !ok {
		return nil
	}
	return e.Shape.Names()
}

// EnumChoices returns the declared values of an enumerated entity type, or
// nil if name is not an enum.
func (s *Schema) EnumChoices(name types.EntityType) []types.String {
	e, ok := s.LookupEnum(name)
	if !ok {
		return nil
	}
	return e.Values
}
