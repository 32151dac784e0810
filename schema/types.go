package schema

import (
	"maps"
	"slices"

	"github.com/cedar-policy/cedar-go/types"
)

// IsType is the interface implemented by all schema type expressions.
//
//sumtype:decl
type IsType interface {
	isType()
}

// StringType represents the Cedar String type.
type StringType struct{}

func (StringType) isType() { _ = 0 }

// String returns a StringType.
func String() StringType { return StringType{} }

// LongType represents the Cedar Long type.
type LongType struct{}

func (LongType) isType() { _ = 0 }

// Long returns a LongType.
func Long() LongType { return LongType{} }

// BoolType represents the Cedar Bool type.
type BoolType struct{}

func (BoolType) isType() { _ = 0 }

// Bool returns a BoolType.
func Bool() BoolType { return BoolType{} }

// ExtensionType represents a Cedar extension type (ipaddr, decimal, datetime, duration).
type ExtensionType struct {
	Name types.Ident
}

func (ExtensionType) isType() { _ = 0 }

func IPAddr() ExtensionType   { return ExtensionType{Name: "ipaddr"} }
func Decimal() ExtensionType  { return ExtensionType{Name: "decimal"} }
func Datetime() ExtensionType { return ExtensionType{Name: "datetime"} }
func Duration() ExtensionType { return ExtensionType{Name: "duration"} }

// SetType represents a Cedar Set type with an element type.
type SetType struct {
	Element IsType
}

func (SetType) isType() { _ = 0 }

// Set returns a SetType with the given element type.
func Set(element IsType) SetType {
	return SetType{Element: element}
}

type Attribute struct {
	Type     IsType
	Optional bool
}

type Attributes map[types.String]Attribute

// RecordType represents a Cedar Record type. When AdditionalAttributes is
// set, values of the type may carry attributes beyond the declared ones.
type RecordType struct {
	Attributes           Attributes
	AdditionalAttributes bool
}

func (RecordType) isType() { _ = 0 }

// Record returns a closed RecordType with the given attributes.
func Record(attrs Attributes) RecordType {
	return RecordType{Attributes: attrs}
}

// OpenRecord returns a RecordType that admits undeclared attributes.
func OpenRecord(attrs Attributes) RecordType {
	return RecordType{Attributes: attrs, AdditionalAttributes: true}
}

// Names returns the declared attribute names in sorted order.
func (r RecordType) Names() []types.String {
	return slices.Sorted(maps.Keys(r.Attributes))
}

// EntityTypeRef represents a reference to an entity type.
type EntityTypeRef struct {
	Name types.EntityType
}

func (EntityTypeRef) isType() { _ = 0 }

// EntityType creates an EntityTypeRef from an entity type name.
func EntityType(name types.EntityType) EntityTypeRef {
	return EntityTypeRef{Name: name}
}

// TypeRef represents a reference to a common type by name.
type TypeRef struct {
	Name types.Path
}

func (TypeRef) isType() { _ = 0 }

// Ref creates a TypeRef from a path name.
func Ref(name types.Path) TypeRef {
	return TypeRef{Name: name}
}

// EntityOrCommonRef is a name that refers to a common type if one is
// declared, and otherwise to a builtin or entity type.
type EntityOrCommonRef struct {
	Name types.Path
}

func (EntityOrCommonRef) isType() { _ = 0 }

// EntityOrCommon creates an EntityOrCommonRef.
func EntityOrCommon(name types.Path) EntityOrCommonRef {
	return EntityOrCommonRef{Name: name}
}

// Equal reports whether two resolved types are structurally identical.
// References are compared by name.
func Equal(a, b IsType) bool {
	switch a := a.(type) {
	case StringType, LongType, BoolType:
		return a == b
	case ExtensionType:
		bb, ok := b.(ExtensionType)
		return ok && a.Name == bb.Name
	case SetType:
		bb, ok := b.(SetType)
		return ok && Equal(a.Element, bb.Element)
	case RecordType:
		bb, ok := b.(RecordType)
		if !ok || a.AdditionalAttributes != bb.AdditionalAttributes || len(a.Attributes) != len(bb.Attributes) {
			return false
		}
		for k, av := range a.Attributes {
			bv, ok := bb.Attributes[k]
			if !ok || av.Optional != bv.Optional || !Equal(av.Type, bv.Type) {
				return false
			}
		}
		return true
	case EntityTypeRef:
		bb, ok := b.(EntityTypeRef)
		return ok && a.Name == bb.Name
	case TypeRef:
		bb, ok := b.(TypeRef)
		return ok && a.Name == bb.Name
	case EntityOrCommonRef:
		bb, ok := b.(EntityOrCommonRef)
		return ok && a.Name == bb.Name
	default:
		return false
	}
}
