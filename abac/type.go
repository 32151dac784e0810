// Package abac holds the collaborators the generators consult besides the
// schema: the flat semantic type universe, pools of interesting constants,
// the extension function registry and the unknown-value pool.
package abac

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/schema"
)

// Kind discriminates the semantic types.
type Kind uint8

const (
	KindBool Kind = iota
	KindLong
	KindString
	KindEntity
	KindSet
	KindRecord
	KindIPAddr
	KindDecimal
	KindDatetime
	KindDuration
)

var kindNames = [...]string{
	KindBool:     "Bool",
	KindLong:     "Long",
	KindString:   "String",
	KindEntity:   "Entity",
	KindSet:      "Set",
	KindRecord:   "Record",
	KindIPAddr:   "ipaddr",
	KindDecimal:  "decimal",
	KindDatetime: "datetime",
	KindDuration: "duration",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// maxSetNesting bounds how deeply ArbitraryType nests set element types.
const maxSetNesting = 3

// Type is a semantic type. Element is only meaningful for KindSet, where a
// nil Element is a set of unconstrained element type.
type Type struct {
	Kind    Kind
	Element *Type
}

func Bool() Type     { return Type{Kind: KindBool} }
func Long() Type     { return Type{Kind: KindLong} }
func String() Type   { return Type{Kind: KindString} }
func Entity() Type   { return Type{Kind: KindEntity} }
func Record() Type   { return Type{Kind: KindRecord} }
func IPAddr() Type   { return Type{Kind: KindIPAddr} }
func Decimal() Type  { return Type{Kind: KindDecimal} }
func Datetime() Type { return Type{Kind: KindDatetime} }
func Duration() Type { return Type{Kind: KindDuration} }

// Set returns the type of sets of elem.
func Set(elem Type) Type { return Type{Kind: KindSet, Element: &elem} }

// AnySet returns the type of sets of any element type.
func AnySet() Type { return Type{Kind: KindSet} }

// IsExtension reports whether t is one of the extension types.
func (t Type) IsExtension() bool {
	switch t.Kind {
	case KindIPAddr, KindDecimal, KindDatetime, KindDuration:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	if t.Kind == KindSet && t.Element != nil {
		return "Set<" + t.Element.String() + ">"
	}
	return t.Kind.String()
}

// ParseType is the inverse of Type.String. Kind names match case
// insensitively and a bare "Set" is a set of unconstrained element type.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if inner, ok := strings.CutPrefix(s, "Set<"); ok {
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return Type{}, errors.Newf("unterminated set type %q", s)
		}
		elem, err := ParseType(inner)
		if err != nil {
			return Type{}, err
		}
		return Set(elem), nil
	}
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Type{Kind: Kind(k)}, nil
		}
	}
	return Type{}, errors.Newf("unknown type %q", s)
}

// Equal reports whether t and u denote the same type.
func (t Type) Equal(u Type) bool {
	if t.Kind != u.Kind {
		return false
	}
	if t.Kind != KindSet || (t.Element == nil && u.Element == nil) {
		return true
	}
	if t.Element == nil || u.Element == nil {
		return false
	}
	return t.Element.Equal(*u.Element)
}

// StaticType is the annotation an unknown of type t carries. Entity types
// have no annotation.
func (t Type) StaticType() ast.StaticType {
	switch t.Kind {
	case KindBool:
		return ast.StaticTypeBool
	case KindLong:
		return ast.StaticTypeLong
	case KindString:
		return ast.StaticTypeString
	case KindSet:
		return ast.StaticTypeSet
	case KindRecord:
		return ast.StaticTypeRecord
	case KindIPAddr:
		return ast.StaticTypeIPAddr
	case KindDecimal:
		return ast.StaticTypeDecimal
	case KindDatetime:
		return ast.StaticTypeDatetime
	case KindDuration:
		return ast.StaticTypeDuration
	default:
		return ast.StaticTypeNone
	}
}

// FromSchemaType maps a resolved schema type to its semantic type.
func FromSchemaType(t schema.IsType) (Type, bool) {
	switch v := t.(type) {
	case schema.BoolType:
		return Bool(), true
	case schema.LongType:
		return Long(), true
	case schema.StringType:
		return String(), true
	case schema.EntityTypeRef:
		return Entity(), true
	case schema.RecordType:
		return Record(), true
	case schema.SetType:
		elem, ok := FromSchemaType(v.Element)
		if !ok {
			return AnySet(), true
		}
		return Set(elem), true
	case schema.ExtensionType:
		return extensionType(string(v.Name))
	default:
		return Type{}, false
	}
}

func extensionType(name string) (Type, bool) {
	switch name {
	case "ipaddr":
		return IPAddr(), true
	case "decimal":
		return Decimal(), true
	case "datetime":
		return Datetime(), true
	case "duration":
		return Duration(), true
	default:
		return Type{}, false
	}
}

// Matches reports whether values of the resolved schema type s have
// semantic type t. An unconstrained set matches any set type.
func (t Type) Matches(s schema.IsType) bool {
	got, ok := FromSchemaType(s)
	if !ok || got.Kind != t.Kind {
		return false
	}
	if t.Kind != KindSet || t.Element == nil {
		return true
	}
	sv, ok := s.(schema.SetType)
	return ok && got.Element != nil && t.Element.Matches(sv.Element)
}

// ArbitraryType draws any semantic type, extension types included.
func ArbitraryType(o arbitrary.Oracle) (Type, error) {
	return arbitraryType(o, KindDuration, maxSetNesting)
}

// ArbitraryNonExtensionType draws a semantic type that is not, and does not
// contain, an extension type.
func ArbitraryNonExtensionType(o arbitrary.Oracle) (Type, error) {
	return arbitraryType(o, KindRecord, maxSetNesting)
}

func arbitraryType(o arbitrary.Oracle, last Kind, nesting int) (Type, error) {
	k, err := o.IntInRange(0, int(last))
	if err != nil {
		return Type{}, err
	}
	t := Type{Kind: Kind(k)}
	if t.Kind != KindSet || nesting == 0 {
		return t, nil
	}
	constrained, err := o.Bool()
	if err != nil || !constrained {
		return t, err
	}
	elem, err := arbitraryType(o, last, nesting-1)
	if err != nil {
		return Type{}, err
	}
	t.Element = &elem
	return t, nil
}
