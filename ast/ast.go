package ast

import (
	"slices"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"
)

// Variable names.
const (
	Principal types.String = "principal"
	Action    types.String = "action"
	Resource  types.String = "resource"
	Context   types.String = "context"
)

func Value(v types.Value) NodeValue { return NodeValue{Value: v} }

func Boolean(b bool) NodeValue { return Value(types.Boolean(b)) }

func Long(i int64) NodeValue { return Value(types.Long(i)) }

func String(s string) NodeValue { return Value(types.String(s)) }

func EntityUID(uid types.EntityUID) NodeValue { return Value(uid) }

func Variable(name types.String) NodeTypeVariable { return NodeTypeVariable{Name: name} }

func Not(arg IsNode) NodeTypeNot { return NodeTypeNot{UnaryNode{Arg: arg}} }

func Negate(arg IsNode) NodeTypeNegate { return NodeTypeNegate{UnaryNode{Arg: arg}} }

func IsEmpty(arg IsNode) NodeTypeIsEmpty { return NodeTypeIsEmpty{UnaryNode{Arg: arg}} }

func Equal(l, r IsNode) NodeTypeEquals { return NodeTypeEquals{BinaryNode{Left: l, Right: r}} }

func LessThan(l, r IsNode) NodeTypeLessThan {
	return NodeTypeLessThan{BinaryNode{Left: l, Right: r}}
}

func LessThanOrEqual(l, r IsNode) NodeTypeLessThanOrEqual {
	return NodeTypeLessThanOrEqual{BinaryNode{Left: l, Right: r}}
}

func GreaterThan(l, r IsNode) NodeTypeGreaterThan {
	return NodeTypeGreaterThan{BinaryNode{Left: l, Right: r}}
}

func GreaterThanOrEqual(l, r IsNode) NodeTypeGreaterThanOrEqual {
	return NodeTypeGreaterThanOrEqual{BinaryNode{Left: l, Right: r}}
}

func Add(l, r IsNode) NodeTypeAdd { return NodeTypeAdd{BinaryNode{Left: l, Right: r}} }

func Sub(l, r IsNode) NodeTypeSub { return NodeTypeSub{BinaryNode{Left: l, Right: r}} }

func Mult(l, r IsNode) NodeTypeMult { return NodeTypeMult{BinaryNode{Left: l, Right: r}} }

func And(l, r IsNode) NodeTypeAnd { return NodeTypeAnd{BinaryNode{Left: l, Right: r}} }

func Or(l, r IsNode) NodeTypeOr { return NodeTypeOr{BinaryNode{Left: l, Right: r}} }

func In(l, r IsNode) NodeTypeIn { return NodeTypeIn{BinaryNode{Left: l, Right: r}} }

// Contains builds set.contains(element).
func Contains(set, element IsNode) NodeTypeContains {
	return NodeTypeContains{BinaryNode{Left: set, Right: element}}
}

func ContainsAll(l, r IsNode) NodeTypeContainsAll {
	return NodeTypeContainsAll{BinaryNode{Left: l, Right: r}}
}

func ContainsAny(l, r IsNode) NodeTypeContainsAny {
	return NodeTypeContainsAny{BinaryNode{Left: l, Right: r}}
}

func GetTag(entity, key IsNode) NodeTypeGetTag {
	return NodeTypeGetTag{BinaryNode{Left: entity, Right: key}}
}

func HasTag(entity, key IsNode) NodeTypeHasTag {
	return NodeTypeHasTag{BinaryNode{Left: entity, Right: key}}
}

func GetAttr(arg IsNode, attr types.String) NodeTypeAccess {
	return NodeTypeAccess{StrOpNode{Arg: arg, Value: attr}}
}

func Has(arg IsNode, attr types.String) NodeTypeHas {
	return NodeTypeHas{StrOpNode{Arg: arg, Value: attr}}
}

func IfThenElse(cond, then, els IsNode) NodeTypeIfThenElse {
	return NodeTypeIfThenElse{If: cond, Then: then, Else: els}
}

func Like(arg IsNode, pattern types.Pattern) NodeTypeLike {
	return NodeTypeLike{Arg: arg, Value: pattern}
}

func Is(arg IsNode, entityType types.EntityType) NodeTypeIs {
	return NodeTypeIs{Left: arg, EntityType: entityType}
}

func Set(elements ...IsNode) NodeTypeSet { return NodeTypeSet{Elements: elements} }

// Record builds a record literal from a map. A map cannot hold duplicate
// keys, so this never fails.
func Record(m map[types.String]IsNode) NodeTypeRecord {
	keys := make([]types.String, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	elems := make([]RecordElementNode, len(keys))
	for i, k := range keys {
		elems[i] = RecordElementNode{Key: k, Value: m[k]}
	}
	return NodeTypeRecord{Elements: elems}
}

// RecordFromPairs builds a record literal from explicit pairs. A duplicate
// key is a programming error and panics with an assertion failure.
func RecordFromPairs(pairs ...RecordElementNode) NodeTypeRecord {
	m := make(map[types.String]IsNode, len(pairs))
	for _, p := range pairs {
		if _, dup := m[p.Key]; dup {
			panic(errors.AssertionFailedf("duplicate key %q in record literal", string(p.Key)))
		}
		m[p.Key] = p.Value
	}
	return Record(m)
}

func ExtensionCall(name types.Path, args ...IsNode) NodeTypeExtensionCall {
	return NodeTypeExtensionCall{Name: name, Args: args}
}

func Unknown(name types.String, typ StaticType) NodeTypeUnknown {
	return NodeTypeUnknown{Name: name, Type: typ}
}

// Keys returns the keys of a record literal in order.
func (r NodeTypeRecord) Keys() []types.String {
	keys := make([]types.String, len(r.Elements))
	for i, e := range r.Elements {
		keys[i] = e.Key
	}
	return keys
}
