// Package ast contains the expression tree produced by the generators.
//
// Nodes are immutable values built bottom-up with the constructor functions
// in this package. The node vocabulary follows the Cedar expression grammar,
// plus an unknown placeholder used to model partially evaluated inputs.
package ast

import (
	"github.com/cedar-policy/cedar-go/types"
)

// IsNode is the interface implemented by every expression node.
//
//sumtype:decl
type IsNode interface {
	isNode()
}

// NodeValue is a literal: a bool, long, string or entity UID.
type NodeValue struct {
	Value types.Value
}

// NodeTypeVariable is one of the four request variables.
type NodeTypeVariable struct {
	Name types.String
}

// UnaryNode is embedded by operators with a single operand.
type UnaryNode struct {
	Arg IsNode
}

// BinaryNode is embedded by operators with two operands.
type BinaryNode struct {
	Left, Right IsNode
}

// StrOpNode is embedded by operators that take an operand and an attribute name.
type StrOpNode struct {
	Arg   IsNode
	Value types.String
}

type NodeTypeNot struct{ UnaryNode }
type NodeTypeNegate struct{ UnaryNode }
type NodeTypeIsEmpty struct{ UnaryNode }

type NodeTypeEquals struct{ BinaryNode }
type NodeTypeLessThan struct{ BinaryNode }
type NodeTypeLessThanOrEqual struct{ BinaryNode }
type NodeTypeGreaterThan struct{ BinaryNode }
type NodeTypeGreaterThanOrEqual struct{ BinaryNode }
type NodeTypeAdd struct{ BinaryNode }
type NodeTypeSub struct{ BinaryNode }
type NodeTypeMult struct{ BinaryNode }
type NodeTypeAnd struct{ BinaryNode }
type NodeTypeOr struct{ BinaryNode }
type NodeTypeIn struct{ BinaryNode }
type NodeTypeContains struct{ BinaryNode }
type NodeTypeContainsAll struct{ BinaryNode }
type NodeTypeContainsAny struct{ BinaryNode }

// NodeTypeGetTag reads the tag named by Right from the entity Left.
type NodeTypeGetTag struct{ BinaryNode }

// NodeTypeHasTag tests whether the entity Left carries the tag named by Right.
type NodeTypeHasTag struct{ BinaryNode }

type NodeTypeAccess struct{ StrOpNode }
type NodeTypeHas struct{ StrOpNode }

type NodeTypeIfThenElse struct {
	If, Then, Else IsNode
}

type NodeTypeLike struct {
	Arg   IsNode
	Value types.Pattern
}

type NodeTypeIs struct {
	Left       IsNode
	EntityType types.EntityType
}

type NodeTypeSet struct {
	Elements []IsNode
}

// RecordElementNode is a single key/value pair of a record literal.
type RecordElementNode struct {
	Key   types.String
	Value IsNode
}

// NodeTypeRecord is a record literal. Keys are unique and kept in sorted order.
type NodeTypeRecord struct {
	Elements []RecordElementNode
}

type NodeTypeExtensionCall struct {
	Name types.Path
	Args []IsNode
}

// StaticType is the optional type annotation carried by an unknown.
// The zero value means untyped.
type StaticType string

const (
	StaticTypeNone     StaticType = ""
	StaticTypeBool     StaticType = "Bool"
	StaticTypeLong     StaticType = "Long"
	StaticTypeString   StaticType = "String"
	StaticTypeSet      StaticType = "Set"
	StaticTypeRecord   StaticType = "Record"
	StaticTypeIPAddr   StaticType = "ipaddr"
	StaticTypeDecimal  StaticType = "decimal"
	StaticTypeDatetime StaticType = "datetime"
	StaticTypeDuration StaticType = "duration"
)

// NodeTypeUnknown is a named placeholder for a value that is not known yet.
type NodeTypeUnknown struct {
	Name types.String
	Type StaticType
}

func (NodeValue) isNode()                  { _ = 0 }
func (NodeTypeVariable) isNode()           { _ = 0 }
func (NodeTypeNot) isNode()                { _ = 0 }
func (NodeTypeNegate) isNode()             { _ = 0 }
func (NodeTypeIsEmpty) isNode()            { _ = 0 }
func (NodeTypeEquals) isNode()             { _ = 0 }
func (NodeTypeLessThan) isNode()           { _ = 0 }
func (NodeTypeLessThanOrEqual) isNode()    { _ = 0 }
func (NodeTypeGreaterThan) isNode()        { _ = 0 }
func (NodeTypeGreaterThanOrEqual) isNode() { _ = 0 }
func (NodeTypeAdd) isNode()                { _ = 0 }
func (NodeTypeSub) isNode()                { _ = 0 }
func (NodeTypeMult) isNode()               { _ = 0 }
func (NodeTypeAnd) isNode()                { _ = 0 }
func (NodeTypeOr) isNode()                 { _ = 0 }
func (NodeTypeIn) isNode()                 { _ = 0 }
func (NodeTypeContains) isNode()           { _ = 0 }
func (NodeTypeContainsAll) isNode()        { _ = 0 }
func (NodeTypeContainsAny) isNode()        { _ = 0 }
func (NodeTypeGetTag) isNode()             { _ = 0 }
func (NodeTypeHasTag) isNode()             { _ = 0 }
func (NodeTypeAccess) isNode()             { _ = 0 }
func (NodeTypeHas) isNode()                { _ = 0 }
func (NodeTypeIfThenElse) isNode()         { _ = 0 }
func (NodeTypeLike) isNode()               { _ = 0 }
func (NodeTypeIs) isNode()                 { _ = 0 }
func (NodeTypeSet) isNode()                { _ = 0 }
func (NodeTypeRecord) isNode()             { _ = 0 }
func (NodeTypeExtensionCall) isNode()      { _ = 0 }
func (NodeTypeUnknown) isNode()            { _ = 0 }
