package ast

import (
	"bytes"
	"fmt"

	"github.com/cedar-policy/cedar-go/types"
)

// Binding strength of each node when rendered, lowest first.
const (
	precIf = iota
	precOr
	precAnd
	precRelation
	precAdd
	precMult
	precUnary
	precMember
	precPrimary
)

// methodStyle lists the extension functions that Cedar only accepts in
// receiver.method(args) form.
var methodStyle = map[types.Path]bool{
	"lessThan":           true,
	"lessThanOrEqual":    true,
	"greaterThan":        true,
	"greaterThanOrEqual": true,
	"isIpv4":             true,
	"isIpv6":             true,
	"isLoopback":         true,
	"isMulticast":        true,
	"isInRange":          true,
	"toDate":             true,
	"toTime":             true,
	"offset":             true,
	"durationSince":      true,
	"toDays":             true,
	"toHours":            true,
	"toMinutes":          true,
	"toSeconds":          true,
	"toMilliseconds":     true,
}

var reserved = map[string]bool{
	"true": true, "false": true, "if": true, "then": true, "else": true,
	"in": true, "like": true, "has": true, "is": true, "__cedar": true,
}

// MarshalCedar renders n as Cedar expression text.
func MarshalCedar(n IsNode) []byte {
	var buf bytes.Buffer
	marshal(&buf, n)
	return buf.Bytes()
}

// Render is MarshalCedar as a string.
func Render(n IsNode) string {
	return string(MarshalCedar(n))
}

func precedence(n IsNode) int {
	switch v := n.(type) {
	case NodeTypeIfThenElse:
		return precIf
	case NodeTypeOr:
		return precOr
	case NodeTypeAnd:
		return precAnd
	case NodeTypeEquals, NodeTypeLessThan, NodeTypeLessThanOrEqual, NodeTypeGreaterThan,
		NodeTypeGreaterThanOrEqual, NodeTypeIn, NodeTypeHas, NodeTypeLike, NodeTypeIs:
		return precRelation
	case NodeTypeAdd, NodeTypeSub:
		return precAdd
	case NodeTypeMult:
		return precMult
	case NodeTypeNot, NodeTypeNegate:
		return precUnary
	case NodeValue:
		if l, ok := v.Value.(types.Long); ok && l < 0 {
			return precUnary
		}
		return precPrimary
	case NodeTypeExtensionCall:
		if methodStyle[v.Name] && len(v.Args) > 0 {
			return precMember
		}
		return precPrimary
	case NodeTypeAccess, NodeTypeContains, NodeTypeContainsAll, NodeTypeContainsAny,
		NodeTypeIsEmpty, NodeTypeGetTag, NodeTypeHasTag:
		return precMember
	default:
		return precPrimary
	}
}

// child renders c, parenthesized unless it binds at least as tightly as min.
func child(buf *bytes.Buffer, c IsNode, min int) {
	if precedence(c) < min {
		buf.WriteByte('(')
		marshal(buf, c)
		buf.WriteByte(')')
		return
	}
	marshal(buf, c)
}

func infix(buf *bytes.Buffer, l, r IsNode, op string, prec int, assoc bool) {
	left := prec + 1
	if assoc {
		left = prec
	}
	child(buf, l, left)
	buf.WriteString(op)
	child(buf, r, prec+1)
}

func method(buf *bytes.Buffer, recv IsNode, name string, args ...IsNode) {
	child(buf, recv, precMember)
	buf.WriteByte('.')
	buf.WriteString(name)
	buf.WriteByte('(')
	list(buf, args)
	buf.WriteByte(')')
}

func list(buf *bytes.Buffer, nodes []IsNode) {
	for i, a := range nodes {
		if i > 0 {
			buf.WriteString(", ")
		}
		marshal(buf, a)
	}
}

// IsIdent reports whether s can be written as a bare identifier.
func IsIdent(s string) bool {
	if s == "" || reserved[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func marshal(buf *bytes.Buffer, n IsNode) {
	switch v := n.(type) {
	case NodeValue:
		buf.Write(v.Value.MarshalCedar())
	case NodeTypeVariable:
		buf.WriteString(string(v.Name))
	case NodeTypeNot:
		buf.WriteByte('!')
		child(buf, v.Arg, precUnary)
	case NodeTypeNegate:
		buf.WriteByte('-')
		if _, lit := v.Arg.(NodeValue); lit {
			buf.WriteByte('(')
			marshal(buf, v.Arg)
			buf.WriteByte(')')
			return
		}
		child(buf, v.Arg, precUnary)
	case NodeTypeIsEmpty:
		method(buf, v.Arg, "isEmpty")
	case NodeTypeEquals:
		infix(buf, v.Left, v.Right, " == ", precRelation, false)
	case NodeTypeLessThan:
		infix(buf, v.Left, v.Right, " < ", precRelation, false)
	case NodeTypeLessThanOrEqual:
		infix(buf, v.Left, v.Right, " <= ", precRelation, false)
	case NodeTypeGreaterThan:
		infix(buf, v.Left, v.Right, " > ", precRelation, false)
	case NodeTypeGreaterThanOrEqual:
		infix(buf, v.Left, v.Right, " >= ", precRelation, false)
	case NodeTypeIn:
		infix(buf, v.Left, v.Right, " in ", precRelation, false)
	case NodeTypeAdd:
		infix(buf, v.Left, v.Right, " + ", precAdd, true)
	case NodeTypeSub:
		infix(buf, v.Left, v.Right, " - ", precAdd, true)
	case NodeTypeMult:
		infix(buf, v.Left, v.Right, " * ", precMult, true)
	case NodeTypeAnd:
		infix(buf, v.Left, v.Right, " && ", precAnd, true)
	case NodeTypeOr:
		infix(buf, v.Left, v.Right, " || ", precOr, true)
	case NodeTypeContains:
		method(buf, v.Left, "contains", v.Right)
	case NodeTypeContainsAll:
		method(buf, v.Left, "containsAll", v.Right)
	case NodeTypeContainsAny:
		method(buf, v.Left, "containsAny", v.Right)
	case NodeTypeGetTag:
		method(buf, v.Left, "getTag", v.Right)
	case NodeTypeHasTag:
		method(buf, v.Left, "hasTag", v.Right)
	case NodeTypeAccess:
		child(buf, v.Arg, precMember)
		if IsIdent(string(v.Value)) {
			buf.WriteByte('.')
			buf.WriteString(string(v.Value))
			return
		}
		buf.WriteByte('[')
		buf.Write(v.Value.MarshalCedar())
		buf.WriteByte(']')
	case NodeTypeHas:
		child(buf, v.Arg, precRelation+1)
		buf.WriteString(" has ")
		if IsIdent(string(v.Value)) {
			buf.WriteString(string(v.Value))
			return
		}
		buf.Write(v.Value.MarshalCedar())
	case NodeTypeLike:
		child(buf, v.Arg, precRelation+1)
		buf.WriteString(" like ")
		buf.Write(v.Value.MarshalCedar())
	case NodeTypeIs:
		child(buf, v.Left, precRelation+1)
		buf.WriteString(" is ")
		buf.WriteString(string(v.EntityType))
	case NodeTypeIfThenElse:
		buf.WriteString("if ")
		marshal(buf, v.If)
		buf.WriteString(" then ")
		marshal(buf, v.Then)
		buf.WriteString(" else ")
		marshal(buf, v.Else)
	case NodeTypeSet:
		buf.WriteByte('[')
		list(buf, v.Elements)
		buf.WriteByte(']')
	case NodeTypeRecord:
		buf.WriteByte('{')
		for i, e := range v.Elements {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.Write(e.Key.MarshalCedar())
			buf.WriteString(": ")
			marshal(buf, e.Value)
		}
		buf.WriteByte('}')
	case NodeTypeExtensionCall:
		if methodStyle[v.Name] && len(v.Args) > 0 {
			method(buf, v.Args[0], string(v.Name), v.Args[1:]...)
			return
		}
		buf.WriteString(string(v.Name))
		buf.WriteByte('(')
		list(buf, v.Args)
		buf.WriteByte(')')
	case NodeTypeUnknown:
		buf.WriteString("unknown(")
		buf.Write(v.Name.MarshalCedar())
		buf.WriteByte(')')
	default:
		panic(fmt.Sprintf("unknown node type %T", n))
	}
}
