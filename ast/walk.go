package ast

// Children returns the direct sub-expressions of n, in source order.
func Children(n IsNode) []IsNode {
	switch v := n.(type) {
	case NodeTypeNot:
		return []IsNode{v.Arg}
	case NodeTypeNegate:
		return []IsNode{v.Arg}
	case NodeTypeIsEmpty:
		return []IsNode{v.Arg}
	case NodeTypeEquals:
		return []IsNode{v.Left, v.Right}
	case NodeTypeLessThan:
		return []IsNode{v.Left, v.Right}
	case NodeTypeLessThanOrEqual:
		return []IsNode{v.Left, v.Right}
	case NodeTypeGreaterThan:
		return []IsNode{v.Left, v.Right}
	case NodeTypeGreaterThanOrEqual:
		return []IsNode{v.Left, v.Right}
	case NodeTypeAdd:
		return []IsNode{v.Left, v.Right}
	case NodeTypeSub:
		return []IsNode{v.Left, v.Right}
	case NodeTypeMult:
		return []IsNode{v.Left, v.Right}
	case NodeTypeAnd:
		return []IsNode{v.Left, v.Right}
	case NodeTypeOr:
		return []IsNode{v.Left, v.Right}
	case NodeTypeIn:
		return []IsNode{v.Left, v.Right}
	case NodeTypeContains:
		return []IsNode{v.Left, v.Right}
	case NodeTypeContainsAll:
		return []IsNode{v.Left, v.Right}
	case NodeTypeContainsAny:
		return []IsNode{v.Left, v.Right}
	case NodeTypeGetTag:
		return []IsNode{v.Left, v.Right}
	case NodeTypeHasTag:
		return []IsNode{v.Left, v.Right}
	case NodeTypeAccess:
		return []IsNode{v.Arg}
	case NodeTypeHas:
		return []IsNode{v.Arg}
	case NodeTypeIfThenElse:
		return []IsNode{v.If, v.Then, v.Else}
	case NodeTypeLike:
		return []IsNode{v.Arg}
	case NodeTypeIs:
		return []IsNode{v.Left}
	case NodeTypeSet:
		return v.Elements
	case NodeTypeRecord:
		out := make([]IsNode, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = e.Value
		}
		return out
	case NodeTypeExtensionCall:
		return v.Args
	default:
		return nil
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func Walk(n IsNode, fn func(IsNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Depth returns the height of the tree rooted at n; a leaf has depth 0.
func Depth(n IsNode) int {
	var d int
	for _, c := range Children(n) {
		d = max(d, Depth(c)+1)
	}
	return d
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n IsNode) int {
	var c int
	Walk(n, func(IsNode) bool {
		c++
		return true
	})
	return c
}

// IsLiteral reports whether n is constant data: literals, and sets, records
// and extension calls built only from literals.
func IsLiteral(n IsNode) bool {
	switch n.(type) {
	case NodeValue, NodeTypeSet, NodeTypeRecord, NodeTypeExtensionCall:
	default:
		return false
	}
	for _, c := range Children(n) {
		if !IsLiteral(c) {
			return false
		}
	}
	return true
}
