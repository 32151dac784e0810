package ast_test

import (
	"testing"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strongdm/cedar-go-generators/ast"
)

func TestMarshalCedar(t *testing.T) {
	t.Parallel()
	user := types.NewEntityUID("User", "alice")
	tests := []struct {
		name string
		in   ast.IsNode
		want string
	}{
		{"bool", ast.Boolean(true), "true"},
		{"long", ast.Long(42), "42"},
		{"string", ast.String("hi"), `"hi"`},
		{"entity", ast.EntityUID(user), `User::"alice"`},
		{"variable", ast.Variable(ast.Principal), "principal"},
		{"not", ast.Not(ast.Boolean(false)), "!false"},
		{"negate literal", ast.Negate(ast.Long(-3)), "-(-3)"},
		{"equals", ast.Equal(ast.Long(1), ast.Long(2)), "1 == 2"},
		{"left assoc add", ast.Add(ast.Add(ast.Long(1), ast.Long(2)), ast.Long(3)), "1 + 2 + 3"},
		{"right nested sub", ast.Sub(ast.Long(1), ast.Sub(ast.Long(2), ast.Long(3))), "1 - (2 - 3)"},
		{"mult binds tighter", ast.Mult(ast.Add(ast.Long(1), ast.Long(2)), ast.Long(3)), "(1 + 2) * 3"},
		{"relation not associative", ast.Equal(ast.Equal(ast.Long(1), ast.Long(1)), ast.Boolean(true)), "(1 == 1) == true"},
		{"and in or", ast.Or(ast.And(ast.Boolean(true), ast.Boolean(false)), ast.Boolean(true)), "true && false || true"},
		{"or in and", ast.And(ast.Or(ast.Boolean(true), ast.Boolean(false)), ast.Boolean(true)), "(true || false) && true"},
		{"ite in binary", ast.Add(ast.IfThenElse(ast.Boolean(true), ast.Long(1), ast.Long(2)), ast.Long(3)), "(if true then 1 else 2) + 3"},
		{"in", ast.In(ast.Variable(ast.Principal), ast.EntityUID(user)), `principal in User::"alice"`},
		{"contains", ast.Contains(ast.Set(ast.Long(1)), ast.Long(1)), "[1].contains(1)"},
		{"containsAll", ast.ContainsAll(ast.Set(), ast.Set()), "[].containsAll([])"},
		{"isEmpty on sum", ast.IsEmpty(ast.Add(ast.Long(1), ast.Long(2))), "(1 + 2).isEmpty()"},
		{"getTag", ast.GetTag(ast.Variable(ast.Resource), ast.String("k")), `resource.getTag("k")`},
		{"hasTag", ast.HasTag(ast.Variable(ast.Resource), ast.String("k")), `resource.hasTag("k")`},
		{"access ident", ast.GetAttr(ast.Variable(ast.Context), "ip"), "context.ip"},
		{"access quoted", ast.GetAttr(ast.Variable(ast.Context), "a b"), `context["a b"]`},
		{"access reserved", ast.GetAttr(ast.Variable(ast.Context), "if"), `context["if"]`},
		{"has ident", ast.Has(ast.Variable(ast.Principal), "name"), "principal has name"},
		{"has quoted", ast.Has(ast.Variable(ast.Principal), "0x"), `principal has "0x"`},
		{"like", ast.Like(ast.String("abc"), types.NewPattern("a", types.Wildcard{})), `"abc" like "a*"`},
		{"is", ast.Is(ast.Variable(ast.Resource), "Photo"), "resource is Photo"},
		{"record", ast.Record(map[types.String]ast.IsNode{"b": ast.Long(2), "a": ast.Long(1)}), `{"a": 1, "b": 2}`},
		{"constructor", ast.ExtensionCall("ip", ast.String("10.0.0.1")), `ip("10.0.0.1")`},
		{"method", ast.ExtensionCall("isLoopback", ast.ExtensionCall("ip", ast.String("127.0.0.1"))), `ip("127.0.0.1").isLoopback()`},
		{"method with args", ast.ExtensionCall("lessThan", ast.ExtensionCall("decimal", ast.String("1.0")), ast.ExtensionCall("decimal", ast.String("2.0"))), `decimal("1.0").lessThan(decimal("2.0"))`},
		{"method without receiver", ast.ExtensionCall("toDays"), "toDays()"},
		{"unknown function", ast.ExtensionCall("foo", ast.Long(1), ast.Long(2)), "foo(1, 2)"},
		{"unknown", ast.Unknown("unknown0", ast.StaticTypeLong), `unknown("unknown0")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ast.Render(tt.in))
		})
	}
}

func TestRecordFromPairs(t *testing.T) {
	t.Parallel()
	r := ast.RecordFromPairs(
		ast.RecordElementNode{Key: "z", Value: ast.Long(1)},
		ast.RecordElementNode{Key: "a", Value: ast.Long(2)},
	)
	assert.Equal(t, []types.String{"a", "z"}, r.Keys())

	defer func() {
		p := recover()
		require.NotNil(t, p)
		err, ok := p.(error)
		require.True(t, ok)
		assert.True(t, errors.HasAssertionFailure(err))
	}()
	ast.RecordFromPairs(
		ast.RecordElementNode{Key: "k", Value: ast.Long(1)},
		ast.RecordElementNode{Key: "k", Value: ast.Long(2)},
	)
}

func TestWalk(t *testing.T) {
	t.Parallel()
	n := ast.IfThenElse(
		ast.Equal(ast.Variable(ast.Principal), ast.EntityUID(types.NewEntityUID("User", "a"))),
		ast.Set(ast.Long(1), ast.Long(2)),
		ast.Set(),
	)
	assert.Equal(t, 8, ast.Count(n))
	assert.Equal(t, 2, ast.Depth(n))
	assert.Equal(t, 0, ast.Depth(ast.Long(1)))

	var visited int
	ast.Walk(n, func(c ast.IsNode) bool {
		visited++
		_, isSet := c.(ast.NodeTypeSet)
		return !isSet
	})
	assert.Equal(t, 6, visited, "children of sets are skipped")
}

func TestIsLiteral(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   ast.IsNode
		want bool
	}{
		{"value", ast.Long(1), true},
		{"set of values", ast.Set(ast.Long(1), ast.String("x")), true},
		{"record of sets", ast.Record(map[types.String]ast.IsNode{"a": ast.Set()}), true},
		{"constructor", ast.ExtensionCall("decimal", ast.String("1.5")), true},
		{"variable", ast.Variable(ast.Context), false},
		{"set with variable", ast.Set(ast.Variable(ast.Action)), false},
		{"operator", ast.Add(ast.Long(1), ast.Long(2)), false},
		{"unknown", ast.Unknown("unknown0", ast.StaticTypeNone), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ast.IsLiteral(tt.in))
		})
	}
}
