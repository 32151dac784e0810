package generator

import (
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
)

// gen lazily produces an expression.
type gen = func() (ast.IsNode, error)

// production is one weighted alternative of a generation rule.
type production[T any] struct {
	weight uint
	fn     func() (T, error)
}

func prod[T any](weight uint, fn func() (T, error)) production[T] {
	return production[T]{weight: weight, fn: fn}
}

// choose draws one production with probability proportional to its weight
// and runs it. The other productions are never evaluated.
func choose[T any](o arbitrary.Oracle, prods ...production[T]) (T, error) {
	weights := make([]uint, len(prods))
	for i, p := range prods {
		weights[i] = p.weight
	}
	i, err := arbitrary.Weighted(o, weights...)
	if err != nil {
		var zero T
		return zero, err
	}
	return prods[i].fn()
}

// uniform runs one of fns, chosen with equal probability.
func uniform[T any](o arbitrary.Oracle, fns ...func() (T, error)) (T, error) {
	i, err := o.ChooseIndex(len(fns))
	if err != nil {
		var zero T
		return zero, errors.Wrap(err, "uniform choice")
	}
	return fns[i]()
}

func unary[N ast.IsNode](build func(ast.IsNode) N, arg gen) gen {
	return func() (ast.IsNode, error) {
		a, err := arg()
		if err != nil {
			return nil, err
		}
		return build(a), nil
	}
}

func binary[N ast.IsNode](build func(l, r ast.IsNode) N, left, right gen) gen {
	return func() (ast.IsNode, error) {
		l, err := left()
		if err != nil {
			return nil, err
		}
		r, err := right()
		if err != nil {
			return nil, err
		}
		return build(l, r), nil
	}
}

func ite(cond, then, els gen) gen {
	return func() (ast.IsNode, error) {
		c, err := cond()
		if err != nil {
			return nil, err
		}
		t, err := then()
		if err != nil {
			return nil, err
		}
		e, err := els()
		if err != nil {
			return nil, err
		}
		return ast.IfThenElse(c, t, e), nil
	}
}

func leaf[N ast.IsNode](n N) gen {
	return func() (ast.IsNode, error) { return n, nil }
}
