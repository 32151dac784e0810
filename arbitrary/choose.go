package arbitrary

import "github.com/cockroachdb/errors"

// Choose returns one of items, chosen uniformly.
func Choose[T any](o Oracle, items []T) (T, error) {
	var zero T
	i, err := o.ChooseIndex(len(items))
	if err != nil {
		return zero, err
	}
	return items[i], nil
}

// Weighted draws an index into weights with probability proportional to
// the weight at that index. Zero weights are never chosen.
func Weighted(o Oracle, weights ...uint) (int, error) {
	var total uint
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return 0, errors.Wrap(ErrEmptyChoose, "all weights are zero")
	}
	x, err := o.IntInRange(0, int(total)-1)
	if err != nil {
		return 0, err
	}
	for i, w := range weights {
		if uint(x) < w {
			return i, nil
		}
		x -= int(w)
	}
	return 0, errors.AssertionFailedf("weighted draw %d escaped total %d", x, total)
}
