package arbitrary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strongdm/cedar-go-generators/arbitrary"
)

func TestIntInRange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		data   []byte
		lo, hi int
		want   int
		left   int
	}{
		{"single byte", []byte{0x0c}, 0, 9, 2, 0},
		{"two bytes for wide range", []byte{0x01, 0x02, 0xff}, 0, 300, 258, 1},
		{"exhausted yields lo", nil, 5, 10, 5, 0},
		{"degenerate range consumes nothing", []byte{0x07}, 3, 3, 3, 1},
		{"negative bounds", []byte{0x01}, -2, 2, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := arbitrary.New(tt.data)
			got, err := u.IntInRange(tt.lo, tt.hi)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.left, u.Len())
		})
	}

	t.Run("inverted range", func(t *testing.T) {
		t.Parallel()
		_, err := arbitrary.New(nil).IntInRange(2, 1)
		require.ErrorIs(t, err, arbitrary.ErrIncorrectFormat)
	})
}

func TestChooseIndex(t *testing.T) {
	t.Parallel()
	u := arbitrary.New([]byte{7})
	i, err := u.ChooseIndex(3)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = u.ChooseIndex(0)
	require.ErrorIs(t, err, arbitrary.ErrEmptyChoose)

	_, err = arbitrary.Choose(u, []string{})
	require.ErrorIs(t, err, arbitrary.ErrEmptyChoose)
}

func TestRatio(t *testing.T) {
	t.Parallel()
	yes, err := arbitrary.New([]byte{0}).Ratio(1, 2)
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := arbitrary.New([]byte{1}).Ratio(1, 2)
	require.NoError(t, err)
	assert.False(t, no)

	_, err = arbitrary.New(nil).Ratio(3, 2)
	require.ErrorIs(t, err, arbitrary.ErrIncorrectFormat)
}

func TestWeighted(t *testing.T) {
	t.Parallel()
	tests := []struct {
		b    byte
		want int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 0},
	}
	for _, tt := range tests {
		got, err := arbitrary.Weighted(arbitrary.New([]byte{tt.b}), 2, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "byte %d", tt.b)
	}

	_, err := arbitrary.Weighted(arbitrary.New(nil), 0, 0)
	require.ErrorIs(t, err, arbitrary.ErrEmptyChoose)

	i, err := arbitrary.Weighted(arbitrary.New([]byte{0}), 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, i, "zero weights are never chosen")
}

func TestLoop(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		data    []byte
		minIter int
		maxIter int
		want    int
	}{
		{"stops at max", []byte{1, 1, 1, 1, 1}, 0, 3, 3},
		{"stops on false", []byte{1, 0, 1}, 0, 5, 1},
		{"exhausted runs minimum", nil, 2, 5, 2},
		{"minimum then continues", []byte{1}, 1, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var n int
			err := arbitrary.New(tt.data).Loop(tt.minIter, tt.maxIter, func() error {
				n++
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}

	t.Run("body error propagates", func(t *testing.T) {
		t.Parallel()
		err := arbitrary.New([]byte{1}).Loop(0, 2, func() error { return arbitrary.ErrNotEnoughData })
		require.ErrorIs(t, err, arbitrary.ErrNotEnoughData)
	})
}

func TestText(t *testing.T) {
	t.Parallel()
	s, err := arbitrary.New([]byte{'h', 'i', 2}).Text()
	require.NoError(t, err)
	assert.Equal(t, "hi", s)

	s, err = arbitrary.New([]byte{'a', 0xff, 'b', 3}).Text()
	require.NoError(t, err)
	assert.Equal(t, "a", s, "invalid UTF-8 truncates")

	s, err = arbitrary.New(nil).Text()
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestBytes(t *testing.T) {
	t.Parallel()
	u := arbitrary.New([]byte{1, 2, 3})
	b, err := u.Bytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
	_, err = u.Bytes(2)
	require.ErrorIs(t, err, arbitrary.ErrNotEnoughData)
}

func TestDeterminism(t *testing.T) {
	t.Parallel()
	data := []byte{9, 200, 3, 17, 44, 0, 255, 128, 5, 6, 7, 8}
	draw := func() []int {
		u := arbitrary.New(data)
		var out []int
		for u.Len() > 0 {
			i, err := u.IntInRange(0, 1000)
			require.NoError(t, err)
			out = append(out, i)
		}
		return out
	}
	assert.Equal(t, draw(), draw())
}
