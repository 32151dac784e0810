// Package arbitrary provides the decision oracle that drives generation.
//
// An Unstructured wraps a byte slice and turns it into a sequence of
// randomized-looking decisions. The same bytes always yield the same
// decisions, so any generated artifact can be reproduced, and shrunk by
// shrinking its input bytes.
package arbitrary

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

var (
	// ErrEmptyChoose is returned when asked to choose from an empty set of candidates.
	ErrEmptyChoose = errors.New("cannot choose from an empty set")
	// ErrNotEnoughData is returned when a fixed-size draw needs more bytes than remain.
	ErrNotEnoughData = errors.New("not enough data")
	// ErrIncorrectFormat is returned when drawn bytes cannot represent the requested value.
	ErrIncorrectFormat = errors.New("incorrect format")
)

// Oracle is the narrow interface the generators consume.
type Oracle interface {
	// Len reports how many bytes of decision supply remain.
	Len() int
	IntInRange(lo, hi int) (int, error)
	ChooseIndex(n int) (int, error)
	Ratio(num, den int) (bool, error)
	Bool() (bool, error)
	Uint8() (uint8, error)
	Uint32() (uint32, error)
	Int64() (int64, error)
	Text() (string, error)
	Bytes(n int) ([]byte, error)
	Loop(minIter, maxIter int, body func() error) error
}

// Unstructured is a cursor over a finite byte supply. It is not safe for
// concurrent use.
type Unstructured struct {
	data []byte
}

var _ Oracle = (*Unstructured)(nil)

// New returns an Unstructured that draws from data.
func New(data []byte) *Unstructured {
	return &Unstructured{data: data}
}

func (u *Unstructured) Len() int { return len(u.data) }

// IsEmpty reports whether the byte supply is exhausted.
func (u *Unstructured) IsEmpty() bool { return len(u.data) == 0 }

// Bytes consumes exactly n bytes.
func (u *Unstructured) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrIncorrectFormat, "negative byte count %d", n)
	}
	if len(u.data) < n {
		return nil, ErrNotEnoughData
	}
	out := u.data[:n]
	u.data = u.data[n:]
	return out, nil
}

// fill consumes up to len(buf) bytes into buf, zero-filling the rest.
func (u *Unstructured) fill(buf []byte) {
	n := copy(buf, u.data)
	u.data = u.data[n:]
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
}

func (u *Unstructured) Uint8() (uint8, error) {
	var b [1]byte
	u.fill(b[:])
	return b[0], nil
}

func (u *Unstructured) Uint32() (uint32, error) {
	var b [4]byte
	u.fill(b[:])
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (u *Unstructured) Int64() (int64, error) {
	var b [8]byte
	u.fill(b[:])
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Bool draws a single byte and returns its low bit. An exhausted supply yields false.
func (u *Unstructured) Bool() (bool, error) {
	b, err := u.Uint8()
	if err != nil {
		return false, err
	}
	return b&1 == 1, nil
}

// IntInRange returns an integer in the inclusive range [lo, hi]. Only as
// many bytes as the width of the range requires are consumed, and an
// exhausted supply yields lo.
func (u *Unstructured) IntInRange(lo, hi int) (int, error) {
	if lo > hi {
		return 0, errors.Wrapf(ErrIncorrectFormat, "empty range [%d, %d]", lo, hi)
	}
	if lo == hi {
		return lo, nil
	}
	span := uint64(hi) - uint64(lo)

	var drawn uint64
	var consumed uint
	for consumed < 8 && (span>>(consumed*8)) > 0 && len(u.data) > 0 {
		drawn = drawn<<8 | uint64(u.data[0])
		u.data = u.data[1:]
		consumed++
	}

	offset := drawn
	if span != ^uint64(0) {
		offset = drawn % (span + 1)
	}
	return int(uint64(lo) + offset), nil
}

// ChooseIndex returns an index in [0, n).
func (u *Unstructured) ChooseIndex(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyChoose
	}
	return u.IntInRange(0, n-1)
}

// Ratio returns true with probability num/den.
func (u *Unstructured) Ratio(num, den int) (bool, error) {
	if den <= 0 || num < 0 || num > den {
		return false, errors.Wrapf(ErrIncorrectFormat, "invalid ratio %d/%d", num, den)
	}
	x, err := u.IntInRange(1, den)
	if err != nil {
		return false, err
	}
	return x <= num, nil
}

// byteSize draws a length for a variable-sized value. The length prefix is
// taken from the end of the supply so that the content bytes stay at the
// front, which keeps shrinking well-behaved.
func (u *Unstructured) byteSize() (int, error) {
	switch n := len(u.data); {
	case n == 0:
		return 0, nil
	case n == 1:
		u.data = u.data[:0]
		return 0, nil
	default:
		width := 4
		switch {
		case n <= 1<<8+1:
			width = 1
		case n <= 1<<16+2:
			width = 2
		}
		rest := n - width
		tail := New(u.data[rest:])
		u.data = u.data[:rest]
		return tail.IntInRange(0, rest)
	}
}

// Text draws a length and returns the longest valid UTF-8 prefix of that
// many bytes.
func (u *Unstructured) Text() (string, error) {
	size, err := u.byteSize()
	if err != nil {
		return "", err
	}
	raw, err := u.Bytes(size)
	if err != nil {
		return "", err
	}
	valid := 0
	for valid < len(raw) {
		r, w := utf8.DecodeRune(raw[valid:])
		if r == utf8.RuneError && w <= 1 {
			break
		}
		valid += w
	}
	return string(raw[:valid]), nil
}

// Loop runs body minIter times and then keeps going while drawn bools are
// true, for at most maxIter iterations in total.
func (u *Unstructured) Loop(minIter, maxIter int, body func() error) error {
	if minIter < 0 || maxIter < minIter {
		return errors.Wrapf(ErrIncorrectFormat, "invalid loop bounds [%d, %d]", minIter, maxIter)
	}
	for i := 0; i < minIter; i++ {
		if err := body(); err != nil {
			return err
		}
	}
	for i := minIter; i < maxIter; i++ {
		keepGoing, err := u.Bool()
		if err != nil || !keepGoing {
			break
		}
		if err := body(); err != nil {
			return err
		}
	}
	return nil
}
