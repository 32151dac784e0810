package abac

import (
	"math"
	"slices"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
)

// maxDrawnConstants bounds how many oracle-drawn ints and strings
// NewConstantPool adds to the defaults.
const maxDrawnConstants = 8

// ConstantPool holds the literal values the generators draw from.
type ConstantPool struct {
	Ints      []int64
	Strings   []string
	IPs       []string
	Decimals  []string
	Datetimes []string
	Durations []string
}

// DefaultConstantPool returns a pool of fixed edge-case values.
func DefaultConstantPool() *ConstantPool {
	return &ConstantPool{
		Ints:      []int64{0, 1, -1, 2, 42, 1 << 32, math.MaxInt64, math.MinInt64},
		Strings:   []string{"", "a", "A", "foo", "bar", "alice", "hello world", "*", "été"},
		IPs:       []string{"127.0.0.1", "0.0.0.0", "192.168.1.1", "10.0.0.0/8", "224.0.0.1", "::1", "2001:db8::/32", "ff02::1"},
		Decimals:  []string{"0.0", "1.0", "-1.5", "3.1415", "123.4567", "-0.0001"},
		Datetimes: []string{"1970-01-01", "2024-02-29", "2000-01-01T00:00:00Z", "2024-10-15T11:35:00.000+0100", "1999-12-31T23:59:59.999Z"},
		Durations: []string{"0ms", "1ms", "-1ms", "1d", "2h30m", "1d2h3m4s5ms", "-7d"},
	}
}

// NewConstantPool returns the default pool extended with ints and strings
// drawn from o.
func NewConstantPool(o arbitrary.Oracle) (*ConstantPool, error) {
	p := DefaultConstantPool()
	err := o.Loop(0, maxDrawnConstants, func() error {
		i, err := o.Int64()
		if err != nil {
			return err
		}
		p.Ints = append(p.Ints, i)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "drawing int constants")
	}
	err = o.Loop(0, maxDrawnConstants, func() error {
		s, err := o.Text()
		if err != nil {
			return err
		}
		if !slices.Contains(p.Strings, s) {
			p.Strings = append(p.Strings, s)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "drawing string constants")
	}
	return p, nil
}

func choose(o arbitrary.Oracle, pool []string, what string) (string, error) {
	s, err := arbitrary.Choose(o, pool)
	return s, errors.Wrapf(err, "choosing %s constant", what)
}

func (p *ConstantPool) ArbitraryInt(o arbitrary.Oracle) (types.Long, error) {
	i, err := arbitrary.Choose(o, p.Ints)
	return types.Long(i), errors.Wrap(err, "choosing int constant")
}

func (p *ConstantPool) ArbitraryString(o arbitrary.Oracle) (types.String, error) {
	s, err := choose(o, p.Strings, "string")
	return types.String(s), err
}

func (p *ConstantPool) ArbitraryIP(o arbitrary.Oracle) (string, error) {
	return choose(o, p.IPs, "ip")
}

func (p *ConstantPool) ArbitraryDecimal(o arbitrary.Oracle) (string, error) {
	return choose(o, p.Decimals, "decimal")
}

func (p *ConstantPool) ArbitraryDatetime(o arbitrary.Oracle) (string, error) {
	return choose(o, p.Datetimes, "datetime")
}

func (p *ConstantPool) ArbitraryDuration(o arbitrary.Oracle) (string, error) {
	return choose(o, p.Durations, "duration")
}

// ArbitraryPattern draws a like pattern made of pool strings and wildcards.
func (p *ConstantPool) ArbitraryPattern(o arbitrary.Oracle) (types.Pattern, error) {
	var components []any
	err := o.Loop(1, 4, func() error {
		wildcard, err := o.Ratio(1, 3)
		if err != nil {
			return err
		}
		if wildcard {
			components = append(components, types.Wildcard{})
			return nil
		}
		s, err := choose(o, p.Strings, "pattern")
		if err != nil {
			return err
		}
		components = append(components, s)
		return nil
	})
	if err != nil {
		return types.Pattern{}, err
	}
	return types.NewPattern(components...), nil
}
