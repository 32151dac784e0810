package abac_test

import (
	"testing"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/schema"
)

func TestTypeEqual(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b abac.Type
		want bool
	}{
		{"same primitive", abac.Long(), abac.Long(), true},
		{"different primitive", abac.Long(), abac.String(), false},
		{"same set", abac.Set(abac.Bool()), abac.Set(abac.Bool()), true},
		{"different set element", abac.Set(abac.Bool()), abac.Set(abac.Long()), false},
		{"any set vs constrained", abac.AnySet(), abac.Set(abac.Long()), false},
		{"any sets", abac.AnySet(), abac.AnySet(), true},
		{"nested sets", abac.Set(abac.Set(abac.Decimal())), abac.Set(abac.Set(abac.Decimal())), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestTypeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Long", abac.Long().String())
	assert.Equal(t, "Set", abac.AnySet().String())
	assert.Equal(t, "Set<Set<ipaddr>>", abac.Set(abac.Set(abac.IPAddr())).String())
	assert.True(t, abac.Duration().IsExtension())
	assert.False(t, abac.Record().IsExtension())
	assert.Equal(t, ast.StaticTypeNone, abac.Entity().StaticType())
	assert.Equal(t, ast.StaticTypeDecimal, abac.Decimal().StaticType())
}

func TestParseType(t *testing.T) {
	t.Parallel()
	for _, want := range []abac.Type{
		abac.Bool(), abac.Long(), abac.String(), abac.Entity(), abac.Record(), abac.AnySet(),
		abac.Set(abac.Set(abac.IPAddr())), abac.Decimal(), abac.Datetime(), abac.Duration(),
	} {
		got, err := abac.ParseType(want.String())
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%s", want)
	}

	got, err := abac.ParseType(" long ")
	require.NoError(t, err)
	assert.Equal(t, abac.Long(), got)

	for _, bad := range []string{"", "Int", "Set<Long", "Set<Nope>"} {
		_, err := abac.ParseType(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		t    abac.Type
		s    schema.IsType
		want bool
	}{
		{"long", abac.Long(), schema.Long(), true},
		{"long vs string", abac.Long(), schema.String(), false},
		{"entity", abac.Entity(), schema.EntityType("User"), true},
		{"record", abac.Record(), schema.Record(nil), true},
		{"extension", abac.Datetime(), schema.Datetime(), true},
		{"extension mismatch", abac.Datetime(), schema.Duration(), false},
		{"set", abac.Set(abac.Long()), schema.Set(schema.Long()), true},
		{"set element mismatch", abac.Set(abac.Long()), schema.Set(schema.String()), false},
		{"any set", abac.AnySet(), schema.Set(schema.String()), true},
		{"unresolved reference", abac.Long(), schema.Ref("Foo"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.t.Matches(tt.s))
		})
	}
}

func TestArbitraryType(t *testing.T) {
	t.Parallel()

	got, err := abac.ArbitraryType(arbitrary.New(nil))
	require.NoError(t, err)
	assert.Equal(t, abac.Bool(), got)

	got, err = abac.ArbitraryType(arbitrary.New([]byte{9}))
	require.NoError(t, err)
	assert.Equal(t, abac.Duration(), got)

	got, err = abac.ArbitraryType(arbitrary.New([]byte{4, 1, 0}))
	require.NoError(t, err)
	assert.Equal(t, abac.Set(abac.Bool()), got)

	got, err = abac.ArbitraryType(arbitrary.New([]byte{4, 0}))
	require.NoError(t, err)
	assert.Equal(t, abac.AnySet(), got)

	t.Run("non-extension", func(t *testing.T) {
		t.Parallel()
		for i := range 256 {
			got, err := abac.ArbitraryNonExtensionType(arbitrary.New([]byte{byte(i), 1, byte(i), 1, byte(i), 1, byte(i)}))
			require.NoError(t, err)
			for typ := &got; typ != nil; typ = typ.Element {
				assert.False(t, typ.IsExtension(), "input %d produced %s", i, got)
			}
		}
	})

	t.Run("nesting is bounded", func(t *testing.T) {
		t.Parallel()
		got, err := abac.ArbitraryType(arbitrary.New([]byte{4, 1, 4, 1, 4, 1, 4, 1, 4, 1}))
		require.NoError(t, err)
		depth := 0
		for typ := got.Element; typ != nil; typ = typ.Element {
			depth++
		}
		assert.Equal(t, 3, depth)
	})
}

func TestConstantPool(t *testing.T) {
	t.Parallel()

	p, err := abac.NewConstantPool(arbitrary.New(nil))
	require.NoError(t, err)
	assert.Equal(t, abac.DefaultConstantPool(), p)

	p, err = abac.NewConstantPool(arbitrary.New([]byte{1, 7, 0, 0, 0, 0, 0, 0, 0, 0}))
	require.NoError(t, err)
	assert.Contains(t, p.Ints, int64(7))
	assert.Len(t, p.Ints, len(abac.DefaultConstantPool().Ints)+1)

	i, err := p.ArbitraryInt(arbitrary.New(nil))
	require.NoError(t, err)
	assert.Equal(t, types.Long(0), i)

	s, err := p.ArbitraryString(arbitrary.New([]byte{1}))
	require.NoError(t, err)
	assert.Equal(t, types.String("a"), s)

	ip, err := p.ArbitraryIP(arbitrary.New(nil))
	require.NoError(t, err)
	_, err = types.ParseIPAddr(ip)
	require.NoError(t, err)

	t.Run("extension constants parse", func(t *testing.T) {
		t.Parallel()
		d := abac.DefaultConstantPool()
		for _, s := range d.IPs {
			_, err := types.ParseIPAddr(s)
			assert.NoError(t, err, s)
		}
		for _, s := range d.Decimals {
			_, err := types.ParseDecimal(s)
			assert.NoError(t, err, s)
		}
		for _, s := range d.Datetimes {
			_, err := types.ParseDatetime(s)
			assert.NoError(t, err, s)
		}
		for _, s := range d.Durations {
			_, err := types.ParseDuration(s)
			assert.NoError(t, err, s)
		}
	})

	t.Run("empty pool", func(t *testing.T) {
		t.Parallel()
		_, err := (&abac.ConstantPool{}).ArbitraryDecimal(arbitrary.New(nil))
		require.ErrorIs(t, err, arbitrary.ErrEmptyChoose)
	})

	t.Run("pattern", func(t *testing.T) {
		t.Parallel()
		got, err := abac.DefaultConstantPool().ArbitraryPattern(arbitrary.New(nil))
		require.NoError(t, err)
		assert.Equal(t, types.NewPattern(types.Wildcard{}), got)
	})
}

func TestExtensionFunctions(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		e := abac.NewExtensionFunctions(false)
		assert.Empty(t, e.All())
		_, err := e.ArbitraryAll(arbitrary.New([]byte{1, 2, 3}))
		require.ErrorIs(t, err, arbitrary.ErrEmptyChoose)
		_, err = e.ArbitraryConstructorForType(abac.IPAddr(), arbitrary.New(nil))
		require.ErrorIs(t, err, arbitrary.ErrEmptyChoose)
	})

	e := abac.NewExtensionFunctions(true)
	all := e.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}

	f, ok := e.Lookup("ip")
	require.True(t, ok)
	assert.True(t, f.Constructor)
	assert.Equal(t, []abac.Type{abac.String()}, f.Params)
	_, ok = e.Lookup("nope")
	assert.False(t, ok)

	f, err := e.ArbitraryConstructorForType(abac.Datetime(), arbitrary.New([]byte{1}))
	require.NoError(t, err)
	assert.Equal(t, types.Path("offset"), f.Name)
	assert.Equal(t, []abac.Type{abac.Datetime(), abac.Duration()}, f.Params)

	for i := range 32 {
		f, err := e.ArbitraryForType(abac.Long(), arbitrary.New([]byte{byte(i)}))
		require.NoError(t, err)
		assert.Equal(t, abac.Long(), f.Return)
		assert.False(t, f.Constructor)
	}

	_, err = e.ArbitraryForType(abac.String(), arbitrary.New(nil))
	require.ErrorIs(t, err, arbitrary.ErrEmptyChoose)
}

func TestUnknownPool(t *testing.T) {
	t.Parallel()
	p := abac.NewUnknownPool()
	assert.Equal(t, 0, p.Len())

	a := p.Alloc(abac.Long(), types.Long(1))
	b := p.Alloc(abac.String(), types.String("x"))
	assert.Equal(t, "unknown0", a)
	assert.Equal(t, "unknown1", b)
	assert.Equal(t, 2, p.Len())

	u, ok := p.Lookup("unknown1")
	require.True(t, ok)
	assert.Equal(t, types.String("x"), u.Value)
	assert.Equal(t, abac.String(), u.Type)

	_, ok = p.Lookup("unknown2")
	assert.False(t, ok)

	entries := p.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "unknown0", entries[0].Name)
	entries[0].Name = "changed"
	assert.Equal(t, "unknown0", p.Entries()[0].Name)
}
