package abac

import (
	"cmp"
	"slices"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
)

// ExtensionFunction is the signature of one extension function.
// Constructors build an extension value from literal arguments.
type ExtensionFunction struct {
	Name        types.Path
	Params      []Type
	Return      Type
	Constructor bool
}

var extensionFunctions = []ExtensionFunction{
	// Constructors
	{Name: "ip", Params: []Type{String()}, Return: IPAddr(), Constructor: true},
	{Name: "decimal", Params: []Type{String()}, Return: Decimal(), Constructor: true},
	{Name: "datetime", Params: []Type{String()}, Return: Datetime(), Constructor: true},
	{Name: "duration", Params: []Type{String()}, Return: Duration(), Constructor: true},
	{Name: "offset", Params: []Type{Datetime(), Duration()}, Return: Datetime(), Constructor: true},

	// Decimal methods
	{Name: "lessThan", Params: []Type{Decimal(), Decimal()}, Return: Bool()},
	{Name: "lessThanOrEqual", Params: []Type{Decimal(), Decimal()}, Return: Bool()},
	{Name: "greaterThan", Params: []Type{Decimal(), Decimal()}, Return: Bool()},
	{Name: "greaterThanOrEqual", Params: []Type{Decimal(), Decimal()}, Return: Bool()},

	// IPAddr methods
	{Name: "isIpv4", Params: []Type{IPAddr()}, Return: Bool()},
	{Name: "isIpv6", Params: []Type{IPAddr()}, Return: Bool()},
	{Name: "isLoopback", Params: []Type{IPAddr()}, Return: Bool()},
	{Name: "isMulticast", Params: []Type{IPAddr()}, Return: Bool()},
	{Name: "isInRange", Params: []Type{IPAddr(), IPAddr()}, Return: Bool()},

	// Datetime methods
	{Name: "toDate", Params: []Type{Datetime()}, Return: Datetime()},
	{Name: "toTime", Params: []Type{Datetime()}, Return: Duration()},
	{Name: "durationSince", Params: []Type{Datetime(), Datetime()}, Return: Duration()},

	// Duration methods
	{Name: "toDays", Params: []Type{Duration()}, Return: Long()},
	{Name: "toHours", Params: []Type{Duration()}, Return: Long()},
	{Name: "toMinutes", Params: []Type{Duration()}, Return: Long()},
	{Name: "toSeconds", Params: []Type{Duration()}, Return: Long()},
	{Name: "toMilliseconds", Params: []Type{Duration()}, Return: Long()},
}

// ExtensionFunctions is the registry of extension functions available to
// the generators. It is empty when extensions are disabled.
type ExtensionFunctions struct {
	all []ExtensionFunction
}

// NewExtensionFunctions returns the registry for the given feature setting.
func NewExtensionFunctions(enabled bool) *ExtensionFunctions {
	if !enabled {
		return &ExtensionFunctions{}
	}
	all := slices.Clone(extensionFunctions)
	slices.SortFunc(all, func(a, b ExtensionFunction) int { return cmp.Compare(a.Name, b.Name) })
	return &ExtensionFunctions{all: all}
}

// All returns every available function, sorted by name.
func (e *ExtensionFunctions) All() []ExtensionFunction { return e.all }

// Lookup returns the function with the given name.
func (e *ExtensionFunctions) Lookup(name types.Path) (ExtensionFunction, bool) {
	i := slices.IndexFunc(e.all, func(f ExtensionFunction) bool { return f.Name == name })
	if i < 0 {
		return ExtensionFunction{}, false
	}
	return e.all[i], true
}

// ArbitraryAll draws any available function.
func (e *ExtensionFunctions) ArbitraryAll(o arbitrary.Oracle) (ExtensionFunction, error) {
	f, err := arbitrary.Choose(o, e.all)
	return f, errors.Wrap(err, "choosing an extension function")
}

// ArbitraryForType draws a function whose return type is exactly t.
func (e *ExtensionFunctions) ArbitraryForType(t Type, o arbitrary.Oracle) (ExtensionFunction, error) {
	f, err := e.arbitrary(o, func(f ExtensionFunction) bool { return f.Return.Equal(t) })
	return f, errors.Wrapf(err, "choosing an extension function returning %s", t)
}

// ArbitraryConstructorForType draws a constructor whose return type is exactly t.
func (e *ExtensionFunctions) ArbitraryConstructorForType(t Type, o arbitrary.Oracle) (ExtensionFunction, error) {
	f, err := e.arbitrary(o, func(f ExtensionFunction) bool { return f.Constructor && f.Return.Equal(t) })
	return f, errors.Wrapf(err, "choosing an extension constructor for %s", t)
}

func (e *ExtensionFunctions) arbitrary(o arbitrary.Oracle, pred func(ExtensionFunction) bool) (ExtensionFunction, error) {
	var candidates []ExtensionFunction
	for _, f := range e.all {
		if pred(f) {
			candidates = append(candidates, f)
		}
	}
	return arbitrary.Choose(o, candidates)
}
