package abac

import (
	"strconv"

	"github.com/cedar-policy/cedar-go/types"
)

// Unknown is one allocated placeholder and the value it stands for.
type Unknown struct {
	Name  string
	Type  Type
	Value types.Value
}

// UnknownPool is an append-only registry of unknown placeholders. Names are
// minted in allocation order and never reused. An UnknownPool is not safe
// for concurrent use; give each generation session its own.
type UnknownPool struct {
	entries []Unknown
	byName  map[string]int
}

func NewUnknownPool() *UnknownPool {
	return &UnknownPool{byName: make(map[string]int)}
}

// Alloc registers v under a fresh name and returns the name.
func (p *UnknownPool) Alloc(t Type, v types.Value) string {
	name := "unknown" + strconv.Itoa(len(p.entries))
	p.byName[name] = len(p.entries)
	p.entries = append(p.entries, Unknown{Name: name, Type: t, Value: v})
	return name
}

// Lookup returns the unknown allocated under name.
func (p *UnknownPool) Lookup(name string) (Unknown, bool) {
	i, ok := p.byName[name]
	if !ok {
		return Unknown{}, false
	}
	return p.entries[i], true
}

func (p *UnknownPool) Len() int { return len(p.entries) }

// Entries returns the allocated unknowns in allocation order.
func (p *UnknownPool) Entries() []Unknown {
	out := make([]Unknown, len(p.entries))
	copy(out, p.entries)
	return out
}
