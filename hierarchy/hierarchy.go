// Package hierarchy generates entity data consistent with a schema: a set of
// UIDs per entity type and membership edges along declared memberOf
// relations. Generated UID literals are grounded in it.
package hierarchy

import (
	"cmp"
	"slices"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/schema"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid hierarchy config")

type Config struct {
	MaxEntitiesPerType int `mapstructure:"max_entities_per_type" yaml:"max_entities_per_type"`
}

func DefaultConfig() Config {
	return Config{MaxEntitiesPerType: 4}
}

func (c Config) Validate() error {
	if c.MaxEntitiesPerType < 1 {
		return errors.Wrapf(ErrInvalidConfig, "max entities per type must be positive, got %d", c.MaxEntitiesPerType)
	}
	return nil
}

// Entity is one member of the hierarchy. Attrs and Tags stay empty until
// populated.
type Entity struct {
	UID     types.EntityUID
	Parents []types.EntityUID
	Attrs   map[types.String]types.Value
	Tags    map[types.String]types.Value
}

// Hierarchy is a set of entities. Edges always point from an entity to one
// that was added before it, so the membership graph is acyclic.
type Hierarchy struct {
	schema   *schema.Schema
	order    []types.EntityUID
	rank     map[types.EntityUID]int
	entities map[types.EntityUID]*Entity
	byType   map[types.EntityType][]types.EntityUID
}

// New returns an empty hierarchy for s.
func New(s *schema.Schema) *Hierarchy {
	return &Hierarchy{
		schema:   s,
		rank:     make(map[types.EntityUID]int),
		entities: make(map[types.EntityUID]*Entity),
		byType:   make(map[types.EntityType][]types.EntityUID),
	}
}

// Generate draws between one and cfg.MaxEntitiesPerType UIDs for each
// entity type of idx, adds the declared actions, then draws membership edges.
// Enumerated entity types get exactly their declared values.
func Generate(idx *schema.Index, cfg Config, o arbitrary.Oracle) (*Hierarchy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := idx.Schema()
	h := New(s)
	for _, et := range idx.EntityTypes {
		if choices := s.EnumChoices(et); choices != nil {
			for _, id := range choices {
				h.Add(types.NewEntityUID(et, id))
			}
			continue
		}
		err := o.Loop(1, cfg.MaxEntitiesPerType, func() error {
			id, err := ArbitraryID(o)
			if err != nil {
				return err
			}
			h.Add(types.NewEntityUID(et, id))
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "generating %s entities", string(et))
		}
	}
	for _, id := range idx.ActionIDs {
		h.Add(s.ActionUID(id))
	}

	for _, uid := range h.order {
		if err := h.drawParents(uid, o); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hierarchy) drawParents(uid types.EntityUID, o arbitrary.Oracle) error {
	e := h.entities[uid]
	if uid.Type == h.schema.ActionType() {
		a := h.schema.Actions[uid.ID]
		for _, id := range a.MemberOf {
			h.addParent(e, h.schema.ActionUID(id))
		}
		return nil
	}

	decl, ok := h.schema.LookupEntity(uid.Type)
	if !ok {
		return nil
	}
	for _, pt := range decl.MemberOf {
		var candidates []types.EntityUID
		for _, p := range h.byType[h.schema.Qualify(pt)] {
			if h.rank[p] < h.rank[uid] {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		err := o.Loop(0, len(candidates), func() error {
			p, err := arbitrary.Choose(o, candidates)
			if err != nil {
				return err
			}
			h.addParent(e, p)
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "drawing parents of %s", uid)
		}
	}
	return nil
}

func (h *Hierarchy) addParent(e *Entity, p types.EntityUID) {
	if !slices.Contains(e.Parents, p) {
		e.Parents = append(e.Parents, p)
	}
}

// Add inserts uid with no parents. Adding an existing UID is a no-op.
func (h *Hierarchy) Add(uid types.EntityUID) *Entity {
	if e, ok := h.entities[uid]; ok {
		return e
	}
	e := &Entity{
		UID:   uid,
		Attrs: make(map[types.String]types.Value),
		Tags:  make(map[types.String]types.Value),
	}
	h.rank[uid] = len(h.order)
	h.order = append(h.order, uid)
	h.entities[uid] = e
	h.byType[uid.Type] = append(h.byType[uid.Type], uid)
	return e
}

func (h *Hierarchy) Schema() *schema.Schema { return h.schema }

func (h *Hierarchy) Len() int { return len(h.order) }

// Contains reports whether uid is a member of the hierarchy.
func (h *Hierarchy) Contains(uid types.EntityUID) bool {
	_, ok := h.entities[uid]
	return ok
}

// Entity returns the member with the given UID.
func (h *Hierarchy) Entity(uid types.EntityUID) (*Entity, bool) {
	e, ok := h.entities[uid]
	return e, ok
}

// UIDs returns the members of entity type et in insertion order.
func (h *Hierarchy) UIDs(et types.EntityType) []types.EntityUID {
	return h.byType[h.schema.Qualify(et)]
}

// Entities returns every member, sorted by UID.
func (h *Hierarchy) Entities() []*Entity {
	out := make([]*Entity, 0, len(h.order))
	for _, uid := range h.order {
		out = append(out, h.entities[uid])
	}
	slices.SortFunc(out, func(a, b *Entity) int {
		return cmp.Or(cmp.Compare(a.UID.Type, b.UID.Type), cmp.Compare(a.UID.ID, b.UID.ID))
	})
	return out
}

// UIDWithType returns a member of type et. A type with no members falls
// back to a synthesized UID that may not exist in the hierarchy.
func (h *Hierarchy) UIDWithType(et types.EntityType, o arbitrary.Oracle) (types.EntityUID, error) {
	et = h.schema.Qualify(et)
	if members := h.byType[et]; len(members) > 0 {
		uid, err := arbitrary.Choose(o, members)
		return uid, errors.Wrapf(err, "choosing a %s entity", string(et))
	}
	return GenerateUIDWithType(et, h.schema.EnumChoices(et), o)
}
