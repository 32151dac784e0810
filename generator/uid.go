package generator

import (
	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"

	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/hierarchy"
)

// GenerateUID returns the UID of a principal, an action or a resource,
// chosen uniformly.
func (g *Generator) GenerateUID(o arbitrary.Oracle) (types.EntityUID, error) {
	uid, err := g.generateUID(o)
	return uid, g.observe("uid", err)
}

func (g *Generator) generateUID(o arbitrary.Oracle) (types.EntityUID, error) {
	return uniform(o,
		func() (types.EntityUID, error) { return g.arbitraryPrincipalUID(o) },
		func() (types.EntityUID, error) { return g.arbitraryActionUID(o) },
		func() (types.EntityUID, error) { return g.arbitraryResourceUID(o) },
	)
}

func (g *Generator) ArbitraryPrincipalUID(o arbitrary.Oracle) (types.EntityUID, error) {
	uid, err := g.arbitraryPrincipalUID(o)
	return uid, g.observe("principal_uid", err)
}

func (g *Generator) ArbitraryActionUID(o arbitrary.Oracle) (types.EntityUID, error) {
	uid, err := g.arbitraryActionUID(o)
	return uid, g.observe("action_uid", err)
}

func (g *Generator) ArbitraryResourceUID(o arbitrary.Oracle) (types.EntityUID, error) {
	uid, err := g.arbitraryResourceUID(o)
	return uid, g.observe("resource_uid", err)
}

// ArbitraryUIDWithType returns a UID of entity type et. With a hierarchy the
// UID names one of its entities whenever the type has any.
func (g *Generator) ArbitraryUIDWithType(et types.EntityType, o arbitrary.Oracle) (types.EntityUID, error) {
	uid, err := g.arbitraryUIDWithType(et, o)
	return uid, g.observe("uid_with_type", err)
}

func (g *Generator) arbitraryPrincipalUID(o arbitrary.Oracle) (types.EntityUID, error) {
	et, err := arbitrary.Choose(o, g.index.PrincipalTypes)
	if err != nil {
		return types.EntityUID{}, errors.Wrap(err, "choosing a principal type")
	}
	return g.arbitraryUIDWithType(et, o)
}

func (g *Generator) arbitraryActionUID(o arbitrary.Oracle) (types.EntityUID, error) {
	id, err := arbitrary.Choose(o, g.index.ActionIDs)
	if err != nil {
		return types.EntityUID{}, errors.Wrap(err, "choosing an action")
	}
	return g.schema.ActionUID(id), nil
}

func (g *Generator) arbitraryResourceUID(o arbitrary.Oracle) (types.EntityUID, error) {
	et, err := arbitrary.Choose(o, g.index.ResourceTypes)
	if err != nil {
		return types.EntityUID{}, errors.Wrap(err, "choosing a resource type")
	}
	return g.arbitraryUIDWithType(et, o)
}

func (g *Generator) arbitraryUIDWithType(et types.EntityType, o arbitrary.Oracle) (types.EntityUID, error) {
	if g.hierarchy != nil {
		return g.hierarchy.UIDWithType(et, o)
	}
	et = g.schema.Qualify(et)
	return hierarchy.GenerateUIDWithType(et, g.schema.EnumChoices(et), o)
}
