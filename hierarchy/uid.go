package hierarchy

import (
	"encoding/binary"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/strongdm/cedar-go-generators/arbitrary"
)

// ArbitraryID draws an entity identifier: either oracle text or a UUID
// whose bytes come from the oracle.
func ArbitraryID(o arbitrary.Oracle) (types.String, error) {
	text, err := o.Bool()
	if err != nil {
		return "", err
	}
	if text {
		s, err := o.Text()
		return types.String(s), err
	}
	var raw [16]byte
	for i := 0; i < len(raw); i += 4 {
		v, err := o.Uint32()
		if err != nil {
			return "", err
		}
		binary.LittleEndian.PutUint32(raw[i:], v)
	}
	id, err := uuid.FromBytes(raw[:])
	if err != nil {
		return "", errors.Wrap(err, "building entity id")
	}
	return types.String(id.String()), nil
}

// GenerateUIDWithType synthesizes a UID of type et without consulting a
// hierarchy. When choices is non-empty the identifier is one of them.
func GenerateUIDWithType(et types.EntityType, choices []types.String, o arbitrary.Oracle) (types.EntityUID, error) {
	if len(choices) > 0 {
		id, err := arbitrary.Choose(o, choices)
		if err != nil {
			return types.EntityUID{}, errors.Wrapf(err, "choosing an id for %s", string(et))
		}
		return types.NewEntityUID(et, id), nil
	}
	id, err := ArbitraryID(o)
	if err != nil {
		return types.EntityUID{}, errors.Wrapf(err, "drawing an id for %s", string(et))
	}
	return types.NewEntityUID(et, id), nil
}
