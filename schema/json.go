package schema

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"
)

// JSON schema types

type jsonNamespace struct {
	CommonTypes map[string]*jsonType   `json:"commonTypes,omitempty"`
	EntityTypes map[string]*jsonEntity `json:"entityTypes"`
	Actions     map[string]*jsonAction `json:"actions"`
}

type jsonEntity struct {
	MemberOfTypes []string  `json:"memberOfTypes,omitempty"`
	Shape         *jsonType `json:"shape,omitempty"`
	Tags          *jsonType `json:"tags,omitempty"`
	Enum          []string  `json:"enum,omitempty"`
}

type jsonAction struct {
	MemberOf  []jsonEntityUID `json:"memberOf,omitempty"`
	AppliesTo *jsonAppliesTo  `json:"appliesTo,omitempty"`
}

type jsonEntityUID struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id"`
}

type jsonAppliesTo struct {
	PrincipalTypes []string  `json:"principalTypes"`
	ResourceTypes  []string  `json:"resourceTypes"`
	Context        *jsonType `json:"context,omitempty"`
}

type jsonType struct {
	TypeName             string               `json:"type,omitempty"`
	Name                 string               `json:"name,omitempty"`
	Element              *jsonType            `json:"element,omitempty"`
	Attributes           map[string]*jsonAttr `json:"attributes,omitempty"`
	AdditionalAttributes bool                 `json:"additionalAttributes,omitempty"`
}

type jsonAttr struct {
	jsonType
	Required *bool `json:"required,omitempty"`
}

// UnmarshalJSON decodes a schema in the Cedar JSON schema format. Exactly
// one namespace must be present.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var namespaces map[string]*jsonNamespace
	if err := json.Unmarshal(data, &namespaces); err != nil {
		return errors.Wrap(err, "decoding schema")
	}
	if len(namespaces) != 1 {
		return errors.Wrapf(ErrNamespaceCount, "found %d", len(namespaces))
	}
	for name, ns := range namespaces {
		out, err := parseNamespace(types.Path(name), ns)
		if err != nil {
			return errors.Wrapf(err, "namespace %q", name)
		}
		*s = *out
	}
	return nil
}

func parseNamespace(name types.Path, ns *jsonNamespace) (*Schema, error) {
	s := &Schema{
		Namespace:   name,
		Entities:    Entities{},
		Enums:       Enums{},
		Actions:     Actions{},
		CommonTypes: CommonTypes{},
	}
	if ns == nil {
		return s, nil
	}

	for _, name := range slices.Sorted(maps.Keys(ns.CommonTypes)) {
		t, err := jsonToType(ns.CommonTypes[name])
		if err != nil {
			return nil, errors.Wrapf(err, "common type %s", name)
		}
		s.CommonTypes[types.Ident(name)] = t
	}

	for _, name := range slices.Sorted(maps.Keys(ns.EntityTypes)) {
		je := ns.EntityTypes[name]
		if je == nil {
			je = &jsonEntity{}
		}
		if len(je.Enum) > 0 {
			values := make([]types.String, len(je.Enum))
			for i, v := range je.Enum {
				values[i] = types.String(v)
			}
			s.Enums[types.EntityType(name)] = Enum{Values: values}
			continue
		}
		e, err := parseEntity(je)
		if err != nil {
			return nil, errors.Wrapf(err, "entity %s", name)
		}
		s.Entities[types.EntityType(name)] = e
	}

	for _, name := range slices.Sorted(maps.Keys(ns.Actions)) {
		a, err := parseAction(ns.Actions[name])
		if err != nil {
			return nil, errors.Wrapf(err, "action %s", name)
		}
		s.Actions[types.String(name)] = a
	}
	return s, nil
}

func parseEntity(je *jsonEntity) (Entity, error) {
	var e Entity
	for _, ref := range je.MemberOfTypes {
		e.MemberOf = append(e.MemberOf, types.EntityType(ref))
	}
	if je.Shape != nil {
		t, err := jsonToType(je.Shape)
		if err != nil {
			return e, errors.Wrap(err, "shape")
		}
		rt, ok := t.(RecordType)
		if !ok {
			return e, errors.Wrap(ErrShapeNotRecord, "shape")
		}
		e.Shape = rt
	}
	if je.Tags != nil {
		t, err := jsonToType(je.Tags)
		if err != nil {
			return e, errors.Wrap(err, "tags")
		}
		e.Tags = t
	}
	return e, nil
}

func parseAction(ja *jsonAction) (Action, error) {
	var a Action
	if ja == nil {
		return a, nil
	}
	for _, ref := range ja.MemberOf {
		a.MemberOf = append(a.MemberOf, types.String(ref.ID))
	}
	if ja.AppliesTo == nil {
		return a, nil
	}
	a.AppliesTo = &AppliesTo{}
	for _, ref := range ja.AppliesTo.PrincipalTypes {
		a.AppliesTo.Principals = append(a.AppliesTo.Principals, types.EntityType(ref))
	}
	for _, ref := range ja.AppliesTo.ResourceTypes {
		a.AppliesTo.Resources = append(a.AppliesTo.Resources, types.EntityType(ref))
	}
	if ja.AppliesTo.Context != nil {
		t, err := jsonToType(ja.AppliesTo.Context)
		if err != nil {
			return a, errors.Wrap(err, "context")
		}
		a.AppliesTo.Context = t
	}
	return a, nil
}

func jsonToType(jt *jsonType) (IsType, error) {
	if jt == nil {
		return nil, errors.Wrap(ErrUnknownType, "missing type")
	}
	switch jt.TypeName {
	case "String":
		return StringType{}, nil
	case "Long":
		return LongType{}, nil
	case "Bool", "Boolean":
		return BoolType{}, nil
	case "Extension":
		return ExtensionType{Name: types.Ident(jt.Name)}, nil
	case "Set":
		if jt.Element == nil {
			return nil, errors.Wrap(ErrUnknownType, "set type missing element")
		}
		elem, err := jsonToType(jt.Element)
		if err != nil {
			return nil, err
		}
		return SetType{Element: elem}, nil
	case "Record":
		rt := RecordType{Attributes: Attributes{}, AdditionalAttributes: jt.AdditionalAttributes}
		for _, name := range slices.Sorted(maps.Keys(jt.Attributes)) {
			attr := jt.Attributes[name]
			if attr == nil {
				return nil, errors.Wrapf(ErrUnknownType, "attribute %q", name)
			}
			t, err := jsonToType(&attr.jsonType)
			if err != nil {
				return nil, errors.Wrapf(err, "attribute %q", name)
			}
			rt.Attributes[types.String(name)] = Attribute{
				Type:     t,
				Optional: attr.Required != nil && !*attr.Required,
			}
		}
		return rt, nil
	case "Entity":
		return EntityTypeRef{Name: types.EntityType(jt.Name)}, nil
	case "EntityOrCommon":
		return EntityOrCommonRef{Name: types.Path(jt.Name)}, nil
	case "":
		return nil, errors.Wrapf(ErrUnknownType, "%+v", *jt)
	default:
		// Any other type name refers to a common type.
		return TypeRef{Name: types.Path(jt.TypeName)}, nil
	}
}
