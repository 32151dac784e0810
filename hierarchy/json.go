package hierarchy

import (
	"encoding/json"

	"github.com/cedar-policy/cedar-go/types"
)

type jsonUID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type jsonEntity struct {
	UID     jsonUID                `json:"uid"`
	Parents []jsonUID              `json:"parents"`
	Attrs   map[string]types.Value `json:"attrs"`
	Tags    map[string]types.Value `json:"tags,omitempty"`
}

func toJSONUID(uid types.EntityUID) jsonUID {
	return jsonUID{Type: string(uid.Type), ID: string(uid.ID)}
}

func toJSONValues(m map[types.String]types.Value) map[string]types.Value {
	out := make(map[string]types.Value, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// MarshalJSON encodes the hierarchy in the Cedar entities JSON format.
// Extension values are encoded with the __extn escape.
func (h *Hierarchy) MarshalJSON() ([]byte, error) {
	entities := h.Entities()
	out := make([]jsonEntity, len(entities))
	for i, e := range entities {
		parents := make([]jsonUID, len(e.Parents))
		for j, p := range e.Parents {
			parents[j] = toJSONUID(p)
		}
		out[i] = jsonEntity{
			UID:     toJSONUID(e.UID),
			Parents: parents,
			Attrs:   toJSONValues(e.Attrs),
		}
		if len(e.Tags) > 0 {
			out[i].Tags = toJSONValues(e.Tags)
		}
	}
	return json.Marshal(out)
}

type yamlEntity struct {
	UID     string            `yaml:"uid"`
	Parents []string          `yaml:"parents,omitempty"`
	Attrs   map[string]string `yaml:"attrs,omitempty"`
	Tags    map[string]string `yaml:"tags,omitempty"`
}

func toYAMLValues(m map[types.String]types.Value) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[string(k)] = string(v.MarshalCedar())
	}
	return out
}

// MarshalYAML renders the hierarchy for human inspection. UIDs and values
// are written in Cedar syntax.
func (h *Hierarchy) MarshalYAML() (any, error) {
	entities := h.Entities()
	out := make([]yamlEntity, len(entities))
	for i, e := range entities {
		parents := make([]string, len(e.Parents))
		for j, p := range e.Parents {
			parents[j] = string(p.MarshalCedar())
		}
		out[i] = yamlEntity{
			UID:     string(e.UID.MarshalCedar()),
			Parents: parents,
			Attrs:   toYAMLValues(e.Attrs),
			Tags:    toYAMLValues(e.Tags),
		}
	}
	return out, nil
}
