package cli

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// writeStructured encodes v to w as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return enc.Close()
	default:
		return errors.AssertionFailedf("no structured encoding for format %q", format)
	}
}
