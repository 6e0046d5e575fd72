package hcl

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// ConstantsToGo converts an evaluated constants block into plain Go values
// (string, float64, bool, []any, map[string]any or nil) that the host can
// hand to its scripting side unchanged.
func (c *Converter) ConstantsToGo(constants map[string]cty.Value) (map[string]any, error) {
	if constants == nil {
		return nil, nil
	}
	out := make(map[string]any, len(constants))
	for name, val := range constants {
		v, err := toGo(val)
		if err != nil {
			return nil, fmt.Errorf("failed to convert constant '%s': %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// toGo round-trips a value through its JSON form, which maps every cty type
// onto a JSON-compatible Go type.
func toGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
