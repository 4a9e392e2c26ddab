// Package settingscodec implements the JSON settings wire format (spec.md
// §6 "Settings serialization"): a JSON array with one object per declared
// transformer, carrying its name, params and optional encoded aggregator
// state, in declaration order.
package settingscodec

import (
	"encoding/json"
	"fmt"

	"quantatomai/feature-engine/featureset"
)

// record is the on-the-wire shape of one featureset.Setting.
type record struct {
	Name       string            `json:"name"`
	Params     map[string]string `json:"params,omitempty"`
	Aggregator *string           `json:"aggregators,omitempty"`
}

// Encode serializes settings as a JSON array, preserving declaration order
// so a replayed extractor sees settings aligned to the same entry index
// (spec.md §4.5 "Settings round trip").
func Encode(settings []featureset.Setting) ([]byte, error) {
	out := make([]record, len(settings))
	for i, s := range settings {
		out[i] = record{Name: s.Name, Params: s.Params, Aggregator: s.Aggregator}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("settingscodec: encode: %w", err)
	}
	return data, nil
}

// Decode parses a JSON settings array back into featureset.Setting values.
// Order in the document is preserved; featureset.DecodeAggregators matches
// by name, so document order need not match declaration order.
func Decode(data []byte) ([]featureset.Setting, error) {
	var in []record
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("settingscodec: decode: %w", err)
	}
	out := make([]featureset.Setting, len(in))
	for i, r := range in {
		out[i] = featureset.Setting{Name: r.Name, Params: r.Params, Aggregator: r.Aggregator}
	}
	return out, nil
}
