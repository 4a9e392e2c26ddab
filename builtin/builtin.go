// Package builtin provides reference transformers exercising the C1/C2
// transformer contract: Identity, MinMaxScaler, StandardScaler,
// OneHotEncoder, QuantileBucketizer and HashingEncoder (spec.md §8
// "Testable properties" names several of these scenarios directly).
package builtin

import (
	"encoding/json"
	"fmt"
)

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Marshaling the small, JSON-safe summary types this package
		// defines cannot fail; a failure here is a programmer error in a
		// newly added summary type, not a runtime condition.
		panic(fmt.Sprintf("builtin: encode: %v", err))
	}
	return string(b)
}

func decodeJSON[T any](s string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, fmt.Errorf("builtin: decode: %w", err)
	}
	return v, nil
}
