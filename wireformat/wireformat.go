// Package wireformat offers a compact FlatBuffers-based encoding
// transformer authors can use for EncodeAggregator/DecodeAggregator
// instead of JSON, when the presented aggregator state is itself a flat
// byte blob (e.g. a serialized summary struct) that benefits from
// zero-copy decode. Adapted from the low-level flatbuffers.Builder usage
// in src/projection/projection_flatbuffer_builder.go — no generated
// schema accessors are available in this codebase, so both encode and
// decode work directly against the builder/byte-buffer API.
package wireformat

import (
	"encoding/base64"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
)

// EncodeBytes wraps an arbitrary payload in a single-field FlatBuffers
// table (one byte-vector field) and returns it base64-encoded so the
// result is safe to carry inside the JSON settings document (spec.md §6
// "Settings serialization" — the aggregator field is a string).
func EncodeBytes(payload []byte) string {
	b := flatbuffers.NewBuilder(len(payload) + 16)
	vec := b.CreateByteVector(payload)

	b.StartObject(1)
	b.PrependUOffsetTSlot(0, vec, 0)
	root := b.EndObject()
	b.Finish(root)

	return base64.StdEncoding.EncodeToString(b.FinishedBytes())
}

// DecodeBytes reverses EncodeBytes. It reads the root table's single
// byte-vector field directly off the buffer, following the
// length-prefixed-vector layout FlatBuffers produces, rather than through
// generated accessor code.
func DecodeBytes(encoded string) ([]byte, error) {
	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("wireformat: base64 decode: %w", err)
	}
	if len(buf) < 4 {
		return nil, fmt.Errorf("wireformat: buffer too short for a root offset")
	}
	rootPos := flatbuffers.GetUOffsetT(buf)
	tbl := flatbuffers.Table{Bytes: buf, Pos: rootPos}

	o := flatbuffers.UOffsetT(tbl.Offset(4)) // field index 0 -> vtable slot 4
	if o == 0 {
		return nil, nil
	}
	return tbl.ByteVector(o + tbl.Pos), nil
}
