package builtin

import (
	"hash/fnv"
	"strconv"

	"quantatomai/feature-engine/transform"
)

// HashingEncoder one-hot encodes a string field into a fixed-width hashed
// bucket space, accepting collisions in exchange for needing no
// aggregation pass at all (unlike OneHotEncoder, its vocabulary is never
// observed; the feature hashing trick from domain.AtomKey.HashKey
// generalized to arbitrary string fields).
type HashingEncoder struct {
	name    string
	buckets int
}

// NewHashingEncoder constructs a HashingEncoder transformer hashing into
// buckets slots.
func NewHashingEncoder(name string, buckets int) HashingEncoder {
	return HashingEncoder{name: name, buckets: buckets}
}

func (t HashingEncoder) Name() string { return t.name }

func (t HashingEncoder) Aggregator() transform.Aggregator[string, struct{}, struct{}] {
	return transform.Identity[string]()
}

func (t HashingEncoder) FeatureDimension(struct{}) int { return t.buckets }

func (t HashingEncoder) FeatureNames(struct{}) []string {
	names := make([]string, t.buckets)
	for i := range names {
		names[i] = t.name + "_hash_" + strconv.Itoa(i)
	}
	return names
}

func (t HashingEncoder) bucketOf(a string) int {
	h := fnv.New32a()
	h.Write([]byte(a))
	return int(h.Sum32() % uint32(t.buckets))
}

func (t HashingEncoder) BuildFeatures(a string, present bool, _ struct{}, sink transform.Sink) {
	if !present {
		sink.SkipN(t.buckets)
		return
	}
	bucket := t.bucketOf(a)
	names := t.FeatureNames(struct{}{})
	for i, name := range names {
		v := 0.0
		if i == bucket {
			v = 1
		}
		sink.Add(name, v)
	}
}

func (t HashingEncoder) EncodeAggregator(struct{}) string { return "" }

func (t HashingEncoder) DecodeAggregator(string) (struct{}, error) { return struct{}{}, nil }

func (t HashingEncoder) Params() map[string]string {
	return map[string]string{"buckets": strconv.Itoa(t.buckets)}
}
