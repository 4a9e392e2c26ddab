package builtin

import "quantatomai/feature-engine/transform"

// Identity passes its input straight through as a single feature, with no
// aggregation (spec.md §8 "Identity pass-through").
type Identity struct {
	name string
}

// NewIdentity constructs an Identity transformer emitting one feature
// named name.
func NewIdentity(name string) Identity { return Identity{name: name} }

func (t Identity) Name() string { return t.name }

func (t Identity) Aggregator() transform.Aggregator[float64, struct{}, struct{}] {
	return transform.Identity[float64]()
}

func (t Identity) FeatureDimension(struct{}) int { return 1 }

func (t Identity) FeatureNames(struct{}) []string { return []string{t.name} }

func (t Identity) BuildFeatures(a float64, present bool, _ struct{}, sink transform.Sink) {
	if !present {
		sink.Skip()
		return
	}
	sink.Add(t.name, a)
}

func (t Identity) EncodeAggregator(struct{}) string { return "" }

func (t Identity) DecodeAggregator(string) (struct{}, error) { return struct{}{}, nil }

func (t Identity) Params() map[string]string { return nil }
