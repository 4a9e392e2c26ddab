// Package groupconfig loads and validates the group-mapping configuration
// a multi-spec uses to route declared transformers to output groups
// (spec.md §4.8 "Group mapping"), schema-checked with CUE before being
// turned into a multispec.GroupFunc.
package groupconfig

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

const schema = `
groups: [...string]
assignments: [string]: string
`

// Config is a validated group-mapping document: the declared group names
// and the name -> group assignment table.
type Config struct {
	Groups      []string          `json:"groups"`
	Assignments map[string]string `json:"assignments"`
}

// Parse validates doc (a CUE document matching the groupconfig schema)
// and decodes it into a Config. Every assignment's target must be one of
// the declared groups.
func Parse(doc string) (*Config, error) {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schema)
	if err := schemaVal.Err(); err != nil {
		return nil, fmt.Errorf("groupconfig: compiling schema: %w", err)
	}

	docVal := ctx.CompileString(doc)
	if err := docVal.Err(); err != nil {
		return nil, fmt.Errorf("groupconfig: compiling document: %w", err)
	}

	unified := schemaVal.Unify(docVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("groupconfig: validation failed: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("groupconfig: decode: %w", err)
	}

	known := make(map[string]bool, len(cfg.Groups))
	for _, g := range cfg.Groups {
		known[g] = true
	}
	for name, g := range cfg.Assignments {
		if !known[g] {
			return nil, fmt.Errorf("groupconfig: assignment %q references undeclared group %q", name, g)
		}
	}
	return &cfg, nil
}

// GroupFunc returns a function assigning each declared name to its
// configured group. A name without an explicit assignment falls back to
// def.
func (c *Config) GroupFunc(def string) func(name string) string {
	return func(name string) string {
		if g, ok := c.Assignments[name]; ok {
			return g
		}
		return def
	}
}
