// Package settingsstore persists the JSON settings document a spec's
// extraction produces (spec.md §6 "Settings serialization") so it can
// later be replayed without re-running prepare/reduce. Three concrete
// backends are provided (Redis, Postgres, bbolt) behind one interface,
// adapted from src/storage's cache/state backends, plus a circuit
// breaker adapted from src/storage/circuit_breaker_hybrid.go.
package settingsstore

import "context"

// Store saves and loads settings documents by key (typically a spec name
// plus a version or run identifier).
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
}
