// Package keeper implements bareclad's canonicalizing interning stores
// (spec §4.2): RoleKeeper, AppearanceKeeper, AppearanceSetKeeper and
// PositKeeper. Each keeper is an arena — callers hold shared, immutable
// handles whose lifetime equals the keeper's own (spec §9: "no cyclic
// ownership... cross-references are by value, the identity, not by
// pointer").
package keeper

import (
	"sync"

	"github.com/Roenbaeck/bareclad/identity"
)

// store is the common shape behind every keeper: a fingerprint-keyed
// canonical map plus a reverse identity-keyed map, guarded by one
// read-mostly lock (spec §5: "writes are serialized within each keeper").
type store[T any] struct {
	mu         sync.RWMutex
	byPrint    map[string]*T
	byIdentity map[identity.Thing]*T
	gen        *identity.Generator
}

func newStore[T any](gen *identity.Generator) *store[T] {
	return &store[T]{
		byPrint:    make(map[string]*T),
		byIdentity: make(map[identity.Thing]*T),
		gen:        gen,
	}
}

// lookup returns the existing handle for fingerprint, if any, without
// taking a write lock.
func (s *store[T]) lookup(fingerprint string) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byPrint[fingerprint]
	return h, ok
}

// byId returns the handle for a known identity, used by the executor and
// the persistor to resolve an identity back to its entity.
func (s *store[T]) byId(id identity.Thing) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byIdentity[id]
	return h, ok
}

// insert registers a brand-new handle under both maps. Caller already holds
// the write lock and has already checked the fingerprint is absent.
func (s *store[T]) insert(fingerprint string, id identity.Thing, handle *T) {
	s.byPrint[fingerprint] = handle
	s.byIdentity[id] = handle
}

// count returns how many distinct entities are currently interned. Used by
// tests and rehydration sanity checks.
func (s *store[T]) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byIdentity)
}
