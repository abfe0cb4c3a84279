package catalog

import "context"

// MemStore is a [Store] backed by fixed in-memory slices, typically seeded
// from the YAML config. It is read-only after construction and therefore
// safe for concurrent use.
type MemStore struct {
	categories []Entry
	wallets    []Entry
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a MemStore holding copies of the given slices.
func NewMemStore(categories, wallets []Entry) *MemStore {
	return &MemStore{
		categories: append([]Entry(nil), categories...),
		wallets:    append([]Entry(nil), wallets...),
	}
}

// Categories returns a copy of the category catalog.
func (s *MemStore) Categories(_ context.Context) ([]Entry, error) {
	return append([]Entry(nil), s.categories...), nil
}

// Wallets returns a copy of the wallet catalog.
func (s *MemStore) Wallets(_ context.Context) ([]Entry, error) {
	return append([]Entry(nil), s.wallets...), nil
}
