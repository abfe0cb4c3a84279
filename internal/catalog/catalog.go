// Package catalog provides the category and wallet catalogs that transaction
// extraction matches spoken names against.
//
// The extractor itself never fetches catalogs — it receives plain [Entry]
// slices on every call and never mutates or caches them. This package exists
// for the serving layer, which looks the catalogs up per session from either
// a static in-memory store (seeded from config) or the finance tracker's
// Postgres database.
package catalog

import "context"

// Entry is one category or wallet known to the host application.
type Entry struct {
	// ID is the host application's identifier for the entry.
	ID string `json:"id" yaml:"id"`

	// Name is the display name spoken names are matched against.
	Name string `json:"name" yaml:"name"`
}

// Store supplies the catalogs for one user of the finance tracker.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Categories returns all known transaction categories.
	Categories(ctx context.Context) ([]Entry, error)

	// Wallets returns all known wallets.
	Wallets(ctx context.Context) ([]Entry, error)
}
