// Package store defines the draft registry interface and implementations.
package store

import (
	"context"
	"errors"

	"github.com/draftline/draftline/domain"
)

// ErrNotFound is returned when an operation targets an unknown draft id.
var ErrNotFound = errors.New("draft not found")

// Store is the registry of drafts awaiting human review.
type Store interface {
	// Create assigns the next sequential id, stamps the draft, and
	// returns the id.
	Create(ctx context.Context, draft *domain.Draft) (string, error)

	// Get returns the draft for the id, or nil if it is unknown.
	Get(ctx context.Context, id string) (*domain.Draft, error)

	// List returns drafts in insertion order. An empty source matches
	// all sources.
	List(ctx context.Context, source domain.Source) ([]domain.Draft, error)

	// Update replaces an existing draft. Returns ErrNotFound for
	// unknown ids.
	Update(ctx context.Context, draft *domain.Draft) error

	// Lifecycle
	Close() error
}
