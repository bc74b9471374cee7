// Package store provides durable CRUD over rule records keyed by rule id.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfcabral/rulegate/internal/rule"
)

var (
	// ErrDuplicateID is returned by Create when the id already exists.
	// The existing rule is left unmodified.
	ErrDuplicateID = errors.New("rule id already exists")

	// ErrNotFound is returned by Get and Delete for an unknown id. A second
	// delete of the same id reports ErrNotFound, never success, so callers
	// can tell "already gone" apart from "just deleted".
	ErrNotFound = errors.New("rule not found")
)

// StorageError marks a fatal backend failure (storage unavailable, I/O
// error). It is the only error class that aborts an evaluation pass.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store manages rule persistence. Implementations must be safe for
// concurrent use; reads may proceed while an evaluation pass is in flight.
type Store interface {
	// Create persists a new rule and stamps CreatedAt/UpdatedAt.
	// Fails with ErrDuplicateID if the id is taken.
	Create(ctx context.Context, r *rule.Rule) error

	// Get returns the rule with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*rule.Rule, error)

	// List returns all rules in creation order (stable).
	List(ctx context.Context) ([]*rule.Rule, error)

	// Delete removes the rule or reports ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
