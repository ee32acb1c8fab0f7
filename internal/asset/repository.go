package asset

import (
	"context"
	"errors"
)

// ErrReferenceNotFound is returned when an owner holds no reference of the
// requested kind.
var ErrReferenceNotFound = errors.New("asset: reference not found")

// Repository defines the interface for reference persistence.
// It acts as a port in the hexagonal architecture pattern.
type Repository interface {
	// Save persists a reference. An existing reference for the same owner
	// and kind is replaced.
	Save(ctx context.Context, ref Reference) error

	// Find retrieves the reference an owner holds for a kind.
	// Returns ErrReferenceNotFound if the owner holds none.
	Find(ctx context.Context, owner string, kind Kind) (Reference, error)

	// ListByOwner returns every reference the owner holds.
	ListByOwner(ctx context.Context, owner string) ([]Reference, error)

	// Delete removes a reference.
	// Returns ErrReferenceNotFound if the owner holds none.
	Delete(ctx context.Context, owner string, kind Kind) error
}
