package asset

import (
	"context"
	"sync"
)

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository.
// It uses a map with RWMutex for thread-safe access.
// Suitable for development and testing; swap for persistent storage in production.
type MemoryRepository struct {
	mu   sync.RWMutex
	refs map[refKey]Reference
}

type refKey struct {
	owner string
	kind  Kind
}

// NewMemoryRepository creates a new in-memory reference repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		refs: make(map[refKey]Reference),
	}
}

// Save persists a reference, replacing any existing one for the same owner
// and kind.
func (r *MemoryRepository) Save(_ context.Context, ref Reference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs[refKey{owner: ref.Owner, kind: ref.Kind}] = ref
	return nil
}

// Find retrieves the reference an owner holds for a kind.
func (r *MemoryRepository) Find(_ context.Context, owner string, kind Kind) (Reference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.refs[refKey{owner: owner, kind: kind}]
	if !ok {
		return Reference{}, ErrReferenceNotFound
	}
	return ref, nil
}

// ListByOwner returns every reference the owner holds.
func (r *MemoryRepository) ListByOwner(_ context.Context, owner string) ([]Reference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Reference, 0)
	for k, ref := range r.refs {
		if k.owner == owner {
			result = append(result, ref)
		}
	}
	return result, nil
}

// Delete removes a reference.
func (r *MemoryRepository) Delete(_ context.Context, owner string, kind Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := refKey{owner: owner, kind: kind}
	if _, ok := r.refs[k]; !ok {
		return ErrReferenceNotFound
	}
	delete(r.refs, k)
	return nil
}
