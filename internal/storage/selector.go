package storage

// Selector binds asset namespaces to storage backends. It is constructed once
// at startup from configuration and injected into every component that needs
// storage, so all callers in one process observe the same backend instance
// and a request can never switch between local and remote semantics mid-way.
type Selector struct {
	backend Backend
}

// NewSelector creates a Selector routing every namespace to backend.
func NewSelector(backend Backend) *Selector {
	return &Selector{backend: backend}
}

// BackendFor returns the backend holding objects for the given namespace.
// Today every namespace resolves to the same process-wide backend; the
// indirection exists so a future asset kind can be routed elsewhere without
// touching callers.
func (s *Selector) BackendFor(_ string) Backend {
	return s.backend
}
