package storage

import "testing"

func TestSelector_SameBackendForAllNamespaces(t *testing.T) {
	b, err := NewLocalBackend(t.TempDir(), "http://localhost:8080/media")
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}

	s := NewSelector(b)

	if s.BackendFor("profile_pictures") != Backend(b) {
		t.Error("BackendFor(profile_pictures) returned a different backend")
	}
	if s.BackendFor("event_covers") != Backend(b) {
		t.Error("BackendFor(event_covers) returned a different backend")
	}
}
