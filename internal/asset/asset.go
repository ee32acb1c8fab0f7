// Package asset manages the association between owning entities (profiles,
// events) and the objects stored for them. It owns reference lifecycle:
// upload, replacement, deletion, and the cleanup hook invoked when an owning
// entity is removed. The storage layer underneath is key-oriented and
// entity-agnostic; only this package knows which entity a key belongs to.
package asset

import (
	"errors"
	"time"
)

// Kind identifies the kind of asset an owner can hold. Each kind maps to its
// own key namespace, so a profile picture and an event cover can never
// collide without any shared sequence counter.
type Kind string

const (
	// KindProfilePicture is a user's profile picture.
	KindProfilePicture Kind = "profile_picture"
	// KindEventCover is the cover image of an event posting.
	KindEventCover Kind = "event_cover"
)

// ErrUnknownKind is returned when an asset kind is not recognized.
var ErrUnknownKind = errors.New("asset: unknown asset kind")

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	return k == KindProfilePicture || k == KindEventCover
}

// Namespace returns the key namespace prefix objects of this kind live under.
func (k Kind) Namespace() string {
	switch k {
	case KindProfilePicture:
		return "profile_pictures"
	case KindEventCover:
		return "event_covers"
	default:
		return string(k)
	}
}

// ParseKind converts a string to a Kind, returning ErrUnknownKind for
// anything unrecognized.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", ErrUnknownKind
	}
	return k, nil
}

// Reference is the persisted association between an owner and a stored
// object key. An owner holds at most one reference per kind. The key is
// generated once at upload time and never changes; replacing an asset writes
// a new key and deletes the old one, it never reuses a key.
type Reference struct {
	// Owner is the identifier of the entity the asset belongs to.
	Owner string
	// Kind is the asset kind.
	Kind Kind
	// Key is the stored object key within the backend's namespace.
	Key string
	// ContentType is the content type declared at upload time.
	ContentType string
	// CreatedAt is when the owner first received an asset of this kind.
	CreatedAt time.Time
	// UpdatedAt is when the reference last changed.
	UpdatedAt time.Time
}
