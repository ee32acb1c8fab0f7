package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_IsValid(t *testing.T) {
	assert.True(t, KindProfilePicture.IsValid())
	assert.True(t, KindEventCover.IsValid())
	assert.False(t, Kind("poster").IsValid())
	assert.False(t, Kind("").IsValid())
}

func TestKind_Namespace(t *testing.T) {
	assert.Equal(t, "profile_pictures", KindProfilePicture.Namespace())
	assert.Equal(t, "event_covers", KindEventCover.Namespace())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("profile_picture")
	require.NoError(t, err)
	assert.Equal(t, KindProfilePicture, k)

	_, err = ParseKind("banner")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
