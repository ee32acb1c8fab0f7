// Package key generates object keys for uploaded assets.
package key

import (
	"encoding/hex"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Generate derives a new object key for an upload.
// Format: <prefix>/<ownerID>/<32-hex-token>.<ext>
// Example: profile_pictures/42/a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6.png
//
// The prefix shards keys per asset kind, the owner ID bounds any single
// listing and makes bulk deletion per owner tractable, and the random token
// makes one user's asset names unguessable from another's. The extension is
// taken from the original filename, lowercased; a filename without an
// extension yields a key with no extension segment. Collisions are not
// re-checked: the token is a 128-bit random value.
func Generate(prefix, ownerID, originalFilename string) string {
	token := uuid.New()
	name := hex.EncodeToString(token[:])

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(originalFilename), "."))
	if ext != "" {
		name += "." + ext
	}

	return prefix + "/" + ownerID + "/" + name
}
