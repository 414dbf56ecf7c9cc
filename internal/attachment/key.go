package attachment

import (
	"fmt"

	"github.com/google/uuid"
)

// DeriveKey computes the object-store key for a file being attached to an
// article: "articles/{articleID}/{displayOrder}_{token}.{ext}". The token is
// a fresh random UUID, so two calls never collide even for identical inputs.
// The key's structure is internal to this package and the storage client;
// callers treat it as opaque.
func DeriveKey(articleID string, displayOrder int, originalName string) string {
	return fmt.Sprintf("articles/%s/%d_%s.%s",
		articleID, displayOrder, uuid.NewString(), fileExtension(originalName))
}
