package shop

import (
	"context"
	"io"
)

// BlobStore provides an interface for the underlying byte storage primitive.
// Keys use forward slashes as separators ("master_items/<id>",
// "images/receipts/<ts>.jpg") regardless of backend.
type BlobStore interface {
	// Put writes the blob at key, replacing any existing blob.
	Put(ctx context.Context, key string, r io.Reader) error

	// Get reads the blob at key into w.
	// Returns an error wrapping ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string, w io.Writer) error

	// Delete removes the blob at key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// List returns every key that starts with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// ValidateSetup verifies that the store is accessible and properly
	// configured.
	ValidateSetup(ctx context.Context) error
}
