package shop

import (
	"context"

	"shoplist/internal/model"
)

// ImagePurpose scopes stored images to the kind of record that owns them.
type ImagePurpose string

const (
	PurposeProduct ImagePurpose = "product"
	PurposeReceipt ImagePurpose = "receipt"
)

// ImageStore stores binary images under purpose-scoped, timestamp-derived
// keys.
type ImageStore interface {
	// Save copies the bytes at sourcePath into the purpose area and
	// returns a reference usable later for display and deletion.
	Save(ctx context.Context, sourcePath string, purpose ImagePurpose) (model.ImageRef, error)

	// Delete removes a stored image. Deleting an absent or empty
	// reference is a no-op.
	Delete(ctx context.Context, ref model.ImageRef) error

	// ListStored returns every stored image reference from both purpose
	// areas.
	ListStored(ctx context.Context) ([]model.ImageRef, error)

	// SweepOrphans deletes each candidate whose reference is not in
	// valid. Returns the number deleted.
	SweepOrphans(ctx context.Context, candidates []model.ImageRef, valid map[model.ImageRef]bool) (int, error)
}
