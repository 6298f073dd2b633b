package blob

import (
	"context"
	"fmt"

	"shoplist/internal/config"
	"shoplist/internal/shop"
)

// NewBlobStoreFromConfig creates a BlobStore based on the storage config type.
func NewBlobStoreFromConfig(ctx context.Context, cfg config.StorageConfig) (shop.BlobStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem storage requires root to be set")
		}
		return NewFileSystemStore(cfg.Root)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
