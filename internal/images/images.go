// Package images stores product and receipt photos on the blob store under
// purpose-scoped, timestamp-derived keys.
package images

import (
	"context"
	"fmt"
	"os"
	"sync"

	"shoplist/internal/model"
	"shoplist/internal/shop"
)

const (
	productPrefix = "images/products/"
	receiptPrefix = "images/receipts/"
)

// Store implements shop.ImageStore over a BlobStore.
type Store struct {
	blobs  shop.BlobStore
	clock  shop.Clock
	logger shop.Logger

	mu     sync.Mutex
	lastTS int64
}

// NewStore creates an image store.
func NewStore(blobs shop.BlobStore, clock shop.Clock, logger shop.Logger) *Store {
	return &Store{blobs: blobs, clock: clock, logger: logger}
}

// Save copies the bytes at sourcePath into the purpose area under a
// timestamp-derived unique name and returns the stored reference.
func (s *Store) Save(ctx context.Context, sourcePath string, purpose shop.ImagePurpose) (model.ImageRef, error) {
	prefix, err := purposePrefix(purpose)
	if err != nil {
		return "", err
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("opening source image: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s%d.jpg", prefix, s.nextTimestamp())
	if err := s.blobs.Put(ctx, key, f); err != nil {
		return "", fmt.Errorf("storing image: %w", err)
	}
	return model.ImageRef(key), nil
}

// Delete removes a stored image. Empty and absent references are no-ops.
func (s *Store) Delete(ctx context.Context, ref model.ImageRef) error {
	if ref == "" {
		return nil
	}
	return s.blobs.Delete(ctx, string(ref))
}

// ListStored returns every stored image reference from both purpose areas.
func (s *Store) ListStored(ctx context.Context) ([]model.ImageRef, error) {
	var refs []model.ImageRef
	for _, prefix := range []string{productPrefix, receiptPrefix} {
		keys, err := s.blobs.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", prefix, err)
		}
		for _, key := range keys {
			refs = append(refs, model.ImageRef(key))
		}
	}
	return refs, nil
}

// SweepOrphans deletes each candidate whose reference is not in valid.
// Images stored after the candidate listing are untouched. Individual
// delete failures are logged and do not stop the sweep.
func (s *Store) SweepOrphans(ctx context.Context, candidates []model.ImageRef, valid map[model.ImageRef]bool) (int, error) {
	deleted := 0
	for _, ref := range candidates {
		if valid[ref] {
			continue
		}
		if err := s.blobs.Delete(ctx, string(ref)); err != nil {
			s.logger.Warn("deleting orphan image", "key", ref, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// nextTimestamp returns a strictly increasing millisecond timestamp so two
// saves in the same millisecond never collide.
func (s *Store) nextTimestamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.clock.Now().UnixMilli()
	if ts <= s.lastTS {
		ts = s.lastTS + 1
	}
	s.lastTS = ts
	return ts
}

func purposePrefix(purpose shop.ImagePurpose) (string, error) {
	switch purpose {
	case shop.PurposeProduct:
		return productPrefix, nil
	case shop.PurposeReceipt:
		return receiptPrefix, nil
	default:
		return "", fmt.Errorf("unknown image purpose: %s", purpose)
	}
}

// Compile-time check that Store implements shop.ImageStore
var _ shop.ImageStore = (*Store)(nil)
