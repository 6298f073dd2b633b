package testutil

import (
	"context"
	"io"
	"strings"

	"shoplist/internal/shop"
)

// FailingBlobStore wraps another BlobStore and fails Put for keys
// matching FailPutPrefix. Used to exercise partial-failure paths.
type FailingBlobStore struct {
	shop.BlobStore
	FailPutPrefix string
	PutErr        error
}

func (s *FailingBlobStore) Put(ctx context.Context, key string, r io.Reader) error {
	if s.FailPutPrefix != "" && strings.HasPrefix(key, s.FailPutPrefix) {
		return s.PutErr
	}
	return s.BlobStore.Put(ctx, key, r)
}

var _ shop.BlobStore = (*FailingBlobStore)(nil)
