// Package store provides generic per-record JSON persistence of a named
// collection on top of a blob store: one record per key under the
// collection prefix.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shoplist/internal/shop"
)

// Collection persists records of type T under "<name>/<id>".
type Collection[T any] struct {
	name   string
	blobs  shop.BlobStore
	logger shop.Logger
}

// New creates a Collection bound to the given collection name.
func New[T any](name string, blobs shop.BlobStore, logger shop.Logger) *Collection[T] {
	return &Collection[T]{name: name, blobs: blobs, logger: logger}
}

// List reads every record in the collection. A record that fails to parse
// is logged and silently omitted — one bad blob never fails the whole
// call. No order is imposed; callers sort.
func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	keys, err := c.blobs.List(ctx, c.name+"/")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.name, err)
	}

	records := make([]*T, 0, len(keys))
	for _, key := range keys {
		var buf bytes.Buffer
		if err := c.blobs.Get(ctx, key, &buf); err != nil {
			c.logger.Warn("skipping unreadable record", "key", key, "error", err)
			continue
		}
		rec := new(T)
		if err := json.Unmarshal(buf.Bytes(), rec); err != nil {
			c.logger.Warn("skipping malformed record", "key", key, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get reads one record by id. Returns shop.ErrNotFound (wrapped) when the
// id has no record.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var buf bytes.Buffer
	if err := c.blobs.Get(ctx, c.key(id), &buf); err != nil {
		return nil, err
	}
	rec := new(T)
	if err := json.Unmarshal(buf.Bytes(), rec); err != nil {
		return nil, fmt.Errorf("parsing %s/%s: %w", c.name, id, err)
	}
	return rec, nil
}

// Save upserts one record, overwriting any record with the same id.
func (c *Collection[T]) Save(ctx context.Context, id string, rec *T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", c.name, id, err)
	}
	return c.blobs.Put(ctx, c.key(id), bytes.NewReader(data))
}

// Delete removes one record by id. Deleting an absent id is a no-op.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.blobs.Delete(ctx, c.key(id))
}

func (c *Collection[T]) key(id string) string {
	return c.name + "/" + strings.TrimSpace(id)
}
