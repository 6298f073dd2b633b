package images_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shoplist/internal/blob"
	"shoplist/internal/images"
	"shoplist/internal/model"
	"shoplist/internal/shop"
	"shoplist/internal/testutil"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "src.jpg")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing source image: %v", err)
	}
	return path
}

func TestStore_Save(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stores under the purpose prefix", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		s := images.NewStore(blobs, testutil.FixedClock(), shop.NewNopLogger())

		ref, err := s.Save(ctx, writeSource(t, "product bytes"), shop.PurposeProduct)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if !strings.HasPrefix(string(ref), "images/products/") {
			t.Errorf("ref = %s, want images/products/ prefix", ref)
		}

		var buf bytes.Buffer
		if err := blobs.Get(ctx, string(ref), &buf); err != nil {
			t.Fatalf("stored blob unreadable: %v", err)
		}
		if buf.String() != "product bytes" {
			t.Errorf("stored bytes = %q, want %q", buf.String(), "product bytes")
		}
	})

	t.Run("receipts land in their own area", func(t *testing.T) {
		s := images.NewStore(blob.NewMemoryStore(), testutil.FixedClock(), shop.NewNopLogger())

		ref, err := s.Save(ctx, writeSource(t, "receipt"), shop.PurposeReceipt)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if !strings.HasPrefix(string(ref), "images/receipts/") {
			t.Errorf("ref = %s, want images/receipts/ prefix", ref)
		}
	})

	t.Run("same-millisecond saves never collide", func(t *testing.T) {
		// The clock is frozen, so uniqueness must come from the store.
		s := images.NewStore(blob.NewMemoryStore(), testutil.FixedClock(), shop.NewNopLogger())

		seen := map[model.ImageRef]bool{}
		for i := 0; i < 5; i++ {
			ref, err := s.Save(ctx, writeSource(t, "x"), shop.PurposeProduct)
			if err != nil {
				t.Fatalf("Save() #%d error = %v", i, err)
			}
			if seen[ref] {
				t.Fatalf("duplicate ref %s", ref)
			}
			seen[ref] = true
		}
	})

	t.Run("missing source file", func(t *testing.T) {
		s := images.NewStore(blob.NewMemoryStore(), testutil.FixedClock(), shop.NewNopLogger())

		if _, err := s.Save(ctx, "/does/not/exist.jpg", shop.PurposeProduct); err == nil {
			t.Error("Save() with missing source succeeded")
		}
	})
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty ref is a no-op", func(t *testing.T) {
		s := images.NewStore(blob.NewMemoryStore(), testutil.FixedClock(), shop.NewNopLogger())

		if err := s.Delete(ctx, ""); err != nil {
			t.Errorf("Delete(\"\") error = %v, want nil", err)
		}
	})

	t.Run("removes the stored blob", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		s := images.NewStore(blobs, testutil.FixedClock(), shop.NewNopLogger())

		ref, _ := s.Save(ctx, writeSource(t, "x"), shop.PurposeProduct)
		if err := s.Delete(ctx, ref); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		keys, _ := blobs.List(ctx, "images/")
		if len(keys) != 0 {
			t.Errorf("blobs after delete = %v, want none", keys)
		}
	})
}

func TestStore_SweepOrphans(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("keeps valid refs, removes the rest", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		s := images.NewStore(blobs, testutil.FixedClock(), shop.NewNopLogger())

		keep, _ := s.Save(ctx, writeSource(t, "keep"), shop.PurposeProduct)
		drop, _ := s.Save(ctx, writeSource(t, "drop"), shop.PurposeReceipt)

		candidates, err := s.ListStored(ctx)
		if err != nil {
			t.Fatalf("ListStored() error = %v", err)
		}
		if len(candidates) != 2 {
			t.Fatalf("ListStored() = %v, want 2 refs", candidates)
		}

		n, err := s.SweepOrphans(ctx, candidates, map[model.ImageRef]bool{keep: true})
		if err != nil {
			t.Fatalf("SweepOrphans() error = %v", err)
		}
		if n != 1 {
			t.Errorf("swept = %d, want 1", n)
		}

		var buf bytes.Buffer
		if err := blobs.Get(ctx, string(keep), &buf); err != nil {
			t.Errorf("valid ref %s swept: %v", keep, err)
		}
		if err := blobs.Get(ctx, string(drop), &buf); err == nil {
			t.Errorf("orphan %s survived", drop)
		}
	})

	t.Run("images saved after the listing are untouched", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		s := images.NewStore(blobs, testutil.FixedClock(), shop.NewNopLogger())

		old, _ := s.Save(ctx, writeSource(t, "old"), shop.PurposeProduct)
		candidates, err := s.ListStored(ctx)
		if err != nil {
			t.Fatalf("ListStored() error = %v", err)
		}

		// A concurrent operation stores an image between the listing
		// and the sweep. Its record has not landed, so no valid set
		// can know about it yet.
		fresh, _ := s.Save(ctx, writeSource(t, "fresh"), shop.PurposeProduct)

		n, err := s.SweepOrphans(ctx, candidates, nil)
		if err != nil {
			t.Fatalf("SweepOrphans() error = %v", err)
		}
		if n != 1 {
			t.Errorf("swept = %d, want 1", n)
		}

		var buf bytes.Buffer
		if err := blobs.Get(ctx, string(fresh), &buf); err != nil {
			t.Errorf("freshly saved image %s swept: %v", fresh, err)
		}
		if err := blobs.Get(ctx, string(old), &buf); err == nil {
			t.Errorf("orphan %s survived", old)
		}
	})

	t.Run("unrelated blobs are out of scope", func(t *testing.T) {
		blobs := blob.NewMemoryStore()
		s := images.NewStore(blobs, testutil.FixedClock(), shop.NewNopLogger())

		blobs.Put(ctx, "shopping_lists/abc", bytes.NewReader([]byte("{}")))

		candidates, err := s.ListStored(ctx)
		if err != nil {
			t.Fatalf("ListStored() error = %v", err)
		}
		if len(candidates) != 0 {
			t.Errorf("ListStored() = %v, want none", candidates)
		}

		n, err := s.SweepOrphans(ctx, candidates, nil)
		if err != nil {
			t.Fatalf("SweepOrphans() error = %v", err)
		}
		if n != 0 {
			t.Errorf("swept = %d, want 0", n)
		}
		var buf bytes.Buffer
		if err := blobs.Get(ctx, "shopping_lists/abc", &buf); err != nil {
			t.Errorf("non-image blob swept: %v", err)
		}
	})
}
