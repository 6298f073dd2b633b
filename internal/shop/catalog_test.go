package shop_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"shoplist/internal/shop"
	"shoplist/internal/testutil"
)

// writeTempImage creates a fake image file and returns its path.
func writeTempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0644); err != nil {
		t.Fatalf("writing temp image: %v", err)
	}
	return path
}

// hasBlob reports whether the fixture's blob store holds the given key.
func hasBlob(t *testing.T, f *testutil.Fixture, key string) bool {
	t.Helper()
	err := f.Blobs.Get(context.Background(), key, io.Discard)
	if err == nil {
		return true
	}
	if errors.Is(err, shop.ErrNotFound) {
		return false
	}
	t.Fatalf("reading blob %s: %v", key, err)
	return false
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestService_CreateMasterItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("seeds price history with one record", func(t *testing.T) {
		f := testutil.NewFixture()

		item, err := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "2.50"), "")
		if err != nil {
			t.Fatalf("CreateMasterItem() error = %v", err)
		}

		if len(item.Variants) != 1 {
			t.Fatalf("variants = %d, want 1", len(item.Variants))
		}
		v := item.Variants[0]
		if len(v.PriceHistory) != 1 {
			t.Fatalf("price history = %d records, want 1", len(v.PriceHistory))
		}
		if !v.PriceHistory[0].Price.Equal(dec(t, "2.50")) {
			t.Errorf("seeded price = %s, want 2.50", v.PriceHistory[0].Price)
		}
		if !v.AveragePrice.Equal(dec(t, "2.50")) {
			t.Errorf("average = %s, want 2.50", v.AveragePrice)
		}
	})

	t.Run("trims the item name", func(t *testing.T) {
		f := testutil.NewFixture()

		item, err := f.Service.CreateMasterItem(ctx, "  Bread  ", "Acme", dec(t, "1.00"), "")
		if err != nil {
			t.Fatalf("CreateMasterItem() error = %v", err)
		}
		if item.Name != "Bread" {
			t.Errorf("name = %q, want %q", item.Name, "Bread")
		}
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		f := testutil.NewFixture()

		_, err := f.Service.CreateMasterItem(ctx, "   ", "Acme", dec(t, "1.00"), "")
		if !shop.IsValidation(err) {
			t.Errorf("CreateMasterItem() error = %v, want validation error", err)
		}
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		f := testutil.NewFixture()

		_, err := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "-1"), "")
		if !shop.IsValidation(err) {
			t.Errorf("CreateMasterItem() error = %v, want validation error", err)
		}
	})

	t.Run("stores the product photo", func(t *testing.T) {
		f := testutil.NewFixture()

		item, err := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "2.50"), writeTempImage(t))
		if err != nil {
			t.Fatalf("CreateMasterItem() error = %v", err)
		}
		ref := item.Variants[0].Image
		if ref == "" {
			t.Fatal("variant image ref is empty")
		}
		if !hasBlob(t, f, string(ref)) {
			t.Errorf("image blob %s not stored", ref)
		}
	})
}

func TestService_UpdateVariant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("price change appends history and recomputes average", func(t *testing.T) {
		f := testutil.NewFixture()
		item, err := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "5"), "")
		if err != nil {
			t.Fatalf("CreateMasterItem() error = %v", err)
		}

		if err := f.Service.UpdateVariant(ctx, item.ID, 0, "", dec(t, "7"), ""); err != nil {
			t.Fatalf("UpdateVariant() error = %v", err)
		}

		got, err := f.Service.GetMasterItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetMasterItem() error = %v", err)
		}
		v := got.Variants[0]
		if len(v.PriceHistory) != 2 {
			t.Fatalf("price history = %d records, want 2", len(v.PriceHistory))
		}
		if !v.DefaultPrice.Equal(dec(t, "7")) {
			t.Errorf("default price = %s, want 7", v.DefaultPrice)
		}
		if !v.AveragePrice.Equal(dec(t, "6")) {
			t.Errorf("average = %s, want 6 (mean of 5 and 7)", v.AveragePrice)
		}
	})

	t.Run("unchanged price appends nothing", func(t *testing.T) {
		f := testutil.NewFixture()
		item, err := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "5"), "")
		if err != nil {
			t.Fatalf("CreateMasterItem() error = %v", err)
		}

		if err := f.Service.UpdateVariant(ctx, item.ID, 0, "Premium", dec(t, "5"), ""); err != nil {
			t.Fatalf("UpdateVariant() error = %v", err)
		}

		got, _ := f.Service.GetMasterItem(ctx, item.ID)
		v := got.Variants[0]
		if len(v.PriceHistory) != 1 {
			t.Errorf("price history = %d records, want 1", len(v.PriceHistory))
		}
		if v.Brand != "Premium" {
			t.Errorf("brand = %q, want %q", v.Brand, "Premium")
		}
	})

	t.Run("replacing the photo deletes the old one", func(t *testing.T) {
		f := testutil.NewFixture()
		item, err := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "5"), writeTempImage(t))
		if err != nil {
			t.Fatalf("CreateMasterItem() error = %v", err)
		}
		oldRef := item.Variants[0].Image

		if err := f.Service.UpdateVariant(ctx, item.ID, 0, "", dec(t, "5"), writeTempImage(t)); err != nil {
			t.Fatalf("UpdateVariant() error = %v", err)
		}

		got, _ := f.Service.GetMasterItem(ctx, item.ID)
		newRef := got.Variants[0].Image
		if newRef == oldRef {
			t.Fatal("image ref did not change")
		}
		if hasBlob(t, f, string(oldRef)) {
			t.Errorf("old image %s still stored", oldRef)
		}
		if !hasBlob(t, f, string(newRef)) {
			t.Errorf("new image %s not stored", newRef)
		}
	})

	t.Run("unknown variant index", func(t *testing.T) {
		f := testutil.NewFixture()
		item, _ := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "5"), "")

		err := f.Service.UpdateVariant(ctx, item.ID, 3, "", dec(t, "5"), "")
		if !errors.Is(err, shop.ErrNotFound) {
			t.Errorf("UpdateVariant() error = %v, want ErrNotFound", err)
		}
	})
}

func TestService_DeleteVariant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("refuses to delete the only variant", func(t *testing.T) {
		f := testutil.NewFixture()
		item, _ := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "5"), "")

		err := f.Service.DeleteVariant(ctx, item.ID, 0)
		if !shop.IsValidation(err) {
			t.Errorf("DeleteVariant() error = %v, want validation error", err)
		}
		if !errors.Is(err, shop.ErrLastVariant) {
			t.Errorf("DeleteVariant() error = %v, want ErrLastVariant", err)
		}
	})

	t.Run("deletes the variant image and clamps the default index", func(t *testing.T) {
		f := testutil.NewFixture()
		item, _ := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "5"), "")
		if err := f.Service.AddVariant(ctx, item.ID, "Premium", dec(t, "8"), writeTempImage(t)); err != nil {
			t.Fatalf("AddVariant() error = %v", err)
		}

		got, _ := f.Service.GetMasterItem(ctx, item.ID)
		got.DefaultVariantIndex = 1
		if err := f.Service.SaveMasterItem(ctx, got); err != nil {
			t.Fatalf("SaveMasterItem() error = %v", err)
		}
		imageRef := got.Variants[1].Image

		if err := f.Service.DeleteVariant(ctx, item.ID, 1); err != nil {
			t.Fatalf("DeleteVariant() error = %v", err)
		}

		got, _ = f.Service.GetMasterItem(ctx, item.ID)
		if len(got.Variants) != 1 {
			t.Fatalf("variants = %d, want 1", len(got.Variants))
		}
		if got.DefaultVariantIndex != 0 {
			t.Errorf("default variant index = %d, want 0", got.DefaultVariantIndex)
		}
		if hasBlob(t, f, string(imageRef)) {
			t.Errorf("deleted variant image %s still stored", imageRef)
		}
	})
}

func TestService_DeleteMasterItem(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("deletes every variant image with the item", func(t *testing.T) {
		f := testutil.NewFixture()
		item, err := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "5"), writeTempImage(t))
		if err != nil {
			t.Fatalf("CreateMasterItem() error = %v", err)
		}
		if err := f.Service.AddVariant(ctx, item.ID, "Premium", dec(t, "8"), writeTempImage(t)); err != nil {
			t.Fatalf("AddVariant() error = %v", err)
		}
		got, _ := f.Service.GetMasterItem(ctx, item.ID)

		if err := f.Service.DeleteMasterItem(ctx, item.ID); err != nil {
			t.Fatalf("DeleteMasterItem() error = %v", err)
		}

		for i, v := range got.Variants {
			if hasBlob(t, f, string(v.Image)) {
				t.Errorf("variant %d image %s still stored", i, v.Image)
			}
		}
		if _, err := f.Service.GetMasterItem(ctx, item.ID); !errors.Is(err, shop.ErrNotFound) {
			t.Errorf("GetMasterItem() after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("list snapshots survive catalog deletion", func(t *testing.T) {
		f := testutil.NewFixture()
		item, _ := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "5"), "")
		list, _ := f.Service.CreateList(ctx, "Groceries")
		if err := f.Service.AddCatalogItem(ctx, list.ID, item.ID, 0); err != nil {
			t.Fatalf("AddCatalogItem() error = %v", err)
		}

		if err := f.Service.DeleteMasterItem(ctx, item.ID); err != nil {
			t.Fatalf("DeleteMasterItem() error = %v", err)
		}

		got, err := f.Service.GetList(ctx, list.ID)
		if err != nil {
			t.Fatalf("GetList() error = %v", err)
		}
		if len(got.Items) != 1 {
			t.Errorf("list items = %d, want 1 (snapshot survives)", len(got.Items))
		}
	})
}
