package shop

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// ListMasterItems returns the catalog ordered by most recently updated.
func (s *Service) ListMasterItems(ctx context.Context) ([]*model.MasterItem, error) {
	items, err := s.stores.Items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing master items: %w", err)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items, nil
}

// GetMasterItem returns one catalog item by id.
func (s *Service) GetMasterItem(ctx context.Context, id string) (*model.MasterItem, error) {
	item, err := s.stores.Items.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting master item %s: %w", id, err)
	}
	return item, nil
}

// CreateMasterItem creates a catalog item with its first brand variant.
// The variant's price history is seeded with one record at the given price.
// imagePath may be empty.
func (s *Service) CreateMasterItem(ctx context.Context, name, brand string, price decimal.Decimal, imagePath string) (*model.MasterItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, Validationf("item name is required")
	}
	if price.IsNegative() {
		return nil, Validationf("price %s is negative", price)
	}

	now := s.clock.Now()
	item := &model.MasterItem{
		ID:        s.idgen.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	variant, err := s.buildVariant(ctx, brand, price, imagePath, now)
	if err != nil {
		return nil, err
	}
	item.Variants = []model.BrandVariant{*variant}

	if err := s.stores.Items.Save(ctx, item.ID, item); err != nil {
		return nil, fmt.Errorf("saving master item: %w", err)
	}
	s.logger.Info("master item created", "id", item.ID, "name", item.Name)
	return item, nil
}

// SaveMasterItem validates and upserts a catalog item.
func (s *Service) SaveMasterItem(ctx context.Context, item *model.MasterItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return Validationf("item name is required")
	}
	if len(item.Variants) == 0 {
		return Validationf("item must have at least one variant")
	}
	if item.DefaultVariantIndex < 0 || item.DefaultVariantIndex >= len(item.Variants) {
		return Validationf("default variant index %d out of range", item.DefaultVariantIndex)
	}
	item.UpdatedAt = s.clock.Now()
	if err := s.stores.Items.Save(ctx, item.ID, item); err != nil {
		return fmt.Errorf("saving master item %s: %w", item.ID, err)
	}
	return nil
}

// DeleteMasterItem removes a catalog item. Every variant's image is deleted
// via the image store first; the cascade is explicit, not implicit.
// List items that already snapshotted this item are not touched.
func (s *Service) DeleteMasterItem(ctx context.Context, id string) error {
	item, err := s.stores.Items.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("getting master item %s: %w", id, err)
	}

	for i := range item.Variants {
		if err := s.images.Delete(ctx, item.Variants[i].Image); err != nil {
			return fmt.Errorf("deleting variant image: %w", err)
		}
	}

	if err := s.stores.Items.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting master item %s: %w", id, err)
	}
	s.logger.Info("master item deleted", "id", id, "name", item.Name)
	return nil
}

// AddVariant appends a brand variant to an existing item, seeding its price
// history with one record at the given price.
func (s *Service) AddVariant(ctx context.Context, itemID, brand string, price decimal.Decimal, imagePath string) error {
	item, err := s.stores.Items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("getting master item %s: %w", itemID, err)
	}
	if price.IsNegative() {
		return Validationf("price %s is negative", price)
	}

	now := s.clock.Now()
	variant, err := s.buildVariant(ctx, brand, price, imagePath, now)
	if err != nil {
		return err
	}
	item.Variants = append(item.Variants, *variant)
	item.UpdatedAt = now

	if err := s.stores.Items.Save(ctx, item.ID, item); err != nil {
		return fmt.Errorf("saving master item %s: %w", item.ID, err)
	}
	s.logger.Info("variant added", "item", item.Name, "brand", variant.Brand)
	return nil
}

// UpdateVariant edits a variant's brand, sticker price, and image. When the
// new price differs from the current default, a price record at the current
// time is appended before the default is overwritten and the average is
// recomputed over the full history. An unchanged price appends nothing, so
// no-op edits leave no spurious history entries. An empty imagePath keeps
// the existing image.
func (s *Service) UpdateVariant(ctx context.Context, itemID string, variantIndex int, brand string, price decimal.Decimal, imagePath string) error {
	item, err := s.stores.Items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("getting master item %s: %w", itemID, err)
	}
	variant := item.Variant(variantIndex)
	if variant == nil {
		return fmt.Errorf("variant %d of item %s: %w", variantIndex, itemID, ErrNotFound)
	}
	if price.IsNegative() {
		return Validationf("price %s is negative", price)
	}

	now := s.clock.Now()
	if brand != "" {
		variant.Brand = brand
	}
	if !price.Equal(variant.DefaultPrice) {
		variant.PriceHistory = append(variant.PriceHistory, model.PriceRecord{
			Price: price,
			Date:  now,
		})
		variant.DefaultPrice = price
		recomputeAverage(variant)
	}
	if imagePath != "" {
		old := variant.Image
		ref, err := s.images.Save(ctx, imagePath, PurposeProduct)
		if err != nil {
			return fmt.Errorf("saving variant image: %w", err)
		}
		variant.Image = ref
		if err := s.images.Delete(ctx, old); err != nil {
			s.logger.Warn("deleting replaced variant image", "ref", old, "error", err)
		}
	}
	variant.UpdatedAt = now
	item.UpdatedAt = now

	if err := s.stores.Items.Save(ctx, item.ID, item); err != nil {
		return fmt.Errorf("saving master item %s: %w", item.ID, err)
	}
	return nil
}

// DeleteVariant removes a variant, deleting its image first. An item must
// always keep at least one variant.
func (s *Service) DeleteVariant(ctx context.Context, itemID string, variantIndex int) error {
	item, err := s.stores.Items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("getting master item %s: %w", itemID, err)
	}
	if len(item.Variants) <= 1 {
		return &ValidationError{
			Reason: fmt.Sprintf("cannot delete the only variant of %q", item.Name),
			Err:    ErrLastVariant,
		}
	}
	variant := item.Variant(variantIndex)
	if variant == nil {
		return fmt.Errorf("variant %d of item %s: %w", variantIndex, itemID, ErrNotFound)
	}

	if err := s.images.Delete(ctx, variant.Image); err != nil {
		return fmt.Errorf("deleting variant image: %w", err)
	}

	item.Variants = append(item.Variants[:variantIndex], item.Variants[variantIndex+1:]...)
	if item.DefaultVariantIndex >= len(item.Variants) {
		item.DefaultVariantIndex = len(item.Variants) - 1
	}
	item.UpdatedAt = s.clock.Now()

	if err := s.stores.Items.Save(ctx, item.ID, item); err != nil {
		return fmt.Errorf("saving master item %s: %w", item.ID, err)
	}
	return nil
}

// buildVariant assembles a new variant with a seeded price history.
func (s *Service) buildVariant(ctx context.Context, brand string, price decimal.Decimal, imagePath string, now time.Time) (*model.BrandVariant, error) {
	variant := &model.BrandVariant{
		Brand:        strings.TrimSpace(brand),
		DefaultPrice: price,
		AveragePrice: price,
		PriceHistory: []model.PriceRecord{{Price: price, Date: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if imagePath != "" {
		ref, err := s.images.Save(ctx, imagePath, PurposeProduct)
		if err != nil {
			return nil, fmt.Errorf("saving variant image: %w", err)
		}
		variant.Image = ref
	}
	return variant, nil
}

// appendPriceRecord appends a price observation to a catalog variant and
// recomputes its average. SessionID is left unset here: the archived
// session id does not exist yet when an item is checked, and is
// back-filled at finalization.
func (s *Service) appendPriceRecord(ctx context.Context, masterItemID string, variantIndex int, price decimal.Decimal, listName string) error {
	item, err := s.stores.Items.Get(ctx, masterItemID)
	if err != nil {
		return fmt.Errorf("getting master item %s: %w", masterItemID, err)
	}
	variant := item.Variant(variantIndex)
	if variant == nil {
		return fmt.Errorf("variant %d of item %s: %w", variantIndex, masterItemID, ErrNotFound)
	}

	now := s.clock.Now()
	variant.PriceHistory = append(variant.PriceHistory, model.PriceRecord{
		Price:    price,
		Date:     now,
		ListName: listName,
	})
	recomputeAverage(variant)
	variant.UpdatedAt = now
	item.UpdatedAt = now

	if err := s.stores.Items.Save(ctx, item.ID, item); err != nil {
		return fmt.Errorf("saving master item %s: %w", item.ID, err)
	}
	return nil
}
