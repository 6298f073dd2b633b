package shop

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shoplist/internal/model"
)

// ListLists returns all shopping lists ordered by most recently updated.
func (s *Service) ListLists(ctx context.Context) ([]*model.ShoppingList, error) {
	lists, err := s.stores.Lists.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing shopping lists: %w", err)
	}
	sort.Slice(lists, func(i, j int) bool {
		return lists[i].UpdatedAt.After(lists[j].UpdatedAt)
	})
	return lists, nil
}

// GetList returns one shopping list by id.
func (s *Service) GetList(ctx context.Context, id string) (*model.ShoppingList, error) {
	list, err := s.stores.Lists.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting list %s: %w", id, err)
	}
	return list, nil
}

// CreateList creates an empty named list.
func (s *Service) CreateList(ctx context.Context, name string) (*model.ShoppingList, error) {
	if strings.TrimSpace(name) == "" {
		return nil, Validationf("list name is required")
	}
	now := s.clock.Now()
	list := &model.ShoppingList{
		ID:        s.idgen.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.stores.Lists.Save(ctx, list.ID, list); err != nil {
		return nil, fmt.Errorf("saving list: %w", err)
	}
	s.logger.Info("list created", "id", list.ID, "name", list.Name)
	return list, nil
}

// SaveList validates and upserts a list.
func (s *Service) SaveList(ctx context.Context, list *model.ShoppingList) error {
	if strings.TrimSpace(list.Name) == "" {
		return Validationf("list name is required")
	}
	list.UpdatedAt = s.clock.Now()
	if err := s.stores.Lists.Save(ctx, list.ID, list); err != nil {
		return fmt.Errorf("saving list %s: %w", list.ID, err)
	}
	return nil
}

// DeleteList removes a list. Item snapshots are owned by the list and
// disappear with it; the catalog is untouched.
func (s *Service) DeleteList(ctx context.Context, id string) error {
	if err := s.stores.Lists.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting list %s: %w", id, err)
	}
	return nil
}

// AddCatalogItem copies the variant's current brand, price, average, and
// image into a new snapshot on the list. The snapshot freezes what the user
// saw: later catalog edits do not retroactively change it. Adding a
// masterItemId+variantIndex key that is already on the list is rejected.
func (s *Service) AddCatalogItem(ctx context.Context, listID, masterItemID string, variantIndex int) error {
	list, err := s.stores.Lists.Get(ctx, listID)
	if err != nil {
		return fmt.Errorf("getting list %s: %w", listID, err)
	}

	key := model.ItemKey(masterItemID, variantIndex)
	if list.FindItem(key) != nil {
		return &ValidationError{
			Reason: fmt.Sprintf("item is already on list %q", list.Name),
			Err:    ErrDuplicateListItem,
		}
	}

	item, err := s.stores.Items.Get(ctx, masterItemID)
	if err != nil {
		return fmt.Errorf("getting master item %s: %w", masterItemID, err)
	}
	variant := item.Variant(variantIndex)
	if variant == nil {
		return fmt.Errorf("variant %d of item %s: %w", variantIndex, masterItemID, ErrNotFound)
	}

	now := s.clock.Now()
	list.Items = append(list.Items, model.ShoppingListItem{
		MasterItemID: item.ID,
		VariantIndex: variantIndex,
		Name:         item.Name,
		Brand:        variant.Brand,
		LastPrice:    variant.DefaultPrice,
		AveragePrice: variant.AveragePrice,
		PriceAtAdd:   variant.DefaultPrice,
		Image:        variant.Image,
		AddedAt:      now,
	})
	list.UpdatedAt = now

	if err := s.stores.Lists.Save(ctx, list.ID, list); err != nil {
		return fmt.Errorf("saving list %s: %w", list.ID, err)
	}
	s.logger.Debug("item added to list", "list", list.Name, "key", key)
	return nil
}

// RemoveItem removes the snapshot with the given key from a list.
// Removing an absent key is a no-op.
func (s *Service) RemoveItem(ctx context.Context, listID, masterItemID string, variantIndex int) error {
	list, err := s.stores.Lists.Get(ctx, listID)
	if err != nil {
		return fmt.Errorf("getting list %s: %w", listID, err)
	}

	key := model.ItemKey(masterItemID, variantIndex)
	kept := list.Items[:0]
	for _, it := range list.Items {
		if it.Key() != key {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(list.Items) {
		return nil
	}
	list.Items = kept
	list.UpdatedAt = s.clock.Now()

	if err := s.stores.Lists.Save(ctx, list.ID, list); err != nil {
		return fmt.Errorf("saving list %s: %w", list.ID, err)
	}
	return nil
}
