package shop

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// ExportList serializes a list into the portable .shoplist format.
// Prices and images are stripped by the codec.
func (s *Service) ExportList(ctx context.Context, listID string) ([]byte, error) {
	list, err := s.stores.Lists.Get(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("getting list %s: %w", listID, err)
	}
	return s.codec.Encode(list, s.clock.Now())
}

// ImportList validates a .shoplist file and constructs a new list from it:
// fresh id, name suffixed "(imported)", every price zeroed. Imported lists
// never inherit price data, even when a matching master item exists
// locally; history is rebuilt by shopping again. Nothing is written when
// validation fails.
func (s *Service) ImportList(ctx context.Context, data []byte) (*model.ShoppingList, error) {
	payload, err := s.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	list := &model.ShoppingList{
		ID:        s.idgen.New(),
		Name:      payload.List.Name + " (imported)",
		Items:     make([]model.ShoppingListItem, 0, len(payload.List.Items)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, it := range payload.List.Items {
		list.Items = append(list.Items, model.ShoppingListItem{
			MasterItemID: it.MasterItemID,
			VariantIndex: it.VariantIndex,
			Name:         it.Name,
			Brand:        it.Brand,
			LastPrice:    decimal.Zero,
			AveragePrice: decimal.Zero,
			PriceAtAdd:   decimal.Zero,
			AddedAt:      now,
		})
	}

	if err := s.stores.Lists.Save(ctx, list.ID, list); err != nil {
		return nil, fmt.Errorf("saving imported list: %w", err)
	}
	s.logger.Info("list imported", "name", list.Name, "items", len(list.Items))
	return list, nil
}
