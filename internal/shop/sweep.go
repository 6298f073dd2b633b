package shop

import (
	"context"
	"fmt"

	"shoplist/internal/model"
)

// CollectImageRefs gathers every image reference held by a live record:
// variant photos, price-record receipts, list-item snapshots, archived
// session receipts, and the active session's receipt. The result is the
// valid set for an orphan sweep.
func (s *Service) CollectImageRefs(ctx context.Context) (map[model.ImageRef]bool, error) {
	valid := make(map[model.ImageRef]bool)
	add := func(ref model.ImageRef) {
		if ref != "" {
			valid[ref] = true
		}
	}

	items, err := s.stores.Items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting catalog refs: %w", err)
	}
	for _, item := range items {
		for i := range item.Variants {
			add(item.Variants[i].Image)
			for _, rec := range item.Variants[i].PriceHistory {
				add(rec.Receipt)
			}
		}
	}

	lists, err := s.stores.Lists.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting list refs: %w", err)
	}
	for _, list := range lists {
		for i := range list.Items {
			add(list.Items[i].Image)
		}
	}

	sessions, err := s.stores.Sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting session refs: %w", err)
	}
	for _, sess := range sessions {
		add(sess.Receipt)
	}

	active, err := s.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		add(active.Receipt)
		for i := range active.Items {
			add(active.Items[i].Image)
		}
	}

	return valid, nil
}

// SweepOrphanImages deletes stored images no live record references.
// Intended to run opportunistically at startup; callers swallow the error.
// Candidates are listed before the valid set is collected: an image saved
// by a concurrent operation is never among the candidates, so it cannot be
// deleted before its record lands.
func (s *Service) SweepOrphanImages(ctx context.Context) (int, error) {
	candidates, err := s.images.ListStored(ctx)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}
	valid, err := s.CollectImageRefs(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.images.SweepOrphans(ctx, candidates, valid)
	if n > 0 {
		s.logger.Info("orphan images removed", "count", n)
	}
	return n, err
}
