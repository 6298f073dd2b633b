package shop

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// FinalizeSession archives the current trip as an immutable ShoppingSession
// and clears the active slot.
//
// The archival write is the durability boundary: if it fails, nothing else
// happens and the trip stays open. Everything after it — per-item price
// back-fill, the stats index, clearing the slot — is enrichment: a failure
// for one item is logged and never undoes the saved session or blocks the
// other items.
func (s *Service) FinalizeSession(ctx context.Context, actualPaidRaw string) (*model.ShoppingSession, error) {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := ParsePrice(actualPaidRaw)
	if err != nil {
		return nil, err
	}

	archived := &model.ShoppingSession{
		ID:       s.idgen.New(),
		ListID:   sess.ListID,
		ListName: sess.ListName,
		Date:     s.clock.Now(),
		Total:    paid,
		Receipt:  sess.Receipt,
		Items:    make([]model.SessionItem, 0, len(sess.Items)),
	}
	calculated := decimal.Zero
	for i := range sess.Items {
		item := &sess.Items[i]
		state := sess.Checked[item.Key()]
		price := sess.EffectivePrice(item)
		if state.Checked {
			price = state.Price
			calculated = calculated.Add(price)
		}
		archived.Items = append(archived.Items, model.SessionItem{
			MasterItemID: item.MasterItemID,
			VariantIndex: item.VariantIndex,
			Name:         item.Name,
			Brand:        item.Brand,
			Price:        price,
			Checked:      state.Checked,
		})
	}
	archived.CalculatedTotal = calculated

	if err := s.stores.Sessions.Save(ctx, archived.ID, archived); err != nil {
		return nil, fmt.Errorf("archiving session: %w", err)
	}

	// Back-fill the catalog price records created at check time, per item.
	for i := range sess.Items {
		item := &sess.Items[i]
		if !sess.Checked[item.Key()].Checked {
			continue
		}
		if err := s.backfillPriceRecord(ctx, item.MasterItemID, item.VariantIndex, archived, sess); err != nil {
			s.logger.Warn("price back-fill failed", "key", item.Key(), "error", err)
		}
	}

	if s.stats != nil {
		if err := s.stats.RecordSession(ctx, archived); err != nil {
			s.logger.Warn("stats index update failed", "session", archived.ID, "error", err)
		}
	}

	if err := s.stores.Active.Delete(ctx, model.ActiveSessionSlot); err != nil {
		return archived, fmt.Errorf("clearing active session: %w", err)
	}
	s.logger.Info("session archived", "id", archived.ID, "list", archived.ListName,
		"total", archived.Total, "calculated", archived.CalculatedTotal)
	return archived, nil
}

// backfillPriceRecord finds the most recently appended price record for the
// variant that has no session id yet and a date at or after the trip's
// start, and fills in the session id and receipt reference — exactly once.
// Older records, and records already claimed by a prior session, are never
// touched.
func (s *Service) backfillPriceRecord(ctx context.Context, masterItemID string, variantIndex int, archived *model.ShoppingSession, sess *model.ActiveSession) error {
	item, err := s.stores.Items.Get(ctx, masterItemID)
	if err != nil {
		return fmt.Errorf("getting master item %s: %w", masterItemID, err)
	}
	variant := item.Variant(variantIndex)
	if variant == nil {
		return fmt.Errorf("variant %d of item %s: %w", variantIndex, masterItemID, ErrNotFound)
	}

	for i := len(variant.PriceHistory) - 1; i >= 0; i-- {
		rec := &variant.PriceHistory[i]
		if rec.SessionID != "" || rec.Date.Before(sess.StartTime) {
			continue
		}
		rec.SessionID = archived.ID
		rec.Receipt = archived.Receipt
		if err := s.stores.Items.Save(ctx, item.ID, item); err != nil {
			return fmt.Errorf("saving master item %s: %w", item.ID, err)
		}
		return nil
	}
	// No matching record: the check-time append itself failed. Nothing to do.
	s.logger.Debug("no price record to back-fill", "item", masterItemID, "variant", variantIndex)
	return nil
}

// ListSessions returns the archive ordered by date, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]*model.ShoppingSession, error) {
	sessions, err := s.stores.Sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Date.After(sessions[j].Date)
	})
	return sessions, nil
}

// GetSession returns one archived session by id.
func (s *Service) GetSession(ctx context.Context, id string) (*model.ShoppingSession, error) {
	sess, err := s.stores.Sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return sess, nil
}

// DeleteSession removes an archived session, deleting its receipt image
// first. The stats index is updated best-effort.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	sess, err := s.stores.Sessions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("getting session %s: %w", id, err)
	}
	if err := s.images.Delete(ctx, sess.Receipt); err != nil {
		return fmt.Errorf("deleting session receipt: %w", err)
	}
	if err := s.stores.Sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	if s.stats != nil {
		if err := s.stats.RemoveSession(ctx, id); err != nil {
			s.logger.Warn("stats index removal failed", "session", id, "error", err)
		}
	}
	return nil
}
