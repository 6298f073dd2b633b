package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"shoplist/internal/model"
)

// ActiveSession returns the in-progress shopping trip, or nil when there is
// none.
func (s *Service) ActiveSession(ctx context.Context) (*model.ActiveSession, error) {
	sess, err := s.stores.Active.Get(ctx, model.ActiveSessionSlot)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading active session: %w", err)
	}
	if sess.Checked == nil {
		sess.Checked = make(map[string]model.ItemState)
	}
	if sess.Prices == nil {
		sess.Prices = make(map[string]decimal.Decimal)
	}
	return sess, nil
}

// OpenSession starts a shopping trip for the given list, or resumes the
// existing trip when one is already open for that list. Opening while a
// different list's trip is in progress is rejected with ErrSessionActive;
// the caller must cancel or finish it explicitly first.
func (s *Service) OpenSession(ctx context.Context, listID string) (*model.ActiveSession, error) {
	current, err := s.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if current.ListID == listID {
			return current, nil
		}
		return nil, fmt.Errorf("list %q: %w", current.ListName, ErrSessionActive)
	}

	list, err := s.stores.Lists.Get(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("getting list %s: %w", listID, err)
	}

	sess := &model.ActiveSession{
		ID:        s.idgen.New(),
		ListID:    list.ID,
		ListName:  list.Name,
		StartTime: s.clock.Now(),
		Items:     append([]model.ShoppingListItem(nil), list.Items...),
		Checked:   make(map[string]model.ItemState),
		Prices:    make(map[string]decimal.Decimal),
	}
	if err := s.persistSession(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("session opened", "list", list.Name, "items", len(sess.Items))
	return sess, nil
}

// ToggleCheck flips the checked state of an item on the current trip.
// Checking records the effective price and the check time, and appends a
// price observation to the catalog variant (its session id is back-filled
// at finalization). Unchecking removes the key entirely and retains no
// price; already-appended history records are never retracted.
// Returns the new checked state.
func (s *Service) ToggleCheck(ctx context.Context, key string) (bool, error) {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return false, err
	}
	item := sess.FindItem(key)
	if item == nil {
		return false, fmt.Errorf("item %s on this trip: %w", key, ErrNotFound)
	}

	if sess.Checked[key].Checked {
		delete(sess.Checked, key)
		if err := s.persistSession(ctx, sess); err != nil {
			return false, err
		}
		return false, nil
	}

	price := sess.EffectivePrice(item)
	if err := s.appendPriceRecord(ctx, item.MasterItemID, item.VariantIndex, price, sess.ListName); err != nil {
		return false, fmt.Errorf("recording price: %w", err)
	}
	sess.Checked[key] = model.ItemState{
		Checked:   true,
		Price:     price,
		CheckedAt: s.clock.Now(),
	}
	if err := s.persistSession(ctx, sess); err != nil {
		return false, err
	}
	return true, nil
}

// EditPrice records an inline price edit for an item on the current trip.
// The input is parsed as a non-negative decimal; on parse failure or a
// negative value it falls back to the item's catalog last price rather than
// rejecting the edit. Editing an already-checked item also updates the
// stored checked entry so total recalculation stays correct — the normal
// UI path gates on CanEditPrice instead.
// Returns the price that took effect.
func (s *Service) EditPrice(ctx context.Context, key, raw string) (decimal.Decimal, error) {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	item := sess.FindItem(key)
	if item == nil {
		return decimal.Zero, fmt.Errorf("item %s on this trip: %w", key, ErrNotFound)
	}

	price := PriceOrFallback(raw, item.LastPrice)
	sess.Prices[key] = price
	if st, ok := sess.Checked[key]; ok {
		st.Price = price
		sess.Checked[key] = st
	}
	if err := s.persistSession(ctx, sess); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

// AttachReceipt stores a receipt photo on the current trip, replacing and
// deleting any previously attached one.
func (s *Service) AttachReceipt(ctx context.Context, sourcePath string) (model.ImageRef, error) {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return "", err
	}

	ref, err := s.images.Save(ctx, sourcePath, PurposeReceipt)
	if err != nil {
		return "", fmt.Errorf("saving receipt image: %w", err)
	}
	old := sess.Receipt
	sess.Receipt = ref
	if err := s.persistSession(ctx, sess); err != nil {
		return "", err
	}
	if err := s.images.Delete(ctx, old); err != nil {
		s.logger.Warn("deleting replaced receipt image", "ref", old, "error", err)
	}
	return ref, nil
}

// CancelSession discards the current trip without archiving. The attached
// receipt image, if any, is deleted with it. No price history is retracted.
func (s *Service) CancelSession(ctx context.Context) error {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return err
	}
	if err := s.images.Delete(ctx, sess.Receipt); err != nil {
		s.logger.Warn("deleting receipt of cancelled session", "ref", sess.Receipt, "error", err)
	}
	if err := s.stores.Active.Delete(ctx, model.ActiveSessionSlot); err != nil {
		return fmt.Errorf("clearing active session: %w", err)
	}
	s.logger.Info("session cancelled", "list", sess.ListName)
	return nil
}

// requireSession returns the active session or ErrNoActiveSession.
func (s *Service) requireSession(ctx context.Context) (*model.ActiveSession, error) {
	sess, err := s.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	return sess, nil
}

// persistSession writes the full session snapshot to the single slot.
// Every mutation persists the whole state, not a diff.
func (s *Service) persistSession(ctx context.Context, sess *model.ActiveSession) error {
	if err := s.stores.Active.Save(ctx, model.ActiveSessionSlot, sess); err != nil {
		return fmt.Errorf("persisting active session: %w", err)
	}
	return nil
}
