package shop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shoplist/internal/blob"
	"shoplist/internal/model"
	"shoplist/internal/shop"
	"shoplist/internal/testutil"
)

func TestService_FinalizeSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("archives all items and keeps both totals", func(t *testing.T) {
		f := testutil.NewFixture()
		a, _ := f.Service.CreateMasterItem(ctx, "Milk", "Acme", dec(t, "2.00"), "")
		b, _ := f.Service.CreateMasterItem(ctx, "Bread", "Baker", dec(t, "3.00"), "")
		list, _ := f.Service.CreateList(ctx, "Groceries")
		f.Service.AddCatalogItem(ctx, list.ID, a.ID, 0)
		f.Service.AddCatalogItem(ctx, list.ID, b.ID, 0)
		if _, err := f.Service.OpenSession(ctx, list.ID); err != nil {
			t.Fatalf("OpenSession() error = %v", err)
		}

		// Check only A; B stays on the list unchecked. The confirmed paid
		// amount disagrees with the calculated sum on purpose.
		if _, err := f.Service.ToggleCheck(ctx, model.ItemKey(a.ID, 0)); err != nil {
			t.Fatalf("ToggleCheck() error = %v", err)
		}
		archived, err := f.Service.FinalizeSession(ctx, "1.50")
		if err != nil {
			t.Fatalf("FinalizeSession() error = %v", err)
		}

		if !archived.Total.Equal(dec(t, "1.50")) {
			t.Errorf("total = %s, want confirmed 1.50", archived.Total)
		}
		if !archived.CalculatedTotal.Equal(dec(t, "2.00")) {
			t.Errorf("calculated total = %s, want 2.00", archived.CalculatedTotal)
		}
		if len(archived.Items) != 2 {
			t.Fatalf("archived items = %d, want 2 (unchecked included)", len(archived.Items))
		}
		for _, it := range archived.Items {
			switch it.MasterItemID {
			case a.ID:
				if !it.Checked {
					t.Error("item A not marked checked")
				}
			case b.ID:
				if it.Checked {
					t.Error("item B marked checked")
				}
				if !it.Price.Equal(dec(t, "3.00")) {
					t.Errorf("unchecked item price = %s, want 3.00", it.Price)
				}
			}
		}

		sess, _ := f.Service.ActiveSession(ctx)
		if sess != nil {
			t.Error("active session not cleared after finalize")
		}
	})

	t.Run("back-fills the session id onto the check-time record", func(t *testing.T) {
		f := testutil.NewFixture()
		itemID, key := seedTrip(t, f)
		ref, err := f.Service.AttachReceipt(ctx, writeTempImage(t))
		if err != nil {
			t.Fatalf("AttachReceipt() error = %v", err)
		}
		if _, err := f.Service.ToggleCheck(ctx, key); err != nil {
			t.Fatalf("ToggleCheck() error = %v", err)
		}

		archived, err := f.Service.FinalizeSession(ctx, "2.00")
		if err != nil {
			t.Fatalf("FinalizeSession() error = %v", err)
		}

		item, _ := f.Service.GetMasterItem(ctx, itemID)
		history := item.Variants[0].PriceHistory
		last := history[len(history)-1]
		if last.SessionID != archived.ID {
			t.Errorf("back-filled session id = %q, want %q", last.SessionID, archived.ID)
		}
		if last.Receipt != ref {
			t.Errorf("back-filled receipt = %q, want %q", last.Receipt, ref)
		}
		// The seed record predates the trip's semantics and stays untouched.
		if history[0].SessionID != "" {
			t.Errorf("seed record session id = %q, want empty", history[0].SessionID)
		}
	})

	t.Run("a second trip never reclaims an earlier record", func(t *testing.T) {
		f := testutil.NewFixture()
		itemID, key := seedTrip(t, f)
		if _, err := f.Service.ToggleCheck(ctx, key); err != nil {
			t.Fatalf("ToggleCheck() error = %v", err)
		}
		first, err := f.Service.FinalizeSession(ctx, "2.00")
		if err != nil {
			t.Fatalf("first FinalizeSession() error = %v", err)
		}

		f.Clock.Advance(time.Hour)
		lists, _ := f.Service.ListLists(ctx)
		if _, err := f.Service.OpenSession(ctx, lists[0].ID); err != nil {
			t.Fatalf("second OpenSession() error = %v", err)
		}
		if _, err := f.Service.ToggleCheck(ctx, key); err != nil {
			t.Fatalf("second ToggleCheck() error = %v", err)
		}
		second, err := f.Service.FinalizeSession(ctx, "2.00")
		if err != nil {
			t.Fatalf("second FinalizeSession() error = %v", err)
		}

		item, _ := f.Service.GetMasterItem(ctx, itemID)
		history := item.Variants[0].PriceHistory
		if len(history) != 3 {
			t.Fatalf("price history = %d records, want 3", len(history))
		}
		if history[1].SessionID != first.ID {
			t.Errorf("first trip record session id = %q, want %q", history[1].SessionID, first.ID)
		}
		if history[2].SessionID != second.ID {
			t.Errorf("second trip record session id = %q, want %q", history[2].SessionID, second.ID)
		}
	})

	t.Run("a back-fill write failure does not undo the archive", func(t *testing.T) {
		fb := &testutil.FailingBlobStore{BlobStore: blob.NewMemoryStore()}
		f := testutil.NewFixtureOn(fb)
		itemID, key := seedTrip(t, f)
		if _, err := f.Service.ToggleCheck(ctx, key); err != nil {
			t.Fatalf("ToggleCheck() error = %v", err)
		}

		// The catalog becomes unwritable between the check and the
		// finalize, so the back-fill cannot land.
		fb.FailPutPrefix = "master_items"
		fb.PutErr = errors.New("write refused")

		archived, err := f.Service.FinalizeSession(ctx, "2.00")
		if err != nil {
			t.Fatalf("FinalizeSession() error = %v", err)
		}

		if _, err := f.Service.GetSession(ctx, archived.ID); err != nil {
			t.Errorf("archived session unreadable: %v", err)
		}
		sess, _ := f.Service.ActiveSession(ctx)
		if sess != nil {
			t.Error("active session not cleared after finalize")
		}

		item, _ := f.Service.GetMasterItem(ctx, itemID)
		history := item.Variants[0].PriceHistory
		last := history[len(history)-1]
		if last.SessionID != "" {
			t.Errorf("record session id = %q, want empty after failed back-fill", last.SessionID)
		}
	})

	t.Run("a stats index failure does not fail the finalize", func(t *testing.T) {
		f := testutil.NewFixture()
		_, key := seedTrip(t, f)
		f.Service.ToggleCheck(ctx, key)
		f.Stats.Err = errors.New("index unavailable")

		archived, err := f.Service.FinalizeSession(ctx, "2.00")
		if err != nil {
			t.Fatalf("FinalizeSession() error = %v", err)
		}
		if _, err := f.Service.GetSession(ctx, archived.ID); err != nil {
			t.Errorf("archived session unreadable: %v", err)
		}
	})

	t.Run("records the session in the stats index", func(t *testing.T) {
		f := testutil.NewFixture()
		_, key := seedTrip(t, f)
		f.Service.ToggleCheck(ctx, key)

		archived, err := f.Service.FinalizeSession(ctx, "2.00")
		if err != nil {
			t.Fatalf("FinalizeSession() error = %v", err)
		}
		if len(f.Stats.Recorded) != 1 || f.Stats.Recorded[0] != archived.ID {
			t.Errorf("stats recorded = %v, want [%s]", f.Stats.Recorded, archived.ID)
		}
	})

	t.Run("rejects a malformed paid amount and keeps the trip open", func(t *testing.T) {
		f := testutil.NewFixture()
		seedTrip(t, f)

		_, err := f.Service.FinalizeSession(ctx, "one fifty")
		if !shop.IsValidation(err) {
			t.Fatalf("FinalizeSession() error = %v, want validation error", err)
		}
		sess, _ := f.Service.ActiveSession(ctx)
		if sess == nil {
			t.Error("trip closed despite rejected input")
		}
	})

	t.Run("no active session", func(t *testing.T) {
		f := testutil.NewFixture()

		_, err := f.Service.FinalizeSession(ctx, "1.00")
		if !errors.Is(err, shop.ErrNoActiveSession) {
			t.Errorf("FinalizeSession() error = %v, want ErrNoActiveSession", err)
		}
	})
}

func TestService_DeleteSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("deletes the receipt and updates the stats index", func(t *testing.T) {
		f := testutil.NewFixture()
		_, key := seedTrip(t, f)
		ref, _ := f.Service.AttachReceipt(ctx, writeTempImage(t))
		f.Service.ToggleCheck(ctx, key)
		archived, err := f.Service.FinalizeSession(ctx, "2.00")
		if err != nil {
			t.Fatalf("FinalizeSession() error = %v", err)
		}

		if err := f.Service.DeleteSession(ctx, archived.ID); err != nil {
			t.Fatalf("DeleteSession() error = %v", err)
		}

		if hasBlob(t, f, string(ref)) {
			t.Errorf("receipt %s still stored", ref)
		}
		if _, err := f.Service.GetSession(ctx, archived.ID); !errors.Is(err, shop.ErrNotFound) {
			t.Errorf("GetSession() after delete error = %v, want ErrNotFound", err)
		}
		if len(f.Stats.Removed) != 1 || f.Stats.Removed[0] != archived.ID {
			t.Errorf("stats removed = %v, want [%s]", f.Stats.Removed, archived.ID)
		}
	})
}

func TestService_ListSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		f := testutil.NewFixture()
		list, _ := f.Service.CreateList(ctx, "Groceries")

		if _, err := f.Service.OpenSession(ctx, list.ID); err != nil {
			t.Fatalf("OpenSession() error = %v", err)
		}
		oldest, err := f.Service.FinalizeSession(ctx, "1.00")
		if err != nil {
			t.Fatalf("FinalizeSession() error = %v", err)
		}

		f.Clock.Advance(24 * time.Hour)
		if _, err := f.Service.OpenSession(ctx, list.ID); err != nil {
			t.Fatalf("second OpenSession() error = %v", err)
		}
		newest, err := f.Service.FinalizeSession(ctx, "2.00")
		if err != nil {
			t.Fatalf("second FinalizeSession() error = %v", err)
		}

		sessions, err := f.Service.ListSessions(ctx)
		if err != nil {
			t.Fatalf("ListSessions() error = %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("sessions = %d, want 2", len(sessions))
		}
		if sessions[0].ID != newest.ID || sessions[1].ID != oldest.ID {
			t.Errorf("order = [%s %s], want [%s %s]",
				sessions[0].ID, sessions[1].ID, newest.ID, oldest.ID)
		}
	})
}
