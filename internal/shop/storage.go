package shop

import (
	"context"

	"shoplist/internal/model"
)

// The collection interfaces below describe per-record persistence of one
// entity collection. List imposes no order (callers sort), individual
// malformed records are skipped rather than failing the call, Save is an
// idempotent upsert, and Delete of an absent id is a no-op. I/O failures
// surface as *StorageError; Get of a missing id returns ErrNotFound.

// MasterItemStore persists the master-item catalog.
type MasterItemStore interface {
	List(ctx context.Context) ([]*model.MasterItem, error)
	Get(ctx context.Context, id string) (*model.MasterItem, error)
	Save(ctx context.Context, id string, rec *model.MasterItem) error
	Delete(ctx context.Context, id string) error
}

// ListStore persists shopping lists.
type ListStore interface {
	List(ctx context.Context) ([]*model.ShoppingList, error)
	Get(ctx context.Context, id string) (*model.ShoppingList, error)
	Save(ctx context.Context, id string, rec *model.ShoppingList) error
	Delete(ctx context.Context, id string) error
}

// SessionStore persists the completed-session archive.
type SessionStore interface {
	List(ctx context.Context) ([]*model.ShoppingSession, error)
	Get(ctx context.Context, id string) (*model.ShoppingSession, error)
	Save(ctx context.Context, id string, rec *model.ShoppingSession) error
	Delete(ctx context.Context, id string) error
}

// ActiveSessionStore persists the single active-session slot. Only
// model.ActiveSessionSlot is ever used as the id.
type ActiveSessionStore interface {
	Get(ctx context.Context, id string) (*model.ActiveSession, error)
	Save(ctx context.Context, id string, rec *model.ActiveSession) error
	Delete(ctx context.Context, id string) error
}

// Stores bundles the four entity collections the service operates on.
type Stores struct {
	Items    MasterItemStore
	Lists    ListStore
	Sessions SessionStore
	Active   ActiveSessionStore
}
