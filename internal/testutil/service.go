package testutil

import (
	"shoplist/internal/blob"
	"shoplist/internal/encryption"
	"shoplist/internal/images"
	"shoplist/internal/model"
	"shoplist/internal/shop"
	"shoplist/internal/store"
)

// Fixture bundles a Service wired over in-memory dependencies, with
// handles to the stubs for inspection.
type Fixture struct {
	Service *shop.Service
	Blobs   *blob.MemoryStore
	Images  *images.Store
	Stats   *StubStatsIndex
	Clock   *StubClock
	IDs     *StubIDGenerator
}

// NewFixture creates a Service over a MemoryStore with a fixed clock,
// sequential IDs, a recording stats index and the test encryptor.
func NewFixture() *Fixture {
	return newFixture(nil)
}

// NewFixtureOn is like NewFixture but uses the given blob store instead
// of a plain MemoryStore. The Blobs handle is nil in that case.
func NewFixtureOn(blobs shop.BlobStore) *Fixture {
	return newFixture(blobs)
}

func newFixture(blobs shop.BlobStore) *Fixture {
	f := &Fixture{
		Stats: NewStubStatsIndex(),
		Clock: FixedClock(),
		IDs:   NewStubIDGenerator(),
	}
	if blobs == nil {
		f.Blobs = blob.NewMemoryStore()
		blobs = f.Blobs
	}
	logger := shop.NewNopLogger()
	f.Images = images.NewStore(blobs, f.Clock, logger)
	stores := shop.Stores{
		Items:    store.New[model.MasterItem]("master_items", blobs, logger),
		Lists:    store.New[model.ShoppingList]("shopping_lists", blobs, logger),
		Sessions: store.New[model.ShoppingSession]("sessions", blobs, logger),
		Active:   store.New[model.ActiveSession]("active_session", blobs, logger),
	}
	f.Service = shop.NewService(stores, f.Images, f.Stats, encryption.NewTestEncryptor(), logger, f.Clock, f.IDs)
	return f
}
