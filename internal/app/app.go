package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"shoplist/internal/blob"
	"shoplist/internal/config"
	"shoplist/internal/encryption"
	"shoplist/internal/images"
	"shoplist/internal/model"
	"shoplist/internal/shop"
	"shoplist/internal/stats"
	"shoplist/internal/store"
)

// Collection names as persisted on the blob store.
const (
	collMasterItems = "master_items"
	collLists       = "shopping_lists"
	collSessions    = "sessions"
	collActive      = "active_session"
)

// App is the application layer between the CLI and the shop.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string input, and manages resource lifecycle on Close.
type App struct {
	cfg     *config.Config
	blobs   shop.BlobStore
	stats   shop.StatsIndex
	service *shop.Service
	logFile *os.File

	sweep sync.WaitGroup
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "OpenSession").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	blobs, err := blob.NewBlobStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}
	if err := blobs.ValidateSetup(ctx); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("validating blob store: %w", err)
	}

	index, err := stats.NewIndexFromConfig(cfg.Stats)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating stats index: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		if index != nil {
			index.Close()
		}
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	clock := shop.RealClock{}
	imgs := images.NewStore(blobs, clock, log)
	stores := shop.Stores{
		Items:    store.New[model.MasterItem](collMasterItems, blobs, log),
		Lists:    store.New[model.ShoppingList](collLists, blobs, log),
		Sessions: store.New[model.ShoppingSession](collSessions, blobs, log),
		Active:   store.New[model.ActiveSession](collActive, blobs, log),
	}
	svc := shop.NewService(stores, imgs, index, enc, log, clock, shop.UUIDGenerator{})

	a := &App{
		cfg:     cfg,
		blobs:   blobs,
		stats:   index,
		service: svc,
		logFile: logFile,
	}

	// Opportunistic orphan-image sweep. Never blocks readiness, never
	// fails the command; Close waits for it.
	a.sweep.Add(1)
	go func() {
		defer a.sweep.Done()
		if _, err := svc.SweepOrphanImages(context.Background()); err != nil {
			log.Warn("orphan sweep failed", "error", err)
		}
	}()

	return a, nil
}

// Close waits for background work and releases all resources.
func (a *App) Close() error {
	a.sweep.Wait()

	var firstErr error
	if a.stats != nil {
		if err := a.stats.Close(); err != nil {
			firstErr = fmt.Errorf("closing stats index: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// Catalog operations

func (a *App) ListMasterItems(ctx context.Context) ([]*model.MasterItem, error) {
	return a.service.ListMasterItems(ctx)
}

func (a *App) GetMasterItem(ctx context.Context, id string) (*model.MasterItem, error) {
	return a.service.GetMasterItem(ctx, id)
}

// CreateMasterItem parses the raw price and creates a catalog item with its
// first variant.
func (a *App) CreateMasterItem(ctx context.Context, name, brand, priceRaw, imagePath string) (*model.MasterItem, error) {
	price, err := shop.ParsePrice(priceRaw)
	if err != nil {
		return nil, err
	}
	return a.service.CreateMasterItem(ctx, name, brand, price, imagePath)
}

func (a *App) AddVariant(ctx context.Context, itemID, brand, priceRaw, imagePath string) error {
	price, err := shop.ParsePrice(priceRaw)
	if err != nil {
		return err
	}
	return a.service.AddVariant(ctx, itemID, brand, price, imagePath)
}

func (a *App) UpdateVariant(ctx context.Context, itemID string, variantIndex int, brand, priceRaw, imagePath string) error {
	price, err := shop.ParsePrice(priceRaw)
	if err != nil {
		return err
	}
	return a.service.UpdateVariant(ctx, itemID, variantIndex, brand, price, imagePath)
}

func (a *App) DeleteVariant(ctx context.Context, itemID string, variantIndex int) error {
	return a.service.DeleteVariant(ctx, itemID, variantIndex)
}

func (a *App) DeleteMasterItem(ctx context.Context, id string) error {
	return a.service.DeleteMasterItem(ctx, id)
}

// List operations

func (a *App) ListLists(ctx context.Context) ([]*model.ShoppingList, error) {
	return a.service.ListLists(ctx)
}

func (a *App) GetList(ctx context.Context, id string) (*model.ShoppingList, error) {
	return a.service.GetList(ctx, id)
}

func (a *App) CreateList(ctx context.Context, name string) (*model.ShoppingList, error) {
	return a.service.CreateList(ctx, name)
}

func (a *App) DeleteList(ctx context.Context, id string) error {
	return a.service.DeleteList(ctx, id)
}

func (a *App) AddCatalogItem(ctx context.Context, listID, masterItemID string, variantIndex int) error {
	return a.service.AddCatalogItem(ctx, listID, masterItemID, variantIndex)
}

func (a *App) RemoveItem(ctx context.Context, listID, masterItemID string, variantIndex int) error {
	return a.service.RemoveItem(ctx, listID, masterItemID, variantIndex)
}

// Session operations

func (a *App) ActiveSession(ctx context.Context) (*model.ActiveSession, error) {
	return a.service.ActiveSession(ctx)
}

// OpenSession starts or resumes a trip for listID. With replace set, an
// open trip for a different list is cancelled first instead of blocking.
func (a *App) OpenSession(ctx context.Context, listID string, replace bool) (*model.ActiveSession, error) {
	sess, err := a.service.OpenSession(ctx, listID)
	if err == nil || !errors.Is(err, shop.ErrSessionActive) || !replace {
		return sess, err
	}
	if err := a.service.CancelSession(ctx); err != nil {
		return nil, fmt.Errorf("cancelling previous session: %w", err)
	}
	return a.service.OpenSession(ctx, listID)
}

func (a *App) ToggleCheck(ctx context.Context, key string) (bool, error) {
	return a.service.ToggleCheck(ctx, key)
}

// EditPrice applies an inline price edit. Checked items are locked: the
// edit is rejected until the item is unchecked.
func (a *App) EditPrice(ctx context.Context, key, raw string) (decimal.Decimal, error) {
	sess, err := a.service.ActiveSession(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if sess == nil {
		return decimal.Zero, shop.ErrNoActiveSession
	}
	if !sess.CanEditPrice(key) {
		return decimal.Zero, shop.Validationf("item is checked; uncheck it to edit the price")
	}
	return a.service.EditPrice(ctx, key, raw)
}

func (a *App) AttachReceipt(ctx context.Context, imagePath string) (model.ImageRef, error) {
	return a.service.AttachReceipt(ctx, imagePath)
}

func (a *App) CompleteSession(ctx context.Context, actualPaidRaw string) (*model.ShoppingSession, error) {
	return a.service.FinalizeSession(ctx, actualPaidRaw)
}

func (a *App) CancelSession(ctx context.Context) error {
	return a.service.CancelSession(ctx)
}

// Archive operations

func (a *App) ListSessions(ctx context.Context) ([]*model.ShoppingSession, error) {
	return a.service.ListSessions(ctx)
}

func (a *App) GetSession(ctx context.Context, id string) (*model.ShoppingSession, error) {
	return a.service.GetSession(ctx, id)
}

func (a *App) DeleteSession(ctx context.Context, id string) error {
	return a.service.DeleteSession(ctx, id)
}

// Share operations

// ExportListToFile writes a list in the portable .shoplist format.
func (a *App) ExportListToFile(ctx context.Context, listID, path string) error {
	data, err := a.service.ExportList(ctx, listID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}

// ImportListFromFile reads a .shoplist file and creates a new list from it.
func (a *App) ImportListFromFile(ctx context.Context, path string) (*model.ShoppingList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	return a.service.ImportList(ctx, data)
}

// Reporting operations

func (a *App) SpendingByMonth(ctx context.Context) ([]shop.MonthlySpend, error) {
	if a.stats == nil {
		return nil, fmt.Errorf("stats are disabled in config")
	}
	return a.stats.SpendingByMonth(ctx)
}

func (a *App) TopItems(ctx context.Context, limit int) ([]shop.TopItem, error) {
	if a.stats == nil {
		return nil, fmt.Errorf("stats are disabled in config")
	}
	return a.stats.TopItems(ctx, limit)
}

// RebuildStats replays the session archive into the stats index.
func (a *App) RebuildStats(ctx context.Context) (int, error) {
	if a.stats == nil {
		return 0, fmt.Errorf("stats are disabled in config")
	}
	sessions, err := a.service.ListSessions(ctx)
	if err != nil {
		return 0, err
	}
	if err := a.stats.Rebuild(ctx, sessions); err != nil {
		return 0, err
	}
	return len(sessions), nil
}

// Backup operations

func (a *App) Backup(ctx context.Context, path, passphrase string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	defer f.Close()
	return a.service.ExportBackup(ctx, f, passphrase)
}

func (a *App) Restore(ctx context.Context, path, passphrase string) (*shop.BackupCounts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening backup file: %w", err)
	}
	defer f.Close()
	return a.service.ImportBackup(ctx, f, passphrase)
}
