package shop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"shoplist/internal/model"
)

// backupVersion is the bundle format version for encrypted backups.
const backupVersion = 1

// backupBundle is the plaintext shape of an encrypted backup: every record
// of every collection in one document. Image bytes are not bundled — refs
// are, and a missing image degrades to a missing thumbnail.
type backupBundle struct {
	Version     int                      `json:"version"`
	CreatedAt   time.Time                `json:"createdAt"`
	MasterItems []*model.MasterItem      `json:"masterItems"`
	Lists       []*model.ShoppingList    `json:"lists"`
	Sessions    []*model.ShoppingSession `json:"sessions"`
	Active      *model.ActiveSession     `json:"activeSession,omitempty"`
}

// BackupCounts reports what a restore brought back.
type BackupCounts struct {
	MasterItems int
	Lists       int
	Sessions    int
}

// ExportBackup writes an age-encrypted bundle of all persisted data to w.
func (s *Service) ExportBackup(ctx context.Context, w io.Writer, passphrase string) error {
	if s.enc == nil {
		return fmt.Errorf("no encryptor configured")
	}
	if passphrase == "" {
		return Validationf("passphrase is required")
	}

	bundle := backupBundle{
		Version:   backupVersion,
		CreatedAt: s.clock.Now(),
	}
	var err error
	if bundle.MasterItems, err = s.stores.Items.List(ctx); err != nil {
		return fmt.Errorf("collecting master items: %w", err)
	}
	if bundle.Lists, err = s.stores.Lists.List(ctx); err != nil {
		return fmt.Errorf("collecting lists: %w", err)
	}
	if bundle.Sessions, err = s.stores.Sessions.List(ctx); err != nil {
		return fmt.Errorf("collecting sessions: %w", err)
	}
	if bundle.Active, err = s.ActiveSession(ctx); err != nil {
		return fmt.Errorf("collecting active session: %w", err)
	}

	plain, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if err := s.enc.Encrypt(passphrase, bytes.NewReader(plain), w); err != nil {
		return fmt.Errorf("encrypting backup: %w", err)
	}
	s.logger.Info("backup written", "items", len(bundle.MasterItems),
		"lists", len(bundle.Lists), "sessions", len(bundle.Sessions))
	return nil
}

// ImportBackup decrypts a bundle from r and upserts every record it
// contains. Existing records with matching ids are overwritten; records not
// in the bundle are left alone.
func (s *Service) ImportBackup(ctx context.Context, r io.Reader, passphrase string) (*BackupCounts, error) {
	if s.enc == nil {
		return nil, fmt.Errorf("no encryptor configured")
	}
	if passphrase == "" {
		return nil, Validationf("passphrase is required")
	}

	var plain bytes.Buffer
	if err := s.enc.Decrypt(passphrase, r, &plain); err != nil {
		return nil, fmt.Errorf("decrypting backup: %w", err)
	}
	var bundle backupBundle
	if err := json.Unmarshal(plain.Bytes(), &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if bundle.Version > backupVersion {
		return nil, fmt.Errorf("%w: backup version %d, supported up to %d",
			ErrUnsupportedVersion, bundle.Version, backupVersion)
	}

	counts := &BackupCounts{}
	for _, item := range bundle.MasterItems {
		if err := s.stores.Items.Save(ctx, item.ID, item); err != nil {
			return counts, fmt.Errorf("restoring master item %s: %w", item.ID, err)
		}
		counts.MasterItems++
	}
	for _, list := range bundle.Lists {
		if err := s.stores.Lists.Save(ctx, list.ID, list); err != nil {
			return counts, fmt.Errorf("restoring list %s: %w", list.ID, err)
		}
		counts.Lists++
	}
	for _, sess := range bundle.Sessions {
		if err := s.stores.Sessions.Save(ctx, sess.ID, sess); err != nil {
			return counts, fmt.Errorf("restoring session %s: %w", sess.ID, err)
		}
		counts.Sessions++
	}
	if bundle.Active != nil {
		if err := s.stores.Active.Save(ctx, model.ActiveSessionSlot, bundle.Active); err != nil {
			return counts, fmt.Errorf("restoring active session: %w", err)
		}
	}
	s.logger.Info("backup restored", "items", counts.MasterItems,
		"lists", counts.Lists, "sessions", counts.Sessions)
	return counts, nil
}
