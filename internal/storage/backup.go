package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hakimbenali/mizan-backend/internal/apperr"
)

// Snapshot is the on-disk shape of one local backup file: all four
// collections plus the moment the backup was taken.
type Snapshot struct {
	Products             []Record `json:"products"`
	Sales                []Record `json:"sales"`
	Expenses             []Record `json:"expenses"`
	InventoryAdjustments []Record `json:"inventory_adjustments"`
	BackupDate           string   `json:"backup_date"`
}

// Backup serializes every collection into one timestamped snapshot file
// under the backups subdirectory and returns its path.
func (s *Store) Backup(ctx context.Context) (string, error) {
	backupDir := filepath.Join(s.dir, "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", &apperr.StorageError{Op: "backup", Collection: "backups", Err: err}
	}

	snap := Snapshot{BackupDate: Timestamp(time.Now())}
	var err error
	if snap.Products, err = s.GetAll(ctx, CollectionProducts); err != nil {
		return "", err
	}
	if snap.Sales, err = s.GetAll(ctx, CollectionSales); err != nil {
		return "", err
	}
	if snap.Expenses, err = s.GetAll(ctx, CollectionExpenses); err != nil {
		return "", err
	}
	if snap.InventoryAdjustments, err = s.GetAll(ctx, CollectionAdjustments); err != nil {
		return "", err
	}

	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(snap.BackupDate)
	file := filepath.Join(backupDir, "backup-"+stamp+".json")

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", &apperr.StorageError{Op: "backup", Collection: "backups", Err: err}
	}
	if err := os.WriteFile(file, raw, 0o644); err != nil {
		return "", &apperr.StorageError{Op: "backup", Collection: "backups", Err: err}
	}
	return file, nil
}

// Restore overwrites all four collections from one snapshot file. A missing
// key in the snapshot restores the collection to empty.
func (s *Store) Restore(ctx context.Context, file string) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return &apperr.StorageError{Op: "restore", Collection: file, Err: err}
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return &apperr.StorageError{Op: "restore", Collection: file, Err: err}
	}

	if err := s.ReplaceAll(ctx, CollectionProducts, snap.Products); err != nil {
		return err
	}
	if err := s.ReplaceAll(ctx, CollectionSales, snap.Sales); err != nil {
		return err
	}
	if err := s.ReplaceAll(ctx, CollectionExpenses, snap.Expenses); err != nil {
		return err
	}
	return s.ReplaceAll(ctx, CollectionAdjustments, snap.InventoryAdjustments)
}
