package mirror

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hakimbenali/mizan-backend/internal/config"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"go.uber.org/zap"
)

// unreachableConfig points at a port nothing listens on, with a timeout short
// enough to keep tests fast.
func unreachableConfig() config.MongoConfig {
	return config.MongoConfig{
		URI:            "mongodb://127.0.0.1:1/salesManagement",
		Database:       "salesManagement",
		ConnectTimeout: 300 * time.Millisecond,
	}
}

func newTestMirror(t *testing.T) (Service, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	service, err := NewService(store, zap.NewNop(), unreachableConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service, store
}

func TestCheckConnectionNeverErrors(t *testing.T) {
	service, _ := newTestMirror(t)

	status := service.CheckConnection(context.Background())
	if status == nil {
		t.Fatal("status is nil")
	}
	if status.Connected {
		t.Error("connected = true against an unreachable mirror")
	}
	if status.Error == "" {
		t.Error("status carries no error detail")
	}
	if status.LastChecked == "" {
		t.Error("status carries no check timestamp")
	}
}

func TestUploadFailsWhenUnreachable(t *testing.T) {
	service, _ := newTestMirror(t)
	if _, err := service.Upload(context.Background()); err == nil {
		t.Fatal("Upload succeeded against an unreachable mirror")
	}
}

func TestSmartBackupFallsBackToLocal(t *testing.T) {
	service, store := newTestMirror(t)
	ctx := context.Background()

	if _, err := store.Add(ctx, storage.CollectionProducts, storage.Record{"name": "Sugar"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	result, err := service.SmartBackup(ctx)
	if err != nil {
		t.Fatalf("SmartBackup: %v", err)
	}
	if result.Method != "local" {
		t.Errorf("method = %q, want local fallback", result.Method)
	}
	if result.BackupFile == "" {
		t.Fatal("no backup file in result")
	}
	if _, err := os.Stat(result.BackupFile); err != nil {
		t.Errorf("backup file missing: %v", err)
	}
	if result.DataSummary[storage.CollectionProducts] != 1 {
		t.Errorf("summary = %v", result.DataSummary)
	}
}

func TestLocalBackupSummaryCounts(t *testing.T) {
	service, store := newTestMirror(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Add(ctx, storage.CollectionExpenses, storage.Record{"description": "x"}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	result, err := service.LocalBackup(ctx)
	if err != nil {
		t.Fatalf("LocalBackup: %v", err)
	}
	if result.DataSummary[storage.CollectionExpenses] != 3 {
		t.Errorf("expenses count = %d, want 3", result.DataSummary[storage.CollectionExpenses])
	}
	if result.DataSummary[storage.CollectionSales] != 0 {
		t.Errorf("sales count = %d, want 0", result.DataSummary[storage.CollectionSales])
	}
}

func TestResetModels(t *testing.T) {
	service, _ := newTestMirror(t)
	if err := service.ResetModels(context.Background()); err != nil {
		t.Fatalf("ResetModels: %v", err)
	}
	// State is reusable after a reset.
	status := service.CheckConnection(context.Background())
	if status.Connected {
		t.Error("connected = true against an unreachable mirror")
	}
}
