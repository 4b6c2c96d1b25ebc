package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIntentBeginPendingClear(t *testing.T) {
	log, err := NewIntentLog(t.TempDir())
	if err != nil {
		t.Fatalf("NewIntentLog: %v", err)
	}

	intent, err := log.Begin(IntentSale, 3, 1, 500)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if intent.ID == "" {
		t.Fatal("intent has empty id")
	}

	pending, err := log.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	got := pending[0]
	if got.Kind != IntentSale || got.SaleID != 3 || got.ProductID != 1 || got.WeightGrams != 500 {
		t.Errorf("pending intent = %+v", got)
	}

	if err := log.Clear(intent.ID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	pending, err = log.Pending()
	if err != nil {
		t.Fatalf("Pending after clear: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after clear = %d, want 0", len(pending))
	}
}

func TestIntentClearIsIdempotent(t *testing.T) {
	log, err := NewIntentLog(t.TempDir())
	if err != nil {
		t.Fatalf("NewIntentLog: %v", err)
	}
	if err := log.Clear("no-such-intent"); err != nil {
		t.Errorf("Clear missing marker: %v", err)
	}
}

func TestPendingSkipsUnreadableMarkers(t *testing.T) {
	dir := t.TempDir()
	log, err := NewIntentLog(dir)
	if err != nil {
		t.Fatalf("NewIntentLog: %v", err)
	}
	if _, err := log.Begin(IntentCancelSale, 1, 1, 100); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	corrupt := filepath.Join(dir, "intents", "garbage.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt marker: %v", err)
	}

	pending, err := log.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %d, want 1 (corrupt marker skipped)", len(pending))
	}
}
