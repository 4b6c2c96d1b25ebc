package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
)

// IntentKind names the two-step operation a marker belongs to.
type IntentKind string

const (
	// IntentSale marks a sale record inserted but its stock deduction
	// possibly not yet applied.
	IntentSale IntentKind = "sale"
	// IntentCancelSale marks a cancellation in flight: stock restore and
	// sale deletion possibly incomplete.
	IntentCancelSale IntentKind = "cancel_sale"
)

// Intent is a write-ahead marker for one two-step stock operation. It is
// written before the second mutation and removed once both steps are on
// disk, so a crash mid-sequence is detectable and replayable on restart.
type Intent struct {
	ID          string     `json:"id"`
	Kind        IntentKind `json:"kind"`
	SaleID      int64      `json:"sale_id"`
	ProductID   int64      `json:"product_id"`
	WeightGrams int64      `json:"weight_grams"`
	CreatedAt   string     `json:"created_at"`
}

// IntentLog stores one marker file per pending operation under
// <data dir>/intents.
type IntentLog struct {
	dir string
}

// NewIntentLog ensures the intents directory exists.
func NewIntentLog(dataDir string) (*IntentLog, error) {
	dir := filepath.Join(dataDir, "intents")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &apperr.StorageError{Op: "init", Collection: "intents", Err: err}
	}
	return &IntentLog{dir: dir}, nil
}

// Begin writes a marker file and returns the completed intent.
func (l *IntentLog) Begin(kind IntentKind, saleID, productID, weightGrams int64) (*Intent, error) {
	intent := &Intent{
		ID:          uuid.NewString(),
		Kind:        kind,
		SaleID:      saleID,
		ProductID:   productID,
		WeightGrams: weightGrams,
		CreatedAt:   Timestamp(time.Now()),
	}
	raw, err := json.MarshalIndent(intent, "", "  ")
	if err != nil {
		return nil, &apperr.StorageError{Op: "intent", Collection: "intents", Err: err}
	}
	if err := os.WriteFile(l.path(intent.ID), raw, 0o644); err != nil {
		return nil, &apperr.StorageError{Op: "intent", Collection: "intents", Err: err}
	}
	return intent, nil
}

// Clear removes a marker once both steps of its operation are durable.
func (l *IntentLog) Clear(id string) error {
	err := os.Remove(l.path(id))
	if err != nil && !os.IsNotExist(err) {
		return &apperr.StorageError{Op: "intent", Collection: "intents", Err: err}
	}
	return nil
}

// Pending lists every unresolved marker, oldest first.
func (l *IntentLog) Pending() ([]*Intent, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, &apperr.StorageError{Op: "intent", Collection: "intents", Err: err}
	}
	intents := make([]*Intent, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			return nil, &apperr.StorageError{Op: "intent", Collection: "intents", Err: err}
		}
		var intent Intent
		if err := json.Unmarshal(raw, &intent); err != nil {
			// An unreadable marker cannot be replayed; skip it rather than
			// block startup.
			continue
		}
		intents = append(intents, &intent)
	}
	return intents, nil
}

func (l *IntentLog) path(id string) string {
	return filepath.Join(l.dir, id+".json")
}
