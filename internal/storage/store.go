// Package storage implements the file-backed record store: one JSON array
// file per collection, whole-file rewrite on every mutation, ids assigned as
// max+1 under a per-collection mutex. The mutex serializes operations within
// this process only; concurrent writers from other processes remain
// uncoordinated.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/shopspring/decimal"
)

// Known collections. The store lazily re-creates any missing file as an
// empty array instead of erroring.
const (
	CollectionProducts    = "products"
	CollectionSales       = "sales"
	CollectionExpenses    = "expenses"
	CollectionAdjustments = "inventory_adjustments"
)

// Collections lists every collection the store manages, in backup order.
var Collections = []string{
	CollectionProducts,
	CollectionSales,
	CollectionExpenses,
	CollectionAdjustments,
}

func init() {
	// Money fields (decimal.Decimal) must serialize as plain JSON numbers so
	// the on-disk files keep the same shape as hand-written fixtures.
	decimal.MarshalJSONWithoutQuotes = true
}

// Record is one stored JSON object. Numbers read back from disk are float64.
type Record map[string]any

// Store is the durable mapping from collection name to an ordered sequence
// of records.
type Store struct {
	dir string
	mu  map[string]*sync.Mutex
}

// New ensures the data directory and every collection file exist and returns
// a ready store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &apperr.StorageError{Op: "init", Collection: dir, Err: err}
	}
	s := &Store{dir: dir, mu: make(map[string]*sync.Mutex, len(Collections))}
	for _, name := range Collections {
		s.mu[name] = &sync.Mutex{}
		if _, err := os.Stat(s.path(name)); os.IsNotExist(err) {
			if err := s.write(name, []Record{}); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Dir returns the data directory the store was opened on.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *Store) lock(collection string) *sync.Mutex {
	mu, ok := s.mu[collection]
	if !ok {
		panic(fmt.Sprintf("storage: unknown collection %q", collection))
	}
	return mu
}

// read loads a collection file. A missing file is re-initialized to an empty
// array rather than treated as an error.
func (s *Store) read(collection string) ([]Record, error) {
	raw, err := os.ReadFile(s.path(collection))
	if os.IsNotExist(err) {
		if werr := s.write(collection, []Record{}); werr != nil {
			return nil, werr
		}
		return []Record{}, nil
	}
	if err != nil {
		return nil, &apperr.StorageError{Op: "read", Collection: collection, Err: err}
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`storage_reads_total{collection=%q}`, collection)).Inc()
	if len(raw) == 0 {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &apperr.StorageError{Op: "decode", Collection: collection, Err: err}
	}
	return records, nil
}

func (s *Store) write(collection string, records []Record) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &apperr.StorageError{Op: "encode", Collection: collection, Err: err}
	}
	if err := os.WriteFile(s.path(collection), raw, 0o644); err != nil {
		return &apperr.StorageError{Op: "write", Collection: collection, Err: err}
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`storage_writes_total{collection=%q}`, collection)).Inc()
	return nil
}

// Add appends a new record: id = max existing id + 1, creation and update
// timestamps stamped in UTC. Returns the full stored record.
func (s *Store) Add(ctx context.Context, collection string, fields Record) (Record, error) {
	mu := s.lock(collection)
	mu.Lock()
	defer mu.Unlock()

	records, err := s.read(collection)
	if err != nil {
		return nil, err
	}

	now := Timestamp(time.Now())
	record := Record{}
	for k, v := range fields {
		record[k] = v
	}
	record["id"] = nextID(records)
	record["created_at"] = now
	record["updated_at"] = now

	records = append(records, record)
	if err := s.write(collection, records); err != nil {
		return nil, err
	}
	return record, nil
}

// Update merges fields into the record with the given id and stamps a fresh
// update timestamp. Returns (nil, nil) when the id is absent; the caller maps
// that to a not-found response.
func (s *Store) Update(ctx context.Context, collection string, id int64, fields Record) (Record, error) {
	mu := s.lock(collection)
	mu.Lock()
	defer mu.Unlock()

	records, err := s.read(collection)
	if err != nil {
		return nil, err
	}
	for i, record := range records {
		if RecordID(record) != id {
			continue
		}
		for k, v := range fields {
			record[k] = v
		}
		record["updated_at"] = Timestamp(time.Now())
		records[i] = record
		if err := s.write(collection, records); err != nil {
			return nil, err
		}
		return record, nil
	}
	return nil, nil
}

// Delete removes the record with the given id, rewriting the file only when
// something was actually removed. Returns whether a record was removed.
func (s *Store) Delete(ctx context.Context, collection string, id int64) (bool, error) {
	mu := s.lock(collection)
	mu.Lock()
	defer mu.Unlock()

	records, err := s.read(collection)
	if err != nil {
		return false, err
	}
	kept := records[:0]
	for _, record := range records {
		if RecordID(record) != id {
			kept = append(kept, record)
		}
	}
	if len(kept) == len(records) {
		return false, nil
	}
	if err := s.write(collection, kept); err != nil {
		return false, err
	}
	return true, nil
}

// FindByID returns the record with the given id, or (nil, nil) when absent.
func (s *Store) FindByID(ctx context.Context, collection string, id int64) (Record, error) {
	records, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if RecordID(record) == id {
			return record, nil
		}
	}
	return nil, nil
}

// FindWhere returns every record whose fields equal the given condition map.
func (s *Store) FindWhere(ctx context.Context, collection string, condition Record) ([]Record, error) {
	records, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	matched := make([]Record, 0, len(records))
	for _, record := range records {
		if matchesEquality(record, condition) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// GetAll returns the full deserialized collection. Callers sort and filter
// themselves.
func (s *Store) GetAll(ctx context.Context, collection string) ([]Record, error) {
	mu := s.lock(collection)
	mu.Lock()
	defer mu.Unlock()
	return s.read(collection)
}

// Count returns the number of records, optionally matching a condition.
func (s *Store) Count(ctx context.Context, collection string, condition Record) (int, error) {
	if len(condition) == 0 {
		records, err := s.GetAll(ctx, collection)
		if err != nil {
			return 0, err
		}
		return len(records), nil
	}
	matched, err := s.FindWhere(ctx, collection, condition)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// ReplaceAll overwrites an entire collection. Used by the mirror download
// path and backup restore; normal mutations go through Add/Update/Delete.
func (s *Store) ReplaceAll(ctx context.Context, collection string, records []Record) error {
	mu := s.lock(collection)
	mu.Lock()
	defer mu.Unlock()
	if records == nil {
		records = []Record{}
	}
	return s.write(collection, records)
}

// nextID computes max existing id + 1 (1 for an empty collection). Ids are
// never reused: deleting the max id record frees its number, but within one
// process the mutex ensures no two concurrent Adds observe the same max.
func nextID(records []Record) int64 {
	var max int64
	for _, record := range records {
		if id := RecordID(record); id > max {
			max = id
		}
	}
	return max + 1
}

// RecordID extracts the integer id of a record regardless of whether it was
// just created (int64) or read back from disk (float64).
func RecordID(record Record) int64 {
	switch v := record["id"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

// TimeLayout is the persisted timestamp format: UTC with fixed millisecond
// precision, so lexicographic order on stored strings is chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp renders a time the way the store persists it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// DayKey is the calendar-day policy for the whole system: stored UTC
// timestamps are converted to the process-local zone and compared as
// YYYY-MM-DD strings.
func DayKey(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}

// Decode converts a record into a typed struct via JSON round-trip.
func Decode(record Record, v any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Encode converts a typed struct into a record via JSON round-trip.
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return record, nil
}
