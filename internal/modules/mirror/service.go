package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hakimbenali/mizan-backend/internal/apperr"
	"github.com/hakimbenali/mizan-backend/internal/config"
	"github.com/hakimbenali/mizan-backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Status reports whether the mirror is reachable. CheckConnection never
// returns an error; unreachability is data, not failure.
type Status struct {
	Connected    bool   `json:"connected"`
	Message      string `json:"message"`
	ProductCount int    `json:"productCount,omitempty"`
	Error        string `json:"error,omitempty"`
	Suggestion   string `json:"suggestion,omitempty"`
	LastChecked  string `json:"lastChecked"`
}

// Result describes the outcome of an upload, download or backup run.
type Result struct {
	Message     string         `json:"message"`
	Method      string         `json:"method,omitempty"`
	DataSummary map[string]int `json:"dataSummary,omitempty"`
	BackupFile  string         `json:"backupFile,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

// Service mirrors the file store to MongoDB. The mirror is a disposable
// replica: upload wipes and rewrites it, download overwrites the files. The
// client handle lives on the struct so connection state is explicit; each
// operation connects, works and disconnects.
type Service interface {
	Upload(ctx context.Context) (*Result, error)
	Download(ctx context.Context) (*Result, error)
	Sync(ctx context.Context) (*Result, error)
	CheckConnection(ctx context.Context) *Status
	SafeUpload(ctx context.Context) (*Result, error)
	LocalBackup(ctx context.Context) (*Result, error)
	SmartBackup(ctx context.Context) (*Result, error)
	ResetModels(ctx context.Context) error
}

type service struct {
	store    *storage.Store
	log      *zap.Logger
	cfg      config.MongoConfig
	mappings []CollectionMapping

	mu     sync.Mutex
	client *mongo.Client
}

// NewService validates the collection mapping tables and returns a mirror
// service. An invalid table is a programming error and fails construction.
func NewService(store *storage.Store, log *zap.Logger, cfg config.MongoConfig) (Service, error) {
	mappings := defaultMappings()
	if err := validateMappings(mappings); err != nil {
		return nil, &apperr.MirrorError{Op: "validate mappings", Err: err}
	}
	return &service{store: store, log: log, cfg: cfg, mappings: mappings}, nil
}

// connect dials the mirror and verifies it with a ping. The cached client is
// reused if a previous operation left one behind.
func (s *service) connect(ctx context.Context) (*mongo.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetServerSelectionTimeout(s.cfg.ConnectTimeout).
		SetSocketTimeout(45 * time.Second).
		SetMaxPoolSize(10)

	connectCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, &apperr.MirrorError{Op: "connect", Err: err}
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &apperr.MirrorError{Op: "ping", Err: err}
	}

	s.client = client
	return client, nil
}

func (s *service) disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return
	}
	if err := s.client.Disconnect(context.Background()); err != nil {
		s.log.Warn("mirror disconnect failed", zap.Error(err))
	}
	s.client = nil
}

// Upload replaces the entire mirror with the current file-store contents:
// every mirror collection is wiped, then bulk-inserted from the files.
func (s *service) Upload(ctx context.Context) (*Result, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer s.disconnect()

	db := client.Database(s.cfg.Database)
	summary := make(map[string]int, len(s.mappings))
	for _, m := range s.mappings {
		records, err := s.store.GetAll(ctx, m.Collection)
		if err != nil {
			return nil, err
		}
		coll := db.Collection(m.MirrorName)
		if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
			return nil, &apperr.MirrorError{Op: "wipe " + m.MirrorName, Err: err}
		}
		if len(records) > 0 {
			docs := make([]any, 0, len(records))
			for _, record := range records {
				docs = append(docs, m.toMirror(record))
			}
			if _, err := coll.InsertMany(ctx, docs); err != nil {
				return nil, &apperr.MirrorError{Op: "insert " + m.MirrorName, Err: err}
			}
		}
		summary[m.Collection] = len(records)
	}

	metrics.GetOrCreateCounter(`mirror_backups_total{outcome="mongodb"}`).Inc()
	s.log.Info("mirror upload complete",
		zap.Int("products", summary[storage.CollectionProducts]),
		zap.Int("sales", summary[storage.CollectionSales]),
		zap.Int("expenses", summary[storage.CollectionExpenses]),
		zap.Int("adjustments", summary[storage.CollectionAdjustments]))

	return &Result{
		Message:     "data uploaded to MongoDB",
		Method:      "mongodb",
		DataSummary: summary,
		Timestamp:   storage.Timestamp(time.Now()),
	}, nil
}

// Download overwrites every local collection file with the mirror contents.
// It is the restore path for a fresh machine, not part of the normal cycle.
func (s *service) Download(ctx context.Context) (*Result, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer s.disconnect()

	db := client.Database(s.cfg.Database)
	summary := make(map[string]int, len(s.mappings))
	for _, m := range s.mappings {
		cursor, err := db.Collection(m.MirrorName).Find(ctx, bson.D{})
		if err != nil {
			return nil, &apperr.MirrorError{Op: "find " + m.MirrorName, Err: err}
		}
		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, &apperr.MirrorError{Op: "read " + m.MirrorName, Err: err}
		}
		records := make([]storage.Record, 0, len(docs))
		for _, doc := range docs {
			records = append(records, m.toFile(doc))
		}
		if err := s.store.ReplaceAll(ctx, m.Collection, records); err != nil {
			return nil, err
		}
		summary[m.Collection] = len(records)
	}

	s.log.Info("mirror download complete",
		zap.Int("products", summary[storage.CollectionProducts]),
		zap.Int("sales", summary[storage.CollectionSales]))

	return &Result{
		Message:     "data downloaded from MongoDB",
		Method:      "mongodb",
		DataSummary: summary,
		Timestamp:   storage.Timestamp(time.Now()),
	}, nil
}

// Sync is upload-only. The files are the source of truth; pulling mirror
// state back into them would overwrite newer local writes.
func (s *service) Sync(ctx context.Context) (*Result, error) {
	result, err := s.Upload(ctx)
	if err != nil {
		return nil, err
	}
	result.Message = "data synchronized to MongoDB"
	return result, nil
}

// CheckConnection probes the mirror and always returns a status, never an
// error.
func (s *service) CheckConnection(ctx context.Context) *Status {
	status := &Status{LastChecked: storage.Timestamp(time.Now())}

	client, err := s.connect(ctx)
	if err != nil {
		status.Message = "MongoDB connection failed"
		status.Error = err.Error()
		status.Suggestion = "check that MongoDB is running and MONGODB_URI is correct"
		return status
	}
	defer s.disconnect()

	count, err := client.Database(s.cfg.Database).
		Collection("products").
		CountDocuments(ctx, bson.D{})
	if err != nil {
		status.Message = "MongoDB reachable but query failed"
		status.Error = err.Error()
		return status
	}

	status.Connected = true
	status.Message = "MongoDB connection successful"
	status.ProductCount = int(count)
	return status
}

// SafeUpload counts every collection before uploading so the response can
// show what was sent. Collections that fail to read count as zero.
func (s *service) SafeUpload(ctx context.Context) (*Result, error) {
	summary := s.dataSummary(ctx)
	result, err := s.Upload(ctx)
	if err != nil {
		return nil, err
	}
	result.DataSummary = summary
	return result, nil
}

// LocalBackup snapshots the files into the backups directory without
// touching the mirror.
func (s *service) LocalBackup(ctx context.Context) (*Result, error) {
	file, err := s.store.Backup(ctx)
	if err != nil {
		return nil, err
	}
	metrics.GetOrCreateCounter(`mirror_backups_total{outcome="local"}`).Inc()
	s.log.Info("local backup written", zap.String("file", file))
	return &Result{
		Message:     "local backup created",
		Method:      "local",
		DataSummary: s.dataSummary(ctx),
		BackupFile:  file,
		Timestamp:   storage.Timestamp(time.Now()),
	}, nil
}

// SmartBackup tries the mirror first and falls back to a local snapshot when
// it is unreachable. Only when both paths fail does it return an error, and
// that error names both failures.
func (s *service) SmartBackup(ctx context.Context) (*Result, error) {
	result, mirrorErr := s.Upload(ctx)
	if mirrorErr == nil {
		return result, nil
	}
	s.log.Warn("mirror unreachable, falling back to local backup", zap.Error(mirrorErr))

	result, localErr := s.LocalBackup(ctx)
	if localErr == nil {
		result.Message = "MongoDB unreachable, local backup created instead"
		return result, nil
	}

	metrics.GetOrCreateCounter(`mirror_backups_total{outcome="failed"}`).Inc()
	return nil, &apperr.MirrorError{
		Op:  "smart backup",
		Err: fmt.Errorf("mirror upload failed (%v) and local backup failed (%v)", mirrorErr, localErr),
	}
}

// ResetModels drops the cached client and revalidates the mapping tables,
// forcing the next operation to dial fresh.
func (s *service) ResetModels(ctx context.Context) error {
	s.disconnect()
	if err := validateMappings(s.mappings); err != nil {
		return &apperr.MirrorError{Op: "validate mappings", Err: err}
	}
	s.log.Info("mirror connection state reset")
	return nil
}

func (s *service) dataSummary(ctx context.Context) map[string]int {
	summary := make(map[string]int, len(s.mappings))
	for _, m := range s.mappings {
		count, err := s.store.Count(ctx, m.Collection, nil)
		if err != nil {
			count = 0
		}
		summary[m.Collection] = count
	}
	return summary
}
