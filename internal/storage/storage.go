package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/models"
)

var (
	// ErrNotFound is returned by LoadCorpus when nothing has been persisted yet
	ErrNotFound = errors.New("storage: document not found")
	// ErrUnsupported is returned by NewStorage for an unknown storage type
	ErrUnsupported = errors.New("storage: unsupported storage type")
)

// Storage interface defines the contract for data storage
type Storage interface {
	LoadCorpus(ctx context.Context) (*models.CorpusDocument, error)
	SaveCorpus(ctx context.Context, doc *models.CorpusDocument) error
	UpdateIngestionStatus(ctx context.Context, status models.IngestionStatus) error
	GetIngestionStatus(ctx context.Context) (*models.IngestionStatus, error)
	Close() error
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case config.StorageFile:
		return NewFileStorage(cfg)
	case config.StorageSQLite:
		return NewSQLiteStorage(cfg)
	case config.StoragePostgreSQL:
		return NewPostgreSQLStorage(cfg)
	case config.StorageMongoDB:
		return NewMongoDBStorage(cfg)
	case config.StorageDynamoDB:
		return NewDynamoDBStorage(cfg)
	case config.StorageRedis:
		return NewRedisStorage(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, cfg.Type)
	}
}

// neverRun is reported when no ingestion status has been stored
func neverRun() *models.IngestionStatus {
	return &models.IngestionStatus{Status: models.StatusNeverRun}
}

func statusKey(key string) string {
	return key + ":ingestion_status"
}

const defaultTimeout = 10 * time.Second

func timeoutOrDefault(cfg config.StorageConfig) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return defaultTimeout
}
