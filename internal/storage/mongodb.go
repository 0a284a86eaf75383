package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/models"
)

const mongoCollection = "corpus_documents"

// MongoDBStorage implements Storage using MongoDB, storing the corpus as a
// native BSON document
type MongoDBStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	key        string
	timeout    time.Duration
}

type mongoCorpus struct {
	ID       string                `bson:"_id"`
	Document models.CorpusDocument `bson:"document"`
}

type mongoStatus struct {
	ID     string                 `bson:"_id"`
	Status models.IngestionStatus `bson:"status"`
}

// NewMongoDBStorage connects to cfg.MongoDBURI
func NewMongoDBStorage(cfg config.StorageConfig) (*MongoDBStorage, error) {
	timeout := timeoutOrDefault(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBStorage{
		client:     client,
		collection: client.Database(cfg.MongoDatabase).Collection(mongoCollection),
		key:        cfg.Key,
		timeout:    timeout,
	}, nil
}

// LoadCorpus retrieves the corpus document
func (m *MongoDBStorage) LoadCorpus(ctx context.Context) (*models.CorpusDocument, error) {
	var stored mongoCorpus
	err := m.collection.FindOne(ctx, bson.M{"_id": m.key}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return &stored.Document, nil
}

// SaveCorpus upserts the corpus document
func (m *MongoDBStorage) SaveCorpus(ctx context.Context, doc *models.CorpusDocument) error {
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": m.key},
		mongoCorpus{ID: m.key, Document: *doc},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store corpus: %w", err)
	}
	return nil
}

// UpdateIngestionStatus updates the ingestion status
func (m *MongoDBStorage) UpdateIngestionStatus(ctx context.Context, status models.IngestionStatus) error {
	id := statusKey(m.key)
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": id},
		mongoStatus{ID: id, Status: status},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store ingestion status: %w", err)
	}
	return nil
}

// GetIngestionStatus retrieves the current ingestion status
func (m *MongoDBStorage) GetIngestionStatus(ctx context.Context) (*models.IngestionStatus, error) {
	var stored mongoStatus
	err := m.collection.FindOne(ctx, bson.M{"_id": statusKey(m.key)}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return neverRun(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion status: %w", err)
	}
	return &stored.Status, nil
}

// Close disconnects the client
func (m *MongoDBStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
