package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hooklab/content-intelligence-service/internal/models"
)

// blobStore is the minimal key/value contract of the byte-oriented backends
type blobStore interface {
	get(ctx context.Context, key string) ([]byte, error)
	put(ctx context.Context, key string, data []byte) error
}

// blobDocuments implements the document half of Storage on top of a blobStore
type blobDocuments struct {
	blobs    blobStore
	key      string
	compress bool
}

// LoadCorpus reads and decodes the corpus document
func (d blobDocuments) LoadCorpus(ctx context.Context) (*models.CorpusDocument, error) {
	data, err := d.blobs.get(ctx, d.key)
	if err != nil {
		return nil, err
	}

	var doc models.CorpusDocument
	if err := decode(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveCorpus encodes and replaces the corpus document
func (d blobDocuments) SaveCorpus(ctx context.Context, doc *models.CorpusDocument) error {
	data, err := encode(doc, d.compress)
	if err != nil {
		return err
	}
	if err := d.blobs.put(ctx, d.key, data); err != nil {
		return fmt.Errorf("failed to store corpus: %w", err)
	}
	return nil
}

// UpdateIngestionStatus updates the ingestion status
func (d blobDocuments) UpdateIngestionStatus(ctx context.Context, status models.IngestionStatus) error {
	data, err := encode(status, false)
	if err != nil {
		return err
	}
	if err := d.blobs.put(ctx, statusKey(d.key), data); err != nil {
		return fmt.Errorf("failed to store ingestion status: %w", err)
	}
	return nil
}

// GetIngestionStatus retrieves the current ingestion status
func (d blobDocuments) GetIngestionStatus(ctx context.Context) (*models.IngestionStatus, error) {
	data, err := d.blobs.get(ctx, statusKey(d.key))
	if errors.Is(err, ErrNotFound) {
		return neverRun(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion status: %w", err)
	}

	var status models.IngestionStatus
	if err := decode(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
