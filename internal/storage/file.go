package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/models"
)

// FileStorage keeps the corpus as a JSON document on local disk
type FileStorage struct {
	path       string
	statusPath string
}

// NewFileStorage creates a file storage rooted at cfg.Path
func NewFileStorage(cfg config.StorageConfig) (*FileStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file storage requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	base := strings.TrimSuffix(cfg.Path, filepath.Ext(cfg.Path))
	return &FileStorage{
		path:       cfg.Path,
		statusPath: base + ".status.json",
	}, nil
}

// LoadCorpus reads the corpus document
func (f *FileStorage) LoadCorpus(_ context.Context) (*models.CorpusDocument, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", f.path, err)
	}

	var doc models.CorpusDocument
	if err := decode(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveCorpus replaces the corpus document
func (f *FileStorage) SaveCorpus(_ context.Context, doc *models.CorpusDocument) error {
	return WriteJSONFile(f.path, doc)
}

// UpdateIngestionStatus stores the ingestion status next to the corpus
func (f *FileStorage) UpdateIngestionStatus(_ context.Context, status models.IngestionStatus) error {
	return WriteJSONFile(f.statusPath, status)
}

// GetIngestionStatus retrieves the current ingestion status
func (f *FileStorage) GetIngestionStatus(_ context.Context) (*models.IngestionStatus, error) {
	data, err := os.ReadFile(f.statusPath)
	if errors.Is(err, fs.ErrNotExist) {
		return neverRun(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ingestion status: %w", err)
	}

	var status models.IngestionStatus
	if err := decode(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Close is a no-op for file storage
func (f *FileStorage) Close() error {
	return nil
}

// WriteJSONFile writes v to path through a temp file and rename, so readers
// never observe a partial document
func WriteJSONFile(path string, v any) error {
	data, err := encode(v, false)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
