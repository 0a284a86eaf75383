package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/models"
)

// DynamoDB caps items at 400KB, so documents are split into chunk items
// below that limit plus one manifest item naming the chunk count.
const dynamoChunkSize = 350 * 1024

// DynamoDBStorage implements Storage interface using AWS DynamoDB
type DynamoDBStorage struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
	key       string
}

// dynamoManifest is the item stored under the document key
type dynamoManifest struct {
	ID        string    `dynamodbav:"id"`
	Chunks    int       `dynamodbav:"chunks"`
	Size      int       `dynamodbav:"size"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

type dynamoChunk struct {
	ID   string `dynamodbav:"id"`
	Data []byte `dynamodbav:"data"`
}

type dynamoStatus struct {
	ID string `dynamodbav:"id"`
	models.IngestionStatus
}

// NewDynamoDBStorage creates a new DynamoDB storage instance
func NewDynamoDBStorage(cfg config.StorageConfig) (*DynamoDBStorage, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	// For local testing with DynamoDB Local
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	storage := NewDynamoDBStorageFromClient(dynamodb.New(sess), cfg.TableName, cfg.Key)

	ctx, cancel := context.WithTimeout(context.Background(), timeoutOrDefault(cfg))
	defer cancel()

	// Create table if it doesn't exist (for local testing)
	if err := storage.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure table exists: %w", err)
	}

	return storage, nil
}

// NewDynamoDBStorageFromClient wraps an existing client without touching the table
func NewDynamoDBStorageFromClient(client dynamodbiface.DynamoDBAPI, tableName, key string) *DynamoDBStorage {
	return &DynamoDBStorage{client: client, tableName: tableName, key: key}
}

// ensureTable creates the DynamoDB table if it doesn't exist
func (d *DynamoDBStorage) ensureTable(ctx context.Context) error {
	_, err := d.client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	if err == nil {
		return nil
	}

	input := &dynamodb.CreateTableInput{
		TableName: aws.String(d.tableName),
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       aws.String("HASH"),
			},
		},
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: aws.String("S"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	}

	if _, err := d.client.CreateTableWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return d.client.WaitUntilTableExistsWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
}

// LoadCorpus reads the manifest, then reassembles the chunks
func (d *DynamoDBStorage) LoadCorpus(ctx context.Context) (*models.CorpusDocument, error) {
	var manifest dynamoManifest
	found, err := d.getItem(ctx, d.key, &manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to get corpus manifest: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}

	data := make([]byte, 0, manifest.Size)
	for i := 0; i < manifest.Chunks; i++ {
		var chunk dynamoChunk
		found, err := d.getItem(ctx, chunkID(d.key, i), &chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to get corpus chunk %d: %w", i, err)
		}
		if !found {
			return nil, fmt.Errorf("corpus chunk %d of %d is missing", i, manifest.Chunks)
		}
		data = append(data, chunk.Data...)
	}

	var doc models.CorpusDocument
	if err := decode(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveCorpus writes the chunks first and the manifest last, so a reader
// never sees a manifest pointing at chunks that are not yet written
func (d *DynamoDBStorage) SaveCorpus(ctx context.Context, doc *models.CorpusDocument) error {
	data, err := encode(doc, true)
	if err != nil {
		return err
	}

	chunks := splitChunks(data, dynamoChunkSize)
	for i, c := range chunks {
		if err := d.putItem(ctx, dynamoChunk{ID: chunkID(d.key, i), Data: c}); err != nil {
			return fmt.Errorf("failed to store corpus chunk %d: %w", i, err)
		}
	}

	manifest := dynamoManifest{ID: d.key, Chunks: len(chunks), Size: len(data), UpdatedAt: time.Now().UTC()}
	if err := d.putItem(ctx, manifest); err != nil {
		return fmt.Errorf("failed to store corpus manifest: %w", err)
	}
	return nil
}

// UpdateIngestionStatus updates the ingestion status
func (d *DynamoDBStorage) UpdateIngestionStatus(ctx context.Context, status models.IngestionStatus) error {
	if err := d.putItem(ctx, dynamoStatus{ID: statusKey(d.key), IngestionStatus: status}); err != nil {
		return fmt.Errorf("failed to store ingestion status: %w", err)
	}
	return nil
}

// GetIngestionStatus retrieves the current ingestion status
func (d *DynamoDBStorage) GetIngestionStatus(ctx context.Context) (*models.IngestionStatus, error) {
	var stored dynamoStatus
	found, err := d.getItem(ctx, statusKey(d.key), &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion status: %w", err)
	}
	if !found {
		return neverRun(), nil
	}
	return &stored.IngestionStatus, nil
}

// Close closes the DynamoDB connection
func (d *DynamoDBStorage) Close() error {
	// DynamoDB client doesn't need explicit closing
	return nil
}

func (d *DynamoDBStorage) getItem(ctx context.Context, id string, out any) (bool, error) {
	result, err := d.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		ConsistentRead: aws.Bool(true),
		Key: map[string]*dynamodb.AttributeValue{
			"id": {S: aws.String(id)},
		},
	})
	if err != nil {
		return false, err
	}
	if result.Item == nil {
		return false, nil
	}
	if err := dynamodbattribute.UnmarshalMap(result.Item, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal item %s: %w", id, err)
	}
	return true, nil
}

func (d *DynamoDBStorage) putItem(ctx context.Context, in any) error {
	item, err := dynamodbattribute.MarshalMap(in)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	_, err = d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	return err
}

func chunkID(key string, i int) string {
	return key + "#chunk#" + strconv.Itoa(i)
}

// splitChunks cuts data into pieces of at most size bytes. Empty input still
// yields one chunk so the manifest always names at least one item.
func splitChunks(data []byte, size int) [][]byte {
	if len(data) == 0 {
		return [][]byte{{}}
	}
	var chunks [][]byte
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[start:end])
	}
	return chunks
}
