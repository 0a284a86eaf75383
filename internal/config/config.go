package config

import (
	"net"
	"strconv"
	"time"
)

// Storage backends understood by storage.NewStorage
const (
	StorageFile       = "file"
	StorageSQLite     = "sqlite"
	StoragePostgreSQL = "postgresql"
	StorageMongoDB    = "mongodb"
	StorageDynamoDB   = "dynamodb"
	StorageRedis      = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Ingestion IngestionConfig `koanf:"ingestion"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Engine    EngineConfig    `koanf:"engine"`
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Type string `koanf:"type" validate:"oneof=file sqlite postgresql mongodb dynamodb redis"`
	// Key names the corpus document inside the backend
	Key string `koanf:"key" validate:"required"`
	// Path is the file or sqlite database path
	Path          string        `koanf:"path"`
	Region        string        `koanf:"region"` // For AWS DynamoDB
	TableName     string        `koanf:"table_name"`
	Endpoint      string        `koanf:"endpoint"` // Custom endpoint for local testing
	MongoDBURI    string        `koanf:"mongodb_uri"`
	MongoDatabase string        `koanf:"mongodb_database"`
	PostgresURI   string        `koanf:"postgres_uri"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db" validate:"min=0"`
	Timeout       time.Duration `koanf:"timeout"`
}

// IngestionConfig holds ingestion-related configuration
type IngestionConfig struct {
	Enabled     bool          `koanf:"enabled"`
	APIEndpoint string        `koanf:"api_endpoint" validate:"omitempty,url"`
	Interval    time.Duration `koanf:"interval" validate:"min=0"`
	Timeout     time.Duration `koanf:"timeout"`
	RetryCount  int           `koanf:"retry_count" validate:"min=1"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// ExportDir holds file exports requested over HTTP; empty disables them
	ExportDir string `koanf:"export_dir"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// EngineConfig holds settings of the scoring and generation engine
type EngineConfig struct {
	// Seed makes generation reproducible; 0 seeds from entropy
	Seed uint64 `koanf:"seed"`
	// LexiconPath replaces the embedded lexicon when set
	LexiconPath string `koanf:"lexicon_path"`
	// TrainSchedule is a cron expression for retraining; empty disables it
	TrainSchedule string `koanf:"train_schedule"`
}

// Address is the listen address of the HTTP server
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Type:          StorageFile,
			Key:           "corpus",
			Path:          "data/corpus.json",
			Region:        "us-west-2",
			TableName:     "content_corpus",
			MongoDatabase: "content_intelligence",
			RedisAddr:     "localhost:6379",
			Timeout:       10 * time.Second,
		},
		Ingestion: IngestionConfig{
			Enabled:    false,
			Interval:   5 * time.Minute,
			Timeout:    30 * time.Second,
			RetryCount: 3,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			TrainSchedule: "@every 1h",
		},
	}
}
