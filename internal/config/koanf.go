package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/hooklab/content-intelligence-service/internal/validation"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/content-intelligence/config.yaml",
}

// ConfigPathEnvVar overrides the config file path
const ConfigPathEnvVar = "CONFIG_PATH"

// envMappings keeps the historical flat variable names working next to the
// SECTION_FIELD convention handled by envTransformFunc
var envMappings = map[string]string{
	"aws_region":          "storage.region",
	"table_name":          "storage.table_name",
	"dynamodb_endpoint":   "storage.endpoint",
	"mongodb_uri":         "storage.mongodb_uri",
	"mongodb_database":    "storage.mongodb_database",
	"postgres_uri":        "storage.postgres_uri",
	"redis_addr":          "storage.redis_addr",
	"redis_password":      "storage.redis_password",
	"redis_db":            "storage.redis_db",
	"api_endpoint":        "ingestion.api_endpoint",
	"scraper_endpoint":    "ingestion.api_endpoint",
	"api_timeout":         "ingestion.timeout",
	"retry_count":         "ingestion.retry_count",
	"log_level":           "logging.level",
	"log_format":          "logging.format",
	"engine_seed":         "engine.seed",
	"lexicon_path":        "engine.lexicon_path",
	"train_schedule":      "engine.train_schedule",
	"rate_limit_window":   "server.rate_limit_window",
	"rate_limit_requests": "server.rate_limit_requests",
	"export_dir":          "server.export_dir",
}

// sections are the top-level keys addressable as SECTION_FIELD
var sections = []string{"storage", "ingestion", "server", "logging", "engine"}

// Load layers struct defaults, an optional YAML file and environment
// variables, then validates the result
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks field constraints and cross-field requirements
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if c.Ingestion.Enabled && c.Ingestion.APIEndpoint == "" {
		return fmt.Errorf("ingestion is enabled but no api endpoint is configured")
	}

	switch c.Storage.Type {
	case StorageFile, StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage type %s requires a path", c.Storage.Type)
		}
	case StoragePostgreSQL:
		if c.Storage.PostgresURI == "" {
			return fmt.Errorf("storage type %s requires POSTGRES_URI", c.Storage.Type)
		}
	case StorageMongoDB:
		if c.Storage.MongoDBURI == "" {
			return fmt.Errorf("storage type %s requires MONGODB_URI", c.Storage.Type)
		}
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps STORAGE_TYPE to storage.type: the first underscore
// separates the section from the field. Unknown variables map to "" and are
// skipped so the environment cannot pollute the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	section, field, ok := strings.Cut(key, "_")
	if !ok || field == "" {
		return ""
	}
	for _, s := range sections {
		if s == section {
			return section + "." + field
		}
	}
	return ""
}
