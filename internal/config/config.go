package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database     DatabaseConfig     `json:"database"`
	Port         int                `json:"port"`
	JWTSecret    string             `json:"jwt_secret"`
	JWTTTLHours  int                `json:"jwt_ttl_hours"`
	LogConfig    logger.LogConfig   `json:"log_config"`
	ContentStore ContentStoreConfig `json:"content_store"`
	AI           AIConfig           `json:"ai"`
	Chunk        ChunkConfig        `json:"chunk"`
	EmbedCache   EmbedCacheConfig   `json:"embed_cache"`
	Jobs         JobsConfig         `json:"jobs"`
	CORSOrigins  []string           `json:"cors_origins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type ContentStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ProviderConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type AIConfig struct {
	Personalizers  []ProviderConfig `json:"personalizers"`
	Translators    []ProviderConfig `json:"translators"`
	Embedders      []ProviderConfig `json:"embedders"`
	TimeoutSeconds int              `json:"timeout_seconds"`
	MaxInputChars  int              `json:"max_input_chars"`
}

type ChunkConfig struct {
	MaxSize int `json:"max_size"`
	Overlap int `json:"overlap"`
}

type EmbedCacheConfig struct {
	LRUSize       int `json:"lru_size"`
	LRUTTLMinutes int `json:"lru_ttl_minutes"`
	DBTTLDays     int `json:"db_ttl_days"`
}

type JobsConfig struct {
	ReindexSpec           string `json:"reindex_spec"`
	EmbedCacheCleanupSpec string `json:"embed_cache_cleanup_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.ContentStore.Type == "" {
		return nil, fmt.Errorf("content_store.type is required")
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 120
	}
	if cfg.Chunk.MaxSize == 0 {
		cfg.Chunk.MaxSize = 1000
	}
	if cfg.Chunk.Overlap == 0 {
		cfg.Chunk.Overlap = 200
	}
	if cfg.Chunk.Overlap >= cfg.Chunk.MaxSize {
		return nil, fmt.Errorf("chunk.overlap must be smaller than chunk.max_size")
	}
	if cfg.EmbedCache.LRUSize == 0 {
		cfg.EmbedCache.LRUSize = 4096
	}
	if cfg.EmbedCache.LRUTTLMinutes == 0 {
		cfg.EmbedCache.LRUTTLMinutes = 120
	}
	if cfg.EmbedCache.DBTTLDays == 0 {
		cfg.EmbedCache.DBTTLDays = 30
	}
	if cfg.Jobs.ReindexSpec == "" {
		cfg.Jobs.ReindexSpec = "*/10 * * * *"
	}
	if cfg.Jobs.EmbedCacheCleanupSpec == "" {
		cfg.Jobs.EmbedCacheCleanupSpec = "0 4 * * *"
	}
	return &cfg, nil
}
