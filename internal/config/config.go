package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
// Pipeline behavior itself (encoding candidates, header markers, mapping
// rules) is fixed format configuration in internal/pipeline; only operational
// knobs live here.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// MaxUploadBytes caps a single upload; the whole file is materialized in
	// memory before processing.
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	// CacheSize bounds the content-addressed result store.
	CacheSize int `envconfig:"CACHE_SIZE" default:"256"`
	// StrictRows switches the ragged-row policy from pad to drop.
	StrictRows bool `envconfig:"STRICT_ROWS" default:"false"`

	// Kafka sink publishing, feature-flagged.
	KafkaEnabled   bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers   []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaSinkTopic string   `envconfig:"KAFKA_SINK_TOPIC" default:"buoy-normalized-series"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.CacheSize <= 0 {
		return nil, errors.New("CACHE_SIZE must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return &cfg, nil
}
