package weave

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nexusgraph/weave/persist"
)

// Persistence backend names accepted in configuration.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the engine configuration, loadable from a YAML file.
type Config struct {
	// DataDir is the directory for file-backed canvas snapshots.
	// Default: "data".
	DataDir string `yaml:"data_dir"`

	// Persistence selects and tunes the snapshot backend.
	Persistence PersistenceConfig `yaml:"persistence"`
}

// PersistenceConfig selects the snapshot backend.
type PersistenceConfig struct {
	// Backend is "file" or "redis". Default: "file".
	Backend string `yaml:"backend"`

	// Redis configures the redis backend; ignored for "file".
	Redis RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig carries redis connection settings.
type RedisConfig struct {
	// URL is the connection string (e.g., "redis://localhost:6379").
	URL string `yaml:"url"`

	// KeyPrefix namespaces the snapshot keys.
	KeyPrefix string `yaml:"key_prefix,omitempty"`

	// ConnectTimeout is a Go duration string (e.g., "5s").
	ConnectTimeout string `yaml:"connect_timeout,omitempty"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		DataDir:     "data",
		Persistence: PersistenceConfig{Backend: BackendFile},
	}
}

// LoadConfig reads and validates a YAML configuration file, filling in
// defaults for omitted fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Persistence.Backend == "" {
		c.Persistence.Backend = BackendFile
	}
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	switch c.Persistence.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("config: unknown persistence backend %q", c.Persistence.Backend)
	}
	if c.Persistence.Redis.ConnectTimeout != "" {
		if _, err := time.ParseDuration(c.Persistence.Redis.ConnectTimeout); err != nil {
			return fmt.Errorf("config: invalid redis connect_timeout: %w", err)
		}
	}
	return nil
}

// buildBackend constructs the persistence backend the configuration names.
func (c Config) buildBackend() (persist.Store, error) {
	switch c.Persistence.Backend {
	case BackendRedis:
		var connectTimeout time.Duration
		if c.Persistence.Redis.ConnectTimeout != "" {
			connectTimeout, _ = time.ParseDuration(c.Persistence.Redis.ConnectTimeout)
		}
		return persist.NewRedisStore(persist.RedisOptions{
			URL:            c.Persistence.Redis.URL,
			KeyPrefix:      c.Persistence.Redis.KeyPrefix,
			ConnectTimeout: connectTimeout,
		})
	default:
		return persist.NewFileStore(c.DataDir)
	}
}
