package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration, loaded from a YAML file
type Config struct {
	Server   Server             `yaml:"server"`
	Data     Data               `yaml:"data"`
	Datasets map[string]Dataset `yaml:"datasets"`
}

// Server holds transport settings
type Server struct {
	Host                    string   `yaml:"host"`
	Port                    int      `yaml:"port"`
	GracefulShutdownTimeout Duration `yaml:"gracefulShutdownTimeout"`
}

// Data holds data-layer settings
type Data struct {
	SnapshotDB     string  `yaml:"snapshotDB"`
	AliasFile      string  `yaml:"aliasFile"`
	APIKeyEnv      string  `yaml:"apiKeyEnv"`
	FuzzyThreshold float64 `yaml:"fuzzyThreshold"`
}

// Dataset identifies one upstream resource and its bundled sample
type Dataset struct {
	ResourceID string `yaml:"resourceID"`
	Sample     string `yaml:"sample"`
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Server: Server{
			Host:                    "0.0.0.0",
			Port:                    8080,
			GracefulShutdownTimeout: Duration(30 * time.Second),
		},
		Data: Data{
			SnapshotDB:     "data/samarth.db",
			APIKeyEnv:      "DATAGOV_API_KEY",
			FuzzyThreshold: 0.85,
		},
	}
}

// Load reads a YAML config file over the defaults
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// APIKey resolves the upstream API credential from the configured
// environment variable; empty means no live fetch
func (c *Config) APIKey() string {
	if c.Data.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Data.APIKeyEnv)
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Data.FuzzyThreshold <= 0 || c.Data.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0, 1], got %v", c.Data.FuzzyThreshold)
	}

	for _, name := range []string{"agriculture", "rainfall"} {
		ds, ok := c.Datasets[name]
		if !ok {
			return fmt.Errorf("dataset %q is not configured", name)
		}
		if ds.ResourceID == "" && ds.Sample == "" {
			return fmt.Errorf("dataset %q needs a resourceID or a sample path", name)
		}
	}

	return nil
}
