// Package config loads the console core configuration with layered
// precedence: built-in defaults, then an optional YAML file, then
// environment variables.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "15s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds everything needed to wire the console core.
type Config struct {
	AppName        string   `yaml:"app_name"`
	Endpoint       string   `yaml:"endpoint"`
	RequestTimeout Duration `yaml:"request_timeout"`
	RenewInterval  Duration `yaml:"renew_interval"`
	RenewThreshold Duration `yaml:"renew_threshold"`
	SessionTTL     Duration `yaml:"session_ttl"`
	StorageDir     string   `yaml:"storage_dir"`
	RedisAddr      string   `yaml:"redis_addr"`
	RedisPassword  string   `yaml:"redis_password"`
	PostgresURL    string   `yaml:"postgres_url"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	storageDir := ".docuvault"
	if home != "" {
		storageDir = home + string(os.PathSeparator) + ".docuvault"
	}
	return &Config{
		AppName:        "docuvault",
		Endpoint:       "http://localhost:8080/api",
		RequestTimeout: Duration(15 * time.Second),
		RenewInterval:  Duration(15 * time.Minute),
		RenewThreshold: Duration(5 * time.Minute),
		SessionTTL:     Duration(time.Hour),
		StorageDir:     storageDir,
	}
}

// LoadFromFile reads a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Merge overlays non-zero fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.AppName != "" {
		c.AppName = other.AppName
	}
	if other.Endpoint != "" {
		c.Endpoint = other.Endpoint
	}
	if other.RequestTimeout != 0 {
		c.RequestTimeout = other.RequestTimeout
	}
	if other.RenewInterval != 0 {
		c.RenewInterval = other.RenewInterval
	}
	if other.RenewThreshold != 0 {
		c.RenewThreshold = other.RenewThreshold
	}
	if other.SessionTTL != 0 {
		c.SessionTTL = other.SessionTTL
	}
	if other.StorageDir != "" {
		c.StorageDir = other.StorageDir
	}
	if other.RedisAddr != "" {
		c.RedisAddr = other.RedisAddr
	}
	if other.RedisPassword != "" {
		c.RedisPassword = other.RedisPassword
	}
	if other.PostgresURL != "" {
		c.PostgresURL = other.PostgresURL
	}
}

// Load builds the effective configuration: defaults, then the given file
// (skipped when absent), then environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}

	cfg.Merge(&Config{
		Endpoint:      os.Getenv("DOCUVAULT_ENDPOINT"),
		StorageDir:    os.Getenv("DOCUVAULT_STORAGE_DIR"),
		RedisAddr:     os.Getenv("DOCUVAULT_REDIS_ADDR"),
		RedisPassword: os.Getenv("DOCUVAULT_REDIS_PASSWORD"),
		PostgresURL:   os.Getenv("DOCUVAULT_POSTGRES_URL"),
	})
	return cfg, nil
}
