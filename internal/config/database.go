package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DBConfigEnv names the environment variable holding the credentials file path.
const DBConfigEnv = "MARKET_DB_CONFIG"

// DefaultDBConfigPath is used when neither an explicit path nor the env var is set.
const DefaultDBConfigPath = "./authentication/firebase_auth.json"

// ErrNoDBConfig is returned when the resolved credentials file does not exist.
var ErrNoDBConfig = errors.New("database config not found")

// DBConfig 데이터베이스 접속 정보 (JSON credentials blob)
// Firebase style keys (apiKey, authDomain, storageBucket) are accepted and ignored.
type DBConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"databaseURL"`
	Namespace   string `yaml:"namespace"`
	PoolSize    int    `yaml:"poolSize"`

	APIKey        string `yaml:"apiKey"`
	AuthDomain    string `yaml:"authDomain"`
	StorageBucket string `yaml:"storageBucket"`
}

// ResolveDBConfigPath picks the credentials path: explicit argument, then env, then default.
func ResolveDBConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(DBConfigEnv); env != "" {
		return env
	}
	return DefaultDBConfigPath
}

// LoadDBConfig reads and parses the credentials blob.
// The blob is JSON; yaml.v3 decodes it since JSON is valid YAML.
func LoadDBConfig(explicit string) (*DBConfig, error) {
	path := ResolveDBConfigPath(explicit)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoDBConfig, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg DBConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Driver == "" {
		cfg.Driver = "redis"
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "market"
	}
	if cfg.Driver != "memory" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("parse %s: databaseURL is required for driver %q", path, cfg.Driver)
	}
	return &cfg, nil
}
