package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the project-level config file looked up when no path
// is given.
const DefaultConfigFile = "ontosync.yaml"

// Load builds the configuration with layered precedence:
//  1. built-in defaults
//  2. yaml config file (explicit path, or ontosync.yaml if present)
//  3. environment variables
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		logger.Debug("Loaded config file", "path", path)
	case os.IsNotExist(err) && !explicit:
		logger.Debug("No config file found, using defaults")
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnv(cfg, logger)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration. Variable
// names follow the loader's historical deployment contract.
func applyEnv(cfg *Config, logger *slog.Logger) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("MONGO_HOST", &cfg.Mongo.Host)
	setString("MONGO_DB", &cfg.Mongo.Database)
	setString("MONGO_USERNAME", &cfg.Mongo.Username)
	setString("MONGO_PASSWORD", &cfg.Mongo.Password)
	setString("MONGO_REPLICA_SET", &cfg.Mongo.ReplicaSet)
	setString("NATS_URL", &cfg.NATS.URL)
	setString("ONTOSYNC_OUTPUT_DIR", &cfg.Reports.Directory)

	if v := os.Getenv("MONGO_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			logger.Warn("Ignoring invalid MONGO_PORT", "value", v)
		} else {
			cfg.Mongo.Port = port
		}
	}
}
