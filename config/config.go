// Package config holds the explicit runtime configuration for ontosync.
// There is no global config state: a Config is built by the loader and
// passed to constructors.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config is the full runtime configuration.
type Config struct {
	// Ontology is the lowercase source ontology prefix, e.g. "envo".
	Ontology string `yaml:"ontology"`

	// Workers bounds the class reconciliation fan-out.
	Workers int `yaml:"workers"`

	Mongo   MongoConfig  `yaml:"mongo"`
	NATS    NATSConfig   `yaml:"nats"`
	Reports ReportConfig `yaml:"reports"`
}

// MongoConfig holds document-store connection parameters.
type MongoConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// ReplicaSet, when set, is added to the connection options together
	// with a direct connection, matching the port-forwarded replica-set
	// deployments this loader runs against.
	ReplicaSet string `yaml:"replica_set"`

	// ClassCollection and RelationCollection name the two synchronized
	// collections.
	ClassCollection    string `yaml:"class_collection"`
	RelationCollection string `yaml:"relation_collection"`
}

// NATSConfig holds the optional event-publishing connection.
type NATSConfig struct {
	// URL of the NATS server. Empty disables event publishing.
	URL string `yaml:"url"`
}

// ReportConfig controls change-report output.
type ReportConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
	Format    string `yaml:"format"`
}

// Default returns the built-in configuration. Values mirror the loader's
// historical deployment defaults.
func Default() *Config {
	return &Config{
		Ontology: "envo",
		Workers:  8,
		Mongo: MongoConfig{
			Host:               "localhost",
			Port:               27018,
			Database:           "ontosync",
			Username:           "admin",
			ClassCollection:    "ontology_class_set",
			RelationCollection: "ontology_relation_set",
		},
		Reports: ReportConfig{
			Enabled:   true,
			Directory: os.TempDir(),
			Format:    "tsv",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Ontology == "" {
		return fmt.Errorf("ontology is required")
	}
	if c.Mongo.Host == "" {
		return fmt.Errorf("mongo host is required")
	}
	if c.Mongo.Port <= 0 || c.Mongo.Port > 65535 {
		return fmt.Errorf("invalid mongo port %d", c.Mongo.Port)
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo database is required")
	}
	if c.Mongo.ClassCollection == "" || c.Mongo.RelationCollection == "" {
		return fmt.Errorf("mongo collection names are required")
	}
	switch c.Reports.Format {
	case "tsv", "csv":
	default:
		return fmt.Errorf("invalid report format %q", c.Reports.Format)
	}
	return nil
}

// URI builds the MongoDB connection string from the configured parameters.
func (m MongoConfig) URI() string {
	var sb strings.Builder
	sb.WriteString("mongodb://")
	if m.Username != "" {
		sb.WriteString(url.UserPassword(m.Username, m.Password).String())
		sb.WriteString("@")
	}
	fmt.Fprintf(&sb, "%s:%d/", m.Host, m.Port)

	params := []string{"authSource=admin"}
	if m.ReplicaSet != "" {
		// Port-forwarded replica sets cannot be discovered; connect directly
		// and skip write retries.
		params = append(params,
			"replicaSet="+m.ReplicaSet,
			"directConnection=true",
			"retryWrites=false",
		)
	}
	sb.WriteString("?")
	sb.WriteString(strings.Join(params, "&"))
	return sb.String()
}
