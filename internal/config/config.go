// Package config resolves runtime configuration from config file,
// environment, and flags via viper.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/metastore-labs/metasync/pkg/errors"
)

// Defaults.
const (
	DefaultEnvironment  = "dev"
	DefaultStorePath    = "metasync.db"
	DefaultBaselinePath = ".metasync/baseline"
	DefaultMetadataRoot = "metadata-manager"
	DefaultServerAddr   = ":8090"
	DefaultTimeout      = 30 * time.Second
)

// Config is the resolved runtime configuration.
type Config struct {
	// DataHub connection.
	DataHubURL   string
	DataHubToken string
	Timeout      time.Duration

	// Identity and layout.
	Environment  string
	Mutation     string
	StorePath    string
	BaselinePath string
	MetadataRoot string

	// API server.
	ServerAddr     string
	ServerToken    string
	AllowedOrigins []string
}

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("store.path", DefaultStorePath)
	v.SetDefault("baseline.path", DefaultBaselinePath)
	v.SetDefault("metadata.root", DefaultMetadataRoot)
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("datahub.timeout", DefaultTimeout)
}

// Load resolves the configuration from the given viper instance.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		DataHubURL:     v.GetString("datahub.url"),
		DataHubToken:   v.GetString("datahub.token"),
		Timeout:        v.GetDuration("datahub.timeout"),
		Environment:    v.GetString("environment"),
		Mutation:       v.GetString("mutation"),
		StorePath:      v.GetString("store.path"),
		BaselinePath:   v.GetString("baseline.path"),
		MetadataRoot:   v.GetString("metadata.root"),
		ServerAddr:     v.GetString("server.addr"),
		ServerToken:    v.GetString("server.token"),
		AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return &errors.ConfigError{Component: "environment", Message: "environment name is required"}
	}
	if c.Timeout < 0 {
		return &errors.ConfigError{Component: "datahub.timeout", Message: "timeout must not be negative"}
	}
	return nil
}

// RequireRemote checks the fields a remote-touching command needs.
func (c *Config) RequireRemote() error {
	if c.DataHubURL == "" {
		return &errors.ConfigError{Component: "datahub.url", Message: "DataHub URL is required"}
	}
	return nil
}
