package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env        string     `mapstructure:"env"`        // current application environment (local, dev, prod etc)
	HTTP       HTTP       `mapstructure:"http"`       // HTTP server section
	DB         DB         `mapstructure:"database"`   // database configuration section
	Snapshot   Snapshot   `mapstructure:"snapshot"`   // practice-session snapshot store section
	Practice   Practice   `mapstructure:"practice"`   // game engine tuning
	OpenAI     OpenAI     `mapstructure:"openai"`     // vocabulary extraction service
	Dictionary Dictionary `mapstructure:"dictionary"` // dictionary lookup service
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Addr string `mapstructure:"addr"` // listen address for the API server
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Snapshot contains parameters of the local session-snapshot store.
type Snapshot struct {
	Path string        `mapstructure:"path"` // directory for the embedded snapshot database
	TTL  time.Duration `mapstructure:"ttl"`  // snapshots older than this are discarded on load
}

// Practice contains game engine tuning parameters.
type Practice struct {
	SessionSize int `mapstructure:"session_size"` // planned number of words per practice session
}

// OpenAI contains parameters of the generative vocabulary-extraction service.
type OpenAI struct {
	APIKey string `mapstructure:"-"`     // API key loaded from environment
	Model  string `mapstructure:"model"` // chat completion model name
}

// Dictionary contains parameters of the dictionary lookup service.
type Dictionary struct {
	BaseURL string        `mapstructure:"base_url"` // dictionary API base URL
	Timeout time.Duration `mapstructure:"timeout"`  // per-lookup HTTP timeout
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("snapshot.path", "data/snapshots")
	v.SetDefault("snapshot.ttl", "30m")
	v.SetDefault("practice.session_size", 5)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("dictionary.base_url", "https://api.dictionaryapi.dev/api/v2/entries/en")
	v.SetDefault("dictionary.timeout", "10s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	// The extraction client is optional; endpoints that depend on it are
	// disabled when no key is configured.
	cfg.OpenAI.APIKey = v.GetString("openai_api_key")

	return &cfg, nil
}
