package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory
const FileName = "miz_import.cfg.json"

// StorageConfig selects the planning store backend
type StorageConfig struct {
	Type       string `json:"type" mapstructure:"type"` // sqlite, postgres or memory
	SQLitePath string `json:"sqlitePath" mapstructure:"sqlitePath"`
}

// SessionConfig selects where staged trees are kept between stage and commit
type SessionConfig struct {
	Type      string        `json:"type" mapstructure:"type"` // memory or database
	CacheSize int           `json:"cacheSize" mapstructure:"cacheSize"`
	TTL       time.Duration `json:"ttl" mapstructure:"ttl"`
}

// GraylogConfig holds the GELF log sink settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. A missing file leaves the defaults
// in place; a malformed one is an error.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "optics")

	viper.SetDefault("storage.type", "sqlite")
	viper.SetDefault("storage.sqlitePath", "./miz_import.db")

	viper.SetDefault("session.type", "database")
	viper.SetDefault("session.cacheSize", 64)
	viper.SetDefault("session.ttl", "24h")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetStorageConfig returns the storage section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:       viper.GetString("storage.type"),
		SQLitePath: viper.GetString("storage.sqlitePath"),
	}
}

// GetSessionConfig returns the session section.
func GetSessionConfig() SessionConfig {
	return SessionConfig{
		Type:      viper.GetString("session.type"),
		CacheSize: viper.GetInt("session.cacheSize"),
		TTL:       viper.GetDuration("session.ttl"),
	}
}

// GetGraylogConfig returns the graylog section.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
