package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the pagebind service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Databases DatabasesConfig `mapstructure:"databases"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig locates the on-disk stores for uploaded images and
// generated documents.
type StorageConfig struct {
	ImageDir string `mapstructure:"image_dir"`
	PDFDir   string `mapstructure:"pdf_dir"`
}

// WorkspaceConfig controls the session manifest store.
type WorkspaceConfig struct {
	Store string        `mapstructure:"store"` // "inmemory" or "redis"
	TTL   time.Duration `mapstructure:"ttl"`
}

// DatabasesConfig contains backing store connection settings.
type DatabasesConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Pass string `mapstructure:"password"`
	DB   int    `mapstructure:"db"`
}

// ExtractorConfig points at the external text-extraction service.
type ExtractorConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxInFlight int           `mapstructure:"max_in_flight"`
}

// LoadConfig reads configuration from an optional JSON config file and
// PAGEBIND_* environment variables on top of built-in defaults.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	dataRoot := filepath.Join(os.TempDir(), "pagebind")
	viper.SetDefault("server.address", ":3000")
	viper.SetDefault("storage.image_dir", filepath.Join(dataRoot, "images"))
	viper.SetDefault("storage.pdf_dir", filepath.Join(dataRoot, "pdfs"))
	viper.SetDefault("workspace.store", "inmemory")
	viper.SetDefault("workspace.ttl", 48*time.Hour)
	viper.SetDefault("databases.redis.host", "localhost")
	viper.SetDefault("databases.redis.port", "6379")
	viper.SetDefault("databases.redis.db", 0)
	viper.SetDefault("extractor.base_url", "http://localhost:8000")
	viper.SetDefault("extractor.timeout", 30*time.Second)
	viper.SetDefault("extractor.max_in_flight", 4)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("PAGEBIND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine when none was requested
		// explicitly; defaults and env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
