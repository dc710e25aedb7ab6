// This file defines the configuration structure for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port             int    `mapstructure:"port"`
	MinClientVersion string `mapstructure:"min_client_version"`
	Database         struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Import struct {
		InboxPath   string `mapstructure:"inbox_path"`
		MaxUploadMB int64  `mapstructure:"max_upload_mb"`
	} `mapstructure:"import"`
	Jobs struct {
		// Minutes between runs. 0 disables the schedule.
		ExpireInterval         int `mapstructure:"expire_interval"`
		SessionCleanupInterval int `mapstructure:"session_cleanup_interval"`
	} `mapstructure:"jobs"`
	Notifications struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"notifications"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

// Load reads configuration from "config.yml" and ".env" in the current
// directory. Missing files are fine; defaults apply.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load for another directory.
func LoadFrom(dir string) (*Config, error) {
	// .env only fills variables that are not already set.
	dotEnvPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", dotEnvPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", dotEnvPath, err)
	}

	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	// PASES_DATABASE_PATH overrides `database.path`, and so on.
	v.SetEnvPrefix("PASES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("min_client_version", "1.0.0")
	v.SetDefault("database.path", "./pases.db")
	v.SetDefault("import.inbox_path", "./inbox")
	v.SetDefault("import.max_upload_mb", 32)
	v.SetDefault("jobs.expire_interval", 60)
	v.SetDefault("jobs.session_cleanup_interval", 360)
	v.SetDefault("notifications.workers", 4)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	var cfg Config
	cfg.Port = 8080
	cfg.MinClientVersion = "1.0.0"
	cfg.Database.Path = "./pases.db"
	cfg.Import.InboxPath = "./inbox"
	cfg.Import.MaxUploadMB = 32
	cfg.Jobs.ExpireInterval = 60
	cfg.Jobs.SessionCleanupInterval = 360
	cfg.Notifications.Workers = 4
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	return &cfg
}
