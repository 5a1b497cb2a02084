// Package config loads and persists the worker configuration from a TOML
// file, creating one with defaults on first boot.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type LogConfig struct {
	Dir string `toml:"dir"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type WebhookConfig struct {
	RetryCount     int `toml:"retry_count"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type AppConfig struct {
	Version string `toml:"version"`
}

type Config struct {
	App      AppConfig      `toml:"app"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Webhook  WebhookConfig  `toml:"webhook"`
}

// Conf is the process-wide configuration, populated by LoadOrCreateConfig.
var Conf = defaultConfig()

// resolveConfigPath is swappable in tests.
var resolveConfigPath = func() (string, error) {
	return filepath.Join(".", "config", "config.toml"), nil
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Version: "0.1.0",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Log: LogConfig{
			Dir: "./logs",
		},
		Database: DatabaseConfig{
			Path: "./data/inferd.db",
		},
		Webhook: WebhookConfig{
			RetryCount:     2,
			TimeoutSeconds: 10,
		},
	}
}

// LoadOrCreateConfig reads the config file into Conf. When the file does not
// exist yet, defaults are written out and created=true is returned.
func LoadOrCreateConfig() (created bool, err error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, fmt.Errorf("write default config: %w", err)
		}
		return true, nil
	}

	Conf = defaultConfig()
	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("decode config %s: %w", configPath, err)
	}

	return false, nil
}

// SaveConfig persists Conf to the resolved config path, creating parent
// directories as needed.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates settings that would otherwise fail late.
func CheckConfig() error {
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", Conf.Server.Port)
	}
	if Conf.Webhook.RetryCount < 0 {
		return fmt.Errorf("invalid webhook retry count: %d", Conf.Webhook.RetryCount)
	}
	return nil
}
