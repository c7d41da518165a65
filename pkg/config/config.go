package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql
	DSN    string `yaml:"dsn"`
}

type IngestConfig struct {
	Concurrency       int `yaml:"concurrency"`        // worker cap for a batch of files
	ExtractionTimeout int `yaml:"extraction_timeout"` // seconds per extraction call
}

type LogConfig struct {
	File       string `yaml:"file"` // empty means stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// DemoModeConfig names the organization used when no --org is given.
// The pipeline itself is demo-agnostic; only the CLI consults this.
type DemoModeConfig struct {
	OrganizationID   string `yaml:"organization_id"`
	OrganizationName string `yaml:"organization_name"`
}

type Config struct {
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
	Store            StoreConfig               `yaml:"store"`
	Ingest           IngestConfig              `yaml:"ingest"`
	Log              LogConfig                 `yaml:"log"`
	Demo             DemoModeConfig            `yaml:"demo"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".riskcore")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func defaultConfig() *Config {
	return &Config{
		SelectedProvider: "gemini",
		SelectedModel:    "gemini-1.5-flash",
		Providers:        make(map[string]ProviderConfig),
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "", // resolved next to the config file when empty
		},
		Ingest: IngestConfig{
			Concurrency:       4,
			ExtractionTimeout: 120,
		},
		Demo: DemoModeConfig{
			OrganizationID:   "550e8400-e29b-41d4-a716-446655440000",
			OrganizationName: "Demo Organization",
		},
	}
}

func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	if cfg.Ingest.Concurrency <= 0 {
		cfg.Ingest.Concurrency = 4
	}
	if cfg.Ingest.ExtractionTimeout <= 0 {
		cfg.Ingest.ExtractionTimeout = 120
	}
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// 0600 permissions for security (api keys)
	return os.WriteFile(path, data, 0600)
}

// StoreDSN resolves the configured DSN, defaulting sqlite to a database
// file next to the config file.
func (c *Config) StoreDSN() (string, error) {
	if c.Store.DSN != "" {
		return c.Store.DSN, nil
	}
	path, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "riskcore.db"), nil
}

func (c *Config) SetAPIKey(provider, key string) {
	p := c.Providers[provider]
	p.APIKey = key
	c.Providers[provider] = p
}

func (c *Config) GetAPIKey(provider string) string {
	return c.Providers[provider].APIKey
}
