package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeCatalog()
	c.normalizeRegistries()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.Scheme = strings.ToLower(strings.TrimSpace(c.Catalog.Scheme))
	if c.Catalog.Scheme == "" {
		c.Catalog.Scheme = defaultCatalogScheme
	}
	c.Catalog.Host = strings.TrimSpace(c.Catalog.Host)
	if c.Catalog.Host == "" || c.Catalog.Host == "0.0.0.0" {
		c.Catalog.Host = defaultCatalogHost
	}
	c.Catalog.APIKey = strings.TrimSpace(c.Catalog.APIKey)
	if c.Catalog.APIKey == "" {
		if value, ok := os.LookupEnv(APIKeyEnv); ok {
			c.Catalog.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeRegistries() {
	c.Registries.NativeMatch = strings.ToLower(strings.TrimSpace(c.Registries.NativeMatch))
	c.Registries.CanonicalMatch = strings.ToLower(strings.TrimSpace(c.Registries.CanonicalMatch))
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
