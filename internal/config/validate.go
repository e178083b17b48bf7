package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateRegistries(); err != nil {
		return err
	}
	if err := c.validateRequests(); err != nil {
		return err
	}
	if c.Notifications.MinChanges < 0 {
		return errors.New("notifications.min_changes must not be negative")
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("catalog.scheme must be http or https, got %q", c.Catalog.Scheme)
	}
	if c.Catalog.Port < 0 || c.Catalog.Port > 65535 {
		return fmt.Errorf("catalog.port out of range: %d", c.Catalog.Port)
	}
	return nil
}

func (c *Config) validateRegistries() error {
	if c.Registries.NativeMatch == "" {
		return errors.New("registries.native_match must be set")
	}
	if c.Registries.NativeMatch == c.Registries.CanonicalMatch {
		return errors.New("registries.native_match and registries.canonical_match must differ")
	}
	return nil
}

func (c *Config) validateRequests() error {
	if c.Requests.TimeoutSeconds <= 0 {
		return errors.New("requests.timeout_seconds must be positive")
	}
	if c.Requests.RetryAttempts < 1 {
		return errors.New("requests.retry_attempts must be at least 1")
	}
	if c.Requests.RetryBaseDelayMS < 0 {
		return errors.New("requests.retry_base_delay_ms must not be negative")
	}
	if c.Requests.ThrottleMS < 0 {
		return errors.New("requests.throttle_ms must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json", "plugin":
	default:
		return fmt.Errorf("logging.format must be console, json, or plugin, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
