package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Catalog contains connection settings for the local catalog GraphQL API.
type Catalog struct {
	Scheme string `toml:"scheme"`
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"`
}

// Registries selects which configured stash-box endpoints act as the native
// registry (A) and the canonical registry (B). Each value is matched as a
// case-insensitive substring of the endpoint URL or the stash-box name.
type Registries struct {
	NativeMatch    string `toml:"native_match"`
	CanonicalMatch string `toml:"canonical_match"`
}

// Requests tunes outbound HTTP behaviour.
type Requests struct {
	TimeoutSeconds   int `toml:"timeout_seconds"`
	RetryAttempts    int `toml:"retry_attempts"`
	RetryBaseDelayMS int `toml:"retry_base_delay_ms"`
	// ThrottleMS is the minimum spacing between registry calls. Zero disables it.
	ThrottleMS int `toml:"throttle_ms"`
}

// Run selects pipeline behaviour.
type Run struct {
	DryRun          bool `toml:"dry_run"`
	MergeDuplicates bool `toml:"merge_duplicates"`
}

// History controls the SQLite run journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunCompleted   bool   `toml:"run_completed"`
	Errors         bool   `toml:"errors"`
	// MinChanges suppresses completion notices for runs with fewer changes.
	MinChanges int `toml:"min_changes"`
}

// Paths contains on-disk state locations.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for performersync.
//
// Configuration sections by subsystem:
//   - Catalog: local catalog connection
//   - Registries: how stash-box endpoints are classified
//   - Requests: timeouts, retry, and throttle for outbound calls
//   - Run: dry-run and duplicate merge switches
//   - History: SQLite run journal
//   - Notifications: ntfy push notification settings
//   - Paths: state directory (lock file, default journal location)
//   - Logging: log format, level, optional file sink
type Config struct {
	Catalog       Catalog       `toml:"catalog"`
	Registries    Registries    `toml:"registries"`
	Requests      Requests      `toml:"requests"`
	Run           Run           `toml:"run"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/performersync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("performersync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory used for the run lock and journal.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	if c.History.Enabled {
		if err := os.MkdirAll(filepath.Dir(c.History.Path), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	return nil
}

// CatalogURL returns the GraphQL endpoint of the local catalog.
func (c *Config) CatalogURL() string {
	host := c.Catalog.Host
	if c.Catalog.Port > 0 {
		host = net.JoinHostPort(host, strconv.Itoa(c.Catalog.Port))
	}
	u := url.URL{Scheme: c.Catalog.Scheme, Host: host, Path: "/graphql"}
	return u.String()
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Requests.TimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the first retry backoff delay.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Requests.RetryBaseDelayMS) * time.Millisecond
}

// Throttle returns the minimum spacing between registry calls.
func (c *Config) Throttle() time.Duration {
	return time.Duration(c.Requests.ThrottleMS) * time.Millisecond
}

// LockPath returns the run lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "performersync.lock")
}

// ServerConnection mirrors the connection block of the host startup payload.
type ServerConnection struct {
	Scheme string `json:"Scheme"`
	Host   string `json:"Host"`
	Port   int    `json:"Port"`
	APIKey string `json:"ApiKey"`
}

// ApplyServerConnection overrides catalog settings with the values supplied by
// the host. Blank fields leave the configured value untouched; a wildcard bind
// host resolves to localhost.
func (c *Config) ApplyServerConnection(conn ServerConnection) {
	if s := strings.TrimSpace(conn.Scheme); s != "" {
		c.Catalog.Scheme = strings.ToLower(s)
	}
	host := strings.TrimSpace(conn.Host)
	switch host {
	case "", "0.0.0.0":
		if c.Catalog.Host == "" || c.Catalog.Host == "0.0.0.0" {
			c.Catalog.Host = defaultCatalogHost
		}
	default:
		c.Catalog.Host = host
	}
	if conn.Port > 0 {
		c.Catalog.Port = conn.Port
	}
	if k := strings.TrimSpace(conn.APIKey); k != "" {
		c.Catalog.APIKey = k
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
