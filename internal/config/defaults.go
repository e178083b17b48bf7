package config

const (
	defaultCatalogScheme        = "http"
	defaultCatalogHost          = "localhost"
	defaultCatalogPort          = 9999
	defaultNativeMatch          = "javstash"
	defaultCanonicalMatch       = "stashdb"
	defaultTimeoutSeconds       = 30
	defaultRetryAttempts        = 3
	defaultRetryBaseDelayMillis = 1000
	defaultThrottleMillis       = 0
	defaultStateDir             = "~/.local/share/performersync"
	defaultHistoryFile          = "history.db"
	defaultNtfyTimeoutSeconds   = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"

	// APIKeyEnv supplies the catalog API key when the config file leaves it blank.
	APIKeyEnv = "PERFORMERSYNC_API_KEY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Catalog: Catalog{
			Scheme: defaultCatalogScheme,
			Host:   defaultCatalogHost,
			Port:   defaultCatalogPort,
		},
		Registries: Registries{
			NativeMatch:    defaultNativeMatch,
			CanonicalMatch: defaultCanonicalMatch,
		},
		Requests: Requests{
			TimeoutSeconds:   defaultTimeoutSeconds,
			RetryAttempts:    defaultRetryAttempts,
			RetryBaseDelayMS: defaultRetryBaseDelayMillis,
			ThrottleMS:       defaultThrottleMillis,
		},
		Run: Run{
			DryRun:          false,
			MergeDuplicates: true,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeoutSeconds,
			RunCompleted:   true,
			Errors:         true,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
