package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"performersync/internal/catalog"
	"performersync/internal/config"
	"performersync/internal/graphql"
	"performersync/internal/pipeline"
	"performersync/internal/services"
	"performersync/internal/stashbox"
)

// maxRetryDelay caps the doubling backoff of registry reads.
const maxRetryDelay = 30 * time.Second

// dependencies are the network-facing collaborators of a run.
type dependencies struct {
	openCatalog func(cfg *config.Config, logger *slog.Logger) catalog.Store
	connector   func(cfg *config.Config, logger *slog.Logger, dryRun bool) pipeline.Connector
	stdin       io.Reader
}

func defaultDependencies() dependencies {
	return dependencies{
		openCatalog: func(cfg *config.Config, logger *slog.Logger) catalog.Store {
			return catalog.NewClient(cfg.CatalogURL(), cfg.Catalog.APIKey, logger, requestOptions(cfg, false)...)
		},
		connector: func(cfg *config.Config, logger *slog.Logger, dryRun bool) pipeline.Connector {
			opts := requestOptions(cfg, dryRun)
			return func(box stashbox.Box) stashbox.Registry {
				return stashbox.NewClient(box, logger, opts...)
			}
		},
		stdin: os.Stdin,
	}
}

// requestOptions maps [requests] onto the transport. The throttle applies to
// live runs only.
func requestOptions(cfg *config.Config, dryRun bool) []graphql.Option {
	opts := []graphql.Option{
		graphql.WithTimeout(cfg.RequestTimeout()),
		graphql.WithRetryMaxAttempts(cfg.Requests.RetryAttempts),
		graphql.WithRetryBackoff(cfg.RetryBaseDelay(), maxRetryDelay),
	}
	if !dryRun && cfg.Throttle() > 0 {
		opts = append(opts, graphql.WithThrottle(cfg.Throttle()))
	}
	return opts
}

type commandContext struct {
	configFlag *string
	deps       dependencies

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, deps dependencies) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		deps:       deps,
	}
}

// configPath is the trimmed --config value, empty when unset.
func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "invalid configuration", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
