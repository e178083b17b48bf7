package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"performersync/internal/config"
	"performersync/internal/logging"
)

// pluginInput is the startup payload the host writes to stdin.
type pluginInput struct {
	ServerConnection config.ServerConnection `json:"server_connection"`
	Args             struct {
		Mode string `json:"mode"`
	} `json:"args"`
}

type pluginOutput struct {
	Output string `json:"output"`
}

// pluginMode maps the host task mode onto a command and dry-run flag.
func pluginMode(mode string) (command string, dryRun bool) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "dry_run":
		return "run", true
	case "dedup":
		return "dedup", false
	case "dedup_dry_run":
		return "dedup", true
	default:
		return "run", false
	}
}

func decodePluginInput(r io.Reader) pluginInput {
	var input pluginInput
	if r == nil {
		return input
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return input
	}
	// A malformed payload falls back to configured defaults, as the host
	// may start the task without arguments.
	_ = json.Unmarshal(data, &input)
	return input
}

func newPluginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plugin",
		Short: "Run as a catalog plugin task (payload on stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			result := pluginOutput{Output: "error"}
			defer func() {
				_ = json.NewEncoder(out).Encode(result)
			}()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			input := decodePluginInput(ctx.deps.stdin)
			cfg.ApplyServerConnection(input.ServerConnection)
			command, dryRun := pluginMode(input.Args.Mode)

			logger, err := logging.New(logging.Options{
				Level:    cfg.Logging.Level,
				Format:   "plugin",
				FilePath: cfg.Logging.File,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			mode := "LIVE"
			if dryRun {
				mode = "DRY RUN"
			}
			logger.Info("plugin task started",
				logging.String("mode", mode),
				logging.String("command", command),
				logging.String("catalog", cfg.CatalogURL()),
			)

			report, err := ctx.execute(cmd.Context(), cfg, logger, runRequest{
				command:  command,
				dryRun:   dryRun,
				progress: logging.PluginProgress(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			c := report.Counters
			logger.Info(fmt.Sprintf("Done! Updated=%d SkippedMultiID=%d SkippedNoAlias=%d SkippedNoChange=%d Merged=%d Errors=%d",
				c.Updated, c.SkippedMultiID, c.SkippedNoAlias, c.SkippedNoChange, c.Merged, c.Errors))
			if dryRun {
				logger.Info("dry run: no changes were made")
			}
			result.Output = "ok"
			return nil
		},
	}
}
