package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"performersync/internal/logging"
	"performersync/internal/preflight"
)

// errChecksFailed is returned when at least one readiness check fails.
var errChecksFailed = errors.New("one or more checks failed")

const (
	checkLabelWidth = 28
	checkIndent     = "  "
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the catalog and stash-box registries are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store := ctx.deps.openCatalog(cfg, logger)
			results := preflight.RunAll(cmd.Context(), cfg, store, ctx.deps.connector(cfg, logger, true))

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Catalog %s\n", cfg.CatalogURL())
			for _, result := range results {
				fmt.Fprintln(out, checkLine(result, colorize))
			}
			if preflight.Failed(results) {
				return errChecksFailed
			}
			return nil
		},
	}
}

func checkLine(result preflight.Result, colorize bool) string {
	status, color := "OK", ansiGreen
	if !result.Passed {
		status, color = "ERROR", ansiRed
	}
	text := fmt.Sprintf("[%s]", status)
	if detail := strings.TrimSpace(result.Detail); detail != "" {
		text += " " + detail
	}
	line := fmt.Sprintf("%s%-*s %s", checkIndent, checkLabelWidth, result.Name+":", text)
	if colorize {
		return color + line + ansiReset
	}
	return line
}
