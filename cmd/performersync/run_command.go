package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"performersync/internal/logging"
	"performersync/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return newPipelineCommand(ctx, "run", "Rename, link, enrich, and merge performers")
}

func newDedupCommand(ctx *commandContext) *cobra.Command {
	return newPipelineCommand(ctx, "dedup", "Merge duplicate performers only")
}

func newPipelineCommand(ctx *commandContext, name, short string) *cobra.Command {
	var dryRun bool
	var noMerge bool

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Run.DryRun = dryRun
			}
			if noMerge {
				cfg.Run.MergeDuplicates = false
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, runErr := ctx.execute(runCtx, cfg, logger, runRequest{
				command:  name,
				dryRun:   cfg.Run.DryRun,
				progress: logging.LogProgress(logger, string(pipeline.StageSync)),
			})
			if report != nil {
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderSummary(report, shouldColorize(out)))
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the changes without writing to the catalog")
	if name == "run" {
		cmd.Flags().BoolVar(&noMerge, "no-merge", false, "Skip the duplicate merge passes")
	}
	return cmd
}
