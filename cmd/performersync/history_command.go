package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"performersync/internal/history"
	"performersync/internal/pipeline"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if runID != "" {
				run, err := store.GetRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", runID)
				}
				events, err := store.Events(cmd.Context(), runID)
				if err != nil {
					return err
				}
				report := &pipeline.Report{
					RunID:      run.RunID,
					Command:    run.Command,
					DryRun:     run.DryRun,
					Status:     run.Status,
					Native:     run.Native,
					Canonical:  run.Canonical,
					StartedAt:  run.StartedAt,
					FinishedAt: run.FinishedAt,
					Counters:   run.Counters,
					Events:     events,
				}
				fmt.Fprint(out, renderSummary(report, colorize))
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.RunID,
					run.StartedAt.Local().Format(time.DateTime),
					run.Command,
					yesNo(run.DryRun),
					string(run.Status),
					strconv.Itoa(run.Counters.Updated),
					strconv.Itoa(run.Counters.Merged),
					strconv.Itoa(run.Counters.Errors),
					run.Duration().Round(time.Second).String(),
				})
			}
			cols := append(textColumns("Run", "Started", "Command", "Dry run", "Status"),
				column{header: "Updated", numeric: true},
				column{header: "Merged", numeric: true},
				column{header: "Errors", numeric: true},
				column{header: "Took", numeric: true},
			)
			fmt.Fprintln(out, renderTable(cols, rows, "", colorize))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the counters and changes of one run")
	return cmd
}
