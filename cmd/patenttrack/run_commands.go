package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Synpathub/PatenTrack3/internal/api"
	"github.com/Synpathub/PatenTrack3/internal/queue"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <orgID>",
		Short: "Queue an analysis run for an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			run, err := api.TriggerRun(cmd.Context(), cfg, args[0])
			if err != nil {
				if errors.Is(err, queue.ErrRunActive) {
					return fmt.Errorf("organization %s already has a run in flight", strings.TrimSpace(args[0]))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued run %d for %s (key %s)\n", run.ID, run.OrgID, run.RunKey)
			return nil
		},
	}
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runs, err := api.ListRuns(cmd.Context(), cfg, statuses...)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs found")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.OrgID,
					run.Status,
					run.CurrentStep,
					strconv.Itoa(len(run.StepsCompleted)),
					strconv.Itoa(run.Attempt),
					run.Trigger,
					run.CreatedAt,
				})
			}
			table := renderTable(
				[]string{"ID", "Org", "Status", "Step", "Done", "Attempt", "Trigger", "Created"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by run status (repeatable)")
	return cmd
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [runID...]",
		Short: "Requeue failed or dead-lettered runs",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid run id %q", arg)
				}
				ids = append(ids, id)
			}

			updated, err := api.RetryRuns(cmd.Context(), cfg, ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d run(s)\n", updated)
			return nil
		},
	}
}
