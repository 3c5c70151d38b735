package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Synpathub/PatenTrack3/internal/api"
)

func newOrgsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List organizations with imported portfolios",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			orgs, err := api.ListOrgs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(orgs) == 0 {
				fmt.Fprintln(out, "No organizations imported yet")
				return nil
			}
			for _, orgID := range orgs {
				fmt.Fprintln(out, orgID)
			}
			return nil
		},
	}
}

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	var tabFilter string

	cmd := &cobra.Command{
		Use:   "dashboard <orgID>",
		Short: "Show per-patent chain-of-title state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			overview, err := api.OrgOverview(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(overview.Dashboard))
			for _, row := range overview.Dashboard {
				if tabFilter != "" && row.Tab != tabFilter {
					continue
				}
				rows = append(rows, []string{
					row.PatentID,
					row.Tab,
					strconv.Itoa(row.TypeCode),
					yesNo(row.IsBroken),
					row.BrokenReason,
					strconv.Itoa(row.NodeCount),
				})
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No dashboard rows; run the pipeline first")
				return nil
			}
			table := renderTable(
				[]string{"Patent", "Tab", "Code", "Broken", "Reason", "Nodes"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tabFilter, "tab", "t", "", "Only show patents in this dashboard tab")
	return cmd
}

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline <orgID>",
		Short: "Show the assignment activity timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			entries, err := api.OrgTimeline(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No timeline data; run the pipeline first")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Date,
					strconv.Itoa(entry.AssignmentCount),
					entry.Types,
				})
			}
			table := renderTable(
				[]string{"Date", "Assignments", "Types"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}
}

func newEntitiesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "entities <orgID>",
		Short: "Show the consolidated entity roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			entities, err := api.OrgEntities(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entities) == 0 {
				fmt.Fprintln(out, "No entities; run the pipeline first")
				return nil
			}

			rows := make([][]string, 0, len(entities))
			for _, entity := range entities {
				rows = append(rows, []string{
					entity.CanonicalName,
					strconv.Itoa(entity.Occurrences),
					entity.Aliases,
				})
			}
			table := renderTable(
				[]string{"Entity", "Occurrences", "Also seen as"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}
}
