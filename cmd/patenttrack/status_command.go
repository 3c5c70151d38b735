package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Synpathub/PatenTrack3/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <orgID>",
		Short: "Show analysis status for an organization",
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

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Portfolio "+overview.OrgID, colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range portfolioLines(overview, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Chain Of Title", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range chainLines(overview, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Runs", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range runLines(overview, colorize) {
				fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}
}

func portfolioLines(overview *api.Overview, colorize bool) []string {
	if overview.Summary == nil {
		return []string{renderStatusLine("Summary", statusWarn, "not computed yet; queue a run", colorize)}
	}

	summary := overview.Summary
	lines := []string{
		renderStatusLine("Assets", statusInfo, strconv.Itoa(summary.TotalAssets), colorize),
		renderStatusLine("Transactions", statusInfo, strconv.Itoa(summary.TotalTransactions), colorize),
		renderStatusLine("Entities", statusInfo, strconv.Itoa(summary.TotalEntities), colorize),
	}
	if overview.Freshness != nil {
		detail := fmt.Sprintf("run %s at %s", overview.Freshness.RunKey,
			overview.Freshness.CompletedAt.UTC().Format("2006-01-02 15:04:05"))
		lines = append(lines, renderStatusLine("Last refresh", statusOK, detail, colorize))
	} else {
		lines = append(lines, renderStatusLine("Last refresh", statusWarn, "never completed", colorize))
	}
	return lines
}

func chainLines(overview *api.Overview, colorize bool) []string {
	summary := overview.Summary
	if summary == nil {
		return []string{renderStatusLine("Chains", statusWarn, "no analysis yet", colorize)}
	}

	lines := []string{
		renderStatusLine("Complete", statusOK, strconv.Itoa(summary.CompleteCount), colorize),
	}

	brokenKind := statusOK
	if summary.BrokenCount > 0 {
		brokenKind = statusError
	}
	lines = append(lines, renderStatusLine("Broken", brokenKind, strconv.Itoa(summary.BrokenCount), colorize))

	encumberedKind := statusOK
	if summary.EncumberedCount > 0 {
		encumberedKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Encumbered", encumberedKind, strconv.Itoa(summary.EncumberedCount), colorize))

	if len(overview.TabCounts) > 0 {
		parts := make([]string, 0, len(overview.TabCounts))
		for _, tab := range []string{"complete", "broken", "encumbered", "other"} {
			if count, ok := overview.TabCounts[tab]; ok {
				parts = append(parts, fmt.Sprintf("%s=%d", tab, count))
			}
		}
		lines = append(lines, renderStatusLine("Dashboard tabs", statusInfo, strings.Join(parts, " "), colorize))
	}
	return lines
}

func runLines(overview *api.Overview, colorize bool) []string {
	var lines []string

	if overview.ActiveRun != nil {
		run := overview.ActiveRun
		detail := fmt.Sprintf("run %d %s", run.ID, run.Status)
		if run.CurrentStep != "" {
			detail += " (" + run.CurrentStep + ")"
		}
		lines = append(lines, renderStatusLine("In flight", statusInfo, detail, colorize))
	} else {
		lines = append(lines, renderStatusLine("In flight", statusOK, "none", colorize))
	}

	health := overview.QueueHealth
	detail := fmt.Sprintf("total=%d waiting=%d active=%d completed=%d failed=%d dead=%d",
		health.Total, health.Waiting, health.Active, health.Completed, health.Failed, health.DeadLetter)
	kind := statusOK
	if health.Failed > 0 || health.DeadLetter > 0 {
		kind = statusWarn
	}
	lines = append(lines, renderStatusLine("Queue", kind, detail, colorize))

	for _, run := range overview.RecentRuns {
		label := fmt.Sprintf("Run %d", run.ID)
		kind := statusInfo
		detail := run.Status
		switch run.Status {
		case "completed":
			kind = statusOK
			if run.FinishedAt != "" {
				detail += " at " + run.FinishedAt
			}
		case "failed", "dead_letter":
			kind = statusError
			if run.ErrorMessage != "" {
				detail += ": " + run.ErrorMessage
			}
		}
		lines = append(lines, renderStatusLine(label, kind, detail, colorize))
	}
	return lines
}
