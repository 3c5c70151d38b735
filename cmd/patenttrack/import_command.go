package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Synpathub/PatenTrack3/internal/api"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var trigger bool

	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Import portfolio files into the analysis store",
		Long: "Import reads one portfolio JSON file or every portfolio file in a " +
			"directory. Without a path the configured portfolio directory is used. " +
			"Re-importing the same file is safe; unchanged transactions keep their " +
			"classifications.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := cfg.Paths.PortfolioDir
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				path = args[0]
			}

			result, err := api.ImportPortfolios(cmd.Context(), cfg, path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d file(s): %d organization(s), %d asset(s)\n",
				result.Files, len(result.Orgs), result.Assets)

			if !trigger {
				return nil
			}
			for _, orgID := range result.Orgs {
				run, err := api.TriggerRun(cmd.Context(), cfg, orgID)
				if err != nil {
					fmt.Fprintf(out, "  %s: %v\n", orgID, err)
					continue
				}
				fmt.Fprintf(out, "  %s: queued run %d\n", orgID, run.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trigger, "run", false, "Queue an analysis run for each imported organization")
	return cmd
}
