package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"memoreal/internal/config"
	"memoreal/internal/store"
)

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply capsule database migrations and report what the database holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			report, err := runMigrate(ctx, cfg.DBPath, dryRun)
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(report)
			}
			printMigrateReport(os.Stdout, report, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	cmd.Flags().BoolVar(&dryRun, "inspect", false, "alias for --dry-run")
	_ = cmd.Flags().MarkHidden("inspect")

	return cmd
}

func runMigrate(ctx context.Context, path string, dryRun bool) (*store.Inspection, error) {
	if dryRun {
		report, err := store.Inspect(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("inspect migrations: %w", err)
		}
		return report, nil
	}

	// Opening the store applies pending migrations, as the server does on start.
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	defer st.Close()

	return st.Inspect(ctx)
}

func printMigrateReport(w io.Writer, report *store.Inspection, dryRun bool) {
	plan := report.Migrations
	fmt.Fprintf(w, "Schema version: %d of %d\n", plan.CurrentVersion, plan.AvailableVersion)
	switch {
	case len(plan.Pending) == 0 && !dryRun:
		fmt.Fprintln(w, "Migrations applied successfully.")
	case len(plan.Pending) == 0:
		fmt.Fprintln(w, "No pending migrations.")
	default:
		fmt.Fprintf(w, "Pending migrations: %d\n", len(plan.Pending))
		for _, m := range plan.Pending {
			fmt.Fprintf(w, "  %d: %s\n", m.Version, m.Description)
		}
	}

	if report.Contents == nil {
		return
	}
	contents := report.Contents
	fmt.Fprintf(w, "Capsules: %d (general %d, time_locked %d)\n",
		contents.TotalCapsules, contents.CapsuleCounts["general"], contents.CapsuleCounts["time_locked"])
	fmt.Fprintf(w, "Minted tokens: %d\n", contents.TotalMints)
}
