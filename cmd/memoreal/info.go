package main

import (
	"sort"

	"github.com/spf13/cobra"

	"memoreal/internal/api"
	"memoreal/internal/config"
)

type infoOutput struct {
	DBPath string `json:"db_path"`
	api.InfoResponse
}

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show database and server info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(infoOutput{DBPath: cfg.DBPath, InfoResponse: resp})
				}

				_ = writePlain("db_path: %s\n", cfg.DBPath)
				_ = writePlain("schema_version: %d\n", resp.SchemaVersion)
				_ = writePlain("location_policy: %s\n", resp.LocationPolicy)
				_ = writePlain("ledger_mode: %s\n", resp.LedgerMode)
				_ = writePlain("total_mints: %d\n", resp.TotalMints)
				_ = writePlain("total_capsules: %d\n", resp.TotalCapsules)

				types := make([]string, 0, len(resp.CapsuleCounts))
				for capsuleType := range resp.CapsuleCounts {
					types = append(types, capsuleType)
				}
				sort.Strings(types)
				for _, capsuleType := range types {
					_ = writePlain("  %s: %d\n", capsuleType, resp.CapsuleCounts[capsuleType])
				}
				return nil
			})
		},
	}
	return cmd
}
