package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"memoreal/internal/config"
	"memoreal/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		outputName string
		logLevel   string
		logFormat  string
	)

	cmd := &cobra.Command{
		Use:           "memoreal",
		Short:         "Memoreal keeps memory capsules that open with time and can be minted as tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warnings, err := configureLoggerForCLI(logLevel, logFormat, cfg)
			if err != nil {
				return err
			}
			for _, warning := range warnings {
				fmt.Fprintln(os.Stderr, warning)
			}

			formatter, err := format.ForName(outputName)
			if err != nil {
				return err
			}
			outputFormatter = formatter
			if cmd.Flags().Changed("output") {
				jsonOutput = true
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVarP(&outputName, "output", "o", "json", "structured output format (json|yaml); implies --json")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text|json)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newCreateCmd(cfg, &jsonOutput),
		newShowCmd(cfg, &jsonOutput),
		newViewCmd(cfg, &jsonOutput),
		newUnlockableCmd(cfg, &jsonOutput),
		newStatusCmd(cfg, &jsonOutput),
		newMintCmd(cfg, &jsonOutput),
		newListCmd(cfg, &jsonOutput),
		newKeygenCmd(&jsonOutput),
		newInfoCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newMigrateCmd(cfg, &jsonOutput),
	)

	return cmd
}
