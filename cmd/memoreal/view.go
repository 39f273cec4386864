package main

import (
	"github.com/spf13/cobra"

	"memoreal/internal/api"
	"memoreal/internal/config"
)

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show capsule metadata without opening it",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetCapsule(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeCapsuleDetail(resp)
			})
		},
	}
}

func newViewCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "view <id>",
		Short: "Open a capsule and print its content",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			var supplied *string
			if cmd.Flags().Changed("location") {
				supplied = &location
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.ViewCapsule(cmd.Context(), args[0], supplied)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeCapsuleContent(resp)
			})
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "location passphrase")
	return cmd
}

func newUnlockableCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "unlockable <id>",
		Short: "Report whether a capsule's time lock has opened",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.IsUnlockable(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("%t\n", resp.Unlockable)
			})
		},
	}
}
