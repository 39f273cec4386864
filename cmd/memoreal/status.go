package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"memoreal/internal/api"
	"memoreal/internal/config"
)

type capsuleStatus struct {
	Capsule    api.CapsuleSummary     `json:"capsule"`
	Unlockable api.UnlockableResponse `json:"unlockable"`
	Mint       api.MintStateResponse  `json:"mint"`
}

func newStatusCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show capsule metadata, lock state and mint state",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				status, err := fetchCapsuleStatus(cmd, client, args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(status)
				}
				if err := writeCapsuleDetail(status.Capsule); err != nil {
					return err
				}
				if status.Mint.Minted {
					return writePlain("mint_address: %s\n", status.Mint.MintAddress)
				}
				return nil
			})
		},
	}
}

func fetchCapsuleStatus(cmd *cobra.Command, client *api.Client, id string) (capsuleStatus, error) {
	var status capsuleStatus
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		resp, err := client.GetCapsule(ctx, id)
		status.Capsule = resp
		return err
	})
	g.Go(func() error {
		resp, err := client.IsUnlockable(ctx, id)
		status.Unlockable = resp
		return err
	})
	g.Go(func() error {
		resp, err := client.MintState(ctx, id)
		status.Mint = resp
		return err
	})
	if err := g.Wait(); err != nil {
		return capsuleStatus{}, err
	}
	return status, nil
}
