package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"memoreal/internal/api"
	"memoreal/internal/config"
)

func newMintCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var req api.MintRequest

	cmd := &cobra.Command{
		Use:   "mint <id>",
		Short: "Mint a capsule into a single token owned by its author",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Caller) == "" {
				return errors.New("caller is required (--caller)")
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.MintCapsule(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeMintReceipt(resp)
			})
		},
	}

	cmd.Flags().StringVar(&req.Caller, "caller", "", "identity requesting the mint; must be the author")
	cmd.Flags().StringVar(&req.Name, "name", "", "token name")
	cmd.Flags().StringVar(&req.Symbol, "symbol", "", "token symbol")
	cmd.Flags().StringVar(&req.URI, "uri", "", "token metadata uri")
	cmd.Flags().StringVar(&req.Mint, "mint", "", "mint address; generated when omitted")
	cmd.Flags().StringVar(&req.TokenAccount, "token-account", "", "token account address; derived when omitted")
	cmd.Flags().StringVar(&req.MetadataAccount, "metadata-account", "", "metadata account address; derived when omitted")
	return cmd
}
