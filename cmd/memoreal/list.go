package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"memoreal/internal/api"
	"memoreal/internal/config"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		author      string
		capsuleType string
		limit       int
		offset      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List capsules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				query := url.Values{}
				setIfNotEmpty(query, "author", author)
				setIfNotEmpty(query, "type", capsuleType)
				if limit > 0 {
					query.Set("limit", intToString(limit))
				}
				if offset > 0 {
					query.Set("offset", intToString(offset))
				}

				resp, err := client.ListCapsules(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeCapsuleList(resp)
			})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author filter")
	cmd.Flags().StringVar(&capsuleType, "type", "", "type filter")
	cmd.Flags().IntVar(&limit, "limit", 0, "limit results")
	cmd.Flags().IntVar(&offset, "offset", 0, "offset results")

	return cmd
}
