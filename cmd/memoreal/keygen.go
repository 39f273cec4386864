package main

import (
	"github.com/spf13/cobra"

	"memoreal/internal/auth"
)

func newKeygenCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random identity usable as a capsule id or author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := auth.GenerateIdentity()
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(map[string]string{"identity": id})
			}
			return writePlain("%s\n", id)
		},
	}
}
