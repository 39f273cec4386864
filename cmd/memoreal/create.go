package main

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"memoreal/internal/api"
	"memoreal/internal/auth"
	"memoreal/internal/config"
)

type createCmdOptions struct {
	id        string
	author    string
	recipient string
	message   string
	mediaURL  string
	kind      string
	unlockAt  string
	unlockIn  time.Duration
	location  string
	filePath  string
}

func newCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &createCmdOptions{}
	cmd := &cobra.Command{
		Use:   "create [<title>]",
		Short: "Create a memory capsule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, cfg, opts, jsonOutput, args)
		},
	}

	bindCreateFlags(cmd, opts)
	return cmd
}

func runCreate(cmd *cobra.Command, cfg *config.Config, opts *createCmdOptions, jsonOutput *bool, args []string) error {
	req, err := buildCreateRequest(cmd, opts, args, time.Now())
	if err != nil {
		return err
	}

	return withClient(cfg, func(client *api.Client) error {
		resp, err := client.CreateCapsule(cmd.Context(), req)
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(resp)
		}
		return writePlain("%s\n", resp.ID)
	})
}

// buildCreateRequest merges the optional markdown file with flags and
// positional args. Flags win over front matter.
func buildCreateRequest(cmd *cobra.Command, opts *createCmdOptions, args []string, now time.Time) (api.CapsuleCreateRequest, error) {
	var req api.CapsuleCreateRequest
	if opts.filePath != "" {
		data, err := os.ReadFile(opts.filePath)
		if err != nil {
			return req, err
		}
		fm, body, err := parseMarkdown(string(data))
		if err != nil {
			return req, err
		}
		if req, err = frontMatterToRequest(fm, body); err != nil {
			return req, err
		}
	}

	if len(args) > 0 {
		req.Title = strings.Join(args, " ")
	}
	overrideString(cmd, "id", &req.ID, opts.id)
	overrideString(cmd, "author", &req.Author, opts.author)
	overrideString(cmd, "recipient", &req.Recipient, opts.recipient)
	overrideString(cmd, "message", &req.Message, opts.message)
	overrideString(cmd, "media-url", &req.MediaURL, opts.mediaURL)
	overrideString(cmd, "type", &req.Type, opts.kind)
	if cmd.Flags().Changed("location") {
		location := opts.location
		req.Location = &location
	}

	switch {
	case cmd.Flags().Changed("unlock-at") && cmd.Flags().Changed("unlock-in"):
		return req, errors.New("use only one of --unlock-at and --unlock-in")
	case cmd.Flags().Changed("unlock-at"):
		unlockAt, err := parseUnlockAt(opts.unlockAt)
		if err != nil {
			return req, err
		}
		req.UnlockAt = &unlockAt
	case cmd.Flags().Changed("unlock-in"):
		unlockAt := now.Add(opts.unlockIn).UTC()
		req.UnlockAt = &unlockAt
	}

	if req.Type == "" {
		req.Type = "general"
		if req.UnlockAt != nil {
			req.Type = "time_locked"
		}
	}
	if strings.TrimSpace(req.Author) == "" {
		return req, errors.New("author is required (--author)")
	}
	if strings.TrimSpace(req.ID) == "" {
		id, err := auth.GenerateIdentity()
		if err != nil {
			return req, err
		}
		req.ID = id
	}
	return req, nil
}

func overrideString(cmd *cobra.Command, flag string, dst *string, value string) {
	if cmd.Flags().Changed(flag) {
		*dst = value
	}
}

func bindCreateFlags(cmd *cobra.Command, opts *createCmdOptions) {
	cmd.Flags().StringVar(&opts.id, "id", "", "explicit capsule id (base58); generated when omitted")
	cmd.Flags().StringVarP(&opts.author, "author", "a", "", "author identity (base58)")
	cmd.Flags().StringVarP(&opts.recipient, "recipient", "r", "", "recipient")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "capsule message")
	cmd.Flags().StringVar(&opts.mediaURL, "media-url", "", "media url")
	cmd.Flags().StringVarP(&opts.kind, "type", "t", "", "capsule type (general|time_locked)")
	cmd.Flags().StringVar(&opts.unlockAt, "unlock-at", "", "unlock time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().DurationVar(&opts.unlockIn, "unlock-in", 0, "unlock after this duration from now")
	cmd.Flags().StringVar(&opts.location, "location", "", "location passphrase required to view")
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "markdown file with YAML front matter")
}
