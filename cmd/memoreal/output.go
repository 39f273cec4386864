package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"memoreal/internal/api"
	"memoreal/internal/format"
	"memoreal/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeCapsuleList(capsules []api.CapsuleSummary) error {
	for _, c := range capsules {
		if err := writePlain("%s\n", formatCapsuleLine(c)); err != nil {
			return err
		}
	}
	return nil
}

func writeCapsuleDetail(c api.CapsuleSummary) error {
	lines := []string{
		fmt.Sprintf("id: %s", c.ID),
		fmt.Sprintf("author: %s", c.Author),
		fmt.Sprintf("type: %s", c.Type),
		fmt.Sprintf("created_at: %s", formatTime(c.CreatedAt)),
		fmt.Sprintf("unlockable: %t", c.Unlockable),
		fmt.Sprintf("minted: %t", c.Minted),
	}
	if c.Recipient != "" {
		lines = append(lines, fmt.Sprintf("recipient: %s", c.Recipient))
	}
	if c.UnlockAt != nil {
		lines = append(lines, fmt.Sprintf("unlock_at: %s", formatTime(*c.UnlockAt)))
	}
	if c.HasLocation {
		lines = append(lines, "location: sealed")
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeCapsuleContent(c models.CapsuleContent) error {
	lines := []string{
		fmt.Sprintf("id: %s", c.ID),
		fmt.Sprintf("author: %s", c.Author),
		fmt.Sprintf("title: %s", c.Title),
		fmt.Sprintf("recipient: %s", c.Recipient),
		fmt.Sprintf("type: %s", c.Type),
	}
	if c.MediaURL != "" {
		lines = append(lines, fmt.Sprintf("media_url: %s", c.MediaURL))
	}
	if c.UnlockAt != nil {
		lines = append(lines, fmt.Sprintf("unlock_at: %s", formatTime(*c.UnlockAt)))
	}
	lines = append(lines, "", c.Message)
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeMintReceipt(r models.MintReceipt) error {
	lines := []string{
		fmt.Sprintf("capsule_id: %s", r.CapsuleID),
		fmt.Sprintf("owner: %s", r.Owner),
		fmt.Sprintf("mint: %s", r.Mint),
		fmt.Sprintf("token_account: %s", r.TokenAccount),
		fmt.Sprintf("amount: %d", r.Amount),
		fmt.Sprintf("signature: %s", r.Signature),
		fmt.Sprintf("minted_at: %s", formatTime(r.MintedAt)),
	}
	if r.MetadataAccount != "" {
		lines = append(lines, fmt.Sprintf("metadata_account: %s", r.MetadataAccount))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatCapsuleLine(c api.CapsuleSummary) string {
	marker := "●"
	if !c.Unlockable {
		marker = "○"
	}
	line := fmt.Sprintf("%s %s [%s] author=%s", marker, c.ID, c.Type, c.Author)
	if c.UnlockAt != nil {
		line += " unlock_at=" + formatTime(*c.UnlockAt)
	}
	if c.Minted {
		line += " minted"
	}
	return line
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
