package main

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"memoreal/internal/api"
)

// capsuleFrontMatter is the YAML header accepted by create --file.
type capsuleFrontMatter struct {
	ID        string `yaml:"id"`
	Author    string `yaml:"author"`
	Title     string `yaml:"title"`
	Recipient string `yaml:"recipient"`
	Type      string `yaml:"type"`
	UnlockAt  string `yaml:"unlock_at"`
	MediaURL  string `yaml:"media_url"`
	Location  string `yaml:"location"`
}

// parseMarkdown splits a capsule document into its front matter and message body.
func parseMarkdown(input string) (capsuleFrontMatter, string, error) {
	var frontMatter capsuleFrontMatter
	content := input

	lines := strings.Split(input, "\n")
	if len(lines) >= 2 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return frontMatter, "", fmt.Errorf("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &frontMatter); err != nil {
			return frontMatter, "", fmt.Errorf("front matter: %w", err)
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	return frontMatter, strings.TrimSpace(content), nil
}

func frontMatterToRequest(fm capsuleFrontMatter, body string) (api.CapsuleCreateRequest, error) {
	req := api.CapsuleCreateRequest{
		ID:        strings.TrimSpace(fm.ID),
		Author:    strings.TrimSpace(fm.Author),
		Title:     fm.Title,
		Recipient: fm.Recipient,
		Message:   body,
		MediaURL:  fm.MediaURL,
		Type:      fm.Type,
	}
	if strings.TrimSpace(fm.UnlockAt) != "" {
		unlockAt, err := parseUnlockAt(fm.UnlockAt)
		if err != nil {
			return req, err
		}
		req.UnlockAt = &unlockAt
	}
	if fm.Location != "" {
		location := fm.Location
		req.Location = &location
	}
	return req, nil
}

// parseUnlockAt accepts RFC 3339 timestamps or plain dates, read as UTC midnight.
func parseUnlockAt(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.DateOnly, value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid unlock time %q (use RFC 3339 or YYYY-MM-DD)", raw)
}
