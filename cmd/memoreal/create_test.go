package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

const testAuthor = "3fvLRfGFfAYRb28v8C7r2WgpFCUBkcUHZdsvq5fEuEQ3"

func newTestCreateCmd(t *testing.T, flags ...string) (*cobra.Command, *createCmdOptions) {
	t.Helper()
	opts := &createCmdOptions{}
	cmd := &cobra.Command{Use: "create"}
	bindCreateFlags(cmd, opts)
	if err := cmd.Flags().Parse(flags); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd, opts
}

func TestBuildCreateRequestFromFlags(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cmd, opts := newTestCreateCmd(t, "--author", testAuthor, "--message", "see you", "--unlock-in", "24h")

	req, err := buildCreateRequest(cmd, opts, []string{"new", "year"}, now)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Title != "new year" {
		t.Fatalf("unexpected title %q", req.Title)
	}
	if req.Type != "time_locked" {
		t.Fatalf("expected time_locked when an unlock time is set, got %q", req.Type)
	}
	if req.UnlockAt == nil || !req.UnlockAt.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("unexpected unlock_at %v", req.UnlockAt)
	}
	if req.ID == "" {
		t.Fatal("expected generated id")
	}
	if req.Location != nil {
		t.Fatal("location should be unset")
	}
}

func TestBuildCreateRequestFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capsule.md")
	doc := "---\nauthor: " + testAuthor + "\ntitle: from file\ntype: general\n---\nbody text\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cmd, opts := newTestCreateCmd(t, "--file", path, "--recipient", "mom")
	req, err := buildCreateRequest(cmd, opts, nil, time.Now())
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Title != "from file" || req.Message != "body text" || req.Recipient != "mom" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Type != "general" {
		t.Fatalf("expected general, got %q", req.Type)
	}
}

func TestBuildCreateRequestErrors(t *testing.T) {
	cmd, opts := newTestCreateCmd(t, "--message", "x")
	if _, err := buildCreateRequest(cmd, opts, []string{"t"}, time.Now()); err == nil {
		t.Fatal("expected missing author error")
	}

	cmd, opts = newTestCreateCmd(t, "--author", testAuthor, "--unlock-at", "2030-01-01", "--unlock-in", "1h")
	if _, err := buildCreateRequest(cmd, opts, []string{"t"}, time.Now()); err == nil {
		t.Fatal("expected conflicting unlock flags error")
	}
}
