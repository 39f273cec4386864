package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"memoreal/internal/models"
	"memoreal/internal/store"
)

func TestRunMigrateDryRunLeavesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capsules.db")

	report, err := runMigrate(context.Background(), path, true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if len(report.Migrations.Pending) == 0 || report.Contents != nil {
		t.Fatalf("expected pending migrations and no contents, got %+v", report)
	}

	var out bytes.Buffer
	printMigrateReport(&out, report, true)
	if !strings.Contains(out.String(), "Pending migrations: 2") || strings.Contains(out.String(), "Capsules:") {
		t.Fatalf("unexpected dry-run output:\n%s", out.String())
	}

	again, err := runMigrate(context.Background(), path, true)
	if err != nil {
		t.Fatalf("second dry run: %v", err)
	}
	if again.Migrations.CurrentVersion != 0 {
		t.Fatalf("dry run must not apply migrations, got version %d", again.Migrations.CurrentVersion)
	}
}

func TestRunMigrateReportsCapsulesAndMints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capsules.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	now := time.Now().UTC()
	unlockAt := now.Add(time.Hour)
	for i, capsuleType := range []models.CapsuleType{models.CapsuleGeneral, models.CapsuleTimeLocked, models.CapsuleGeneral} {
		c := &models.Capsule{
			ID:        string(rune('a'+i)) + "-capsule",
			Author:    testAuthor,
			Title:     "t",
			Recipient: "r",
			Type:      capsuleType,
			CreatedAt: now,
		}
		if capsuleType == models.CapsuleTimeLocked {
			c.UnlockAt = &unlockAt
		}
		if err := st.CreateCapsule(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := st.RecordMint(ctx, models.MintReceipt{
		CapsuleID: "a-capsule", Owner: testAuthor, Mint: "mint-a", TokenAccount: "ata-a", Amount: 1, Signature: "sig", MintedAt: now,
	}); err != nil {
		t.Fatalf("record mint: %v", err)
	}
	st.Close()

	report, err := runMigrate(ctx, path, false)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var out bytes.Buffer
	printMigrateReport(&out, report, false)
	for _, want := range []string{
		"Migrations applied successfully.",
		"Capsules: 3 (general 2, time_locked 1)",
		"Minted tokens: 1",
	} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}
