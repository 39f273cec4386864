package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"memoreal/internal/models"
)

const (
	testAuthor    = "9sEBnNzja3frQmiU6DBqfn69xMaJSSDdPaPq5GvBhSjQ"
	testRecipient = "3fvLRfGFfAYRb28v8C7r2WgpFCUBkcUHZdsvq5fEuEQ3"
)

// testStore creates a temporary store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testCapsule(id string, capsuleType models.CapsuleType, createdAt time.Time) *models.Capsule {
	return &models.Capsule{
		ID:        id,
		Author:    testAuthor,
		Title:     "첫 번째 캡슐",
		Recipient: testRecipient,
		Message:   "안녕하세요",
		MediaURL:  "https://example.com/a.png",
		Type:      capsuleType,
		CreatedAt: createdAt,
	}
}

func TestCreateAndGetCapsule(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	unlockAt := now.Add(time.Hour)

	capsule := testCapsule("cap-1", models.CapsuleTimeLocked, now)
	capsule.UnlockAt = &unlockAt
	capsule.LocationHash = "$2a$10$hash"

	if err := st.CreateCapsule(ctx, capsule); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.GetCapsule(ctx, "cap-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected capsule, got nil")
	}
	if got.Title != "첫 번째 캡슐" {
		t.Fatalf("expected title preserved, got %q", got.Title)
	}
	if got.Type != models.CapsuleTimeLocked {
		t.Fatalf("expected time_locked, got %q", got.Type)
	}
	if got.UnlockAt == nil || !got.UnlockAt.Equal(unlockAt) {
		t.Fatalf("expected unlock_at %v, got %v", unlockAt, got.UnlockAt)
	}
	if got.LocationHash != "$2a$10$hash" {
		t.Fatalf("expected location hash round trip, got %q", got.LocationHash)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, got.CreatedAt)
	}
	if got.Minted() {
		t.Fatal("new capsule should not be minted")
	}
}

func TestGetCapsuleMissing(t *testing.T) {
	st := testStore(t)

	got, err := st.GetCapsule(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil capsule, got %+v", got)
	}
}

func TestCreateCapsuleDuplicate(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := st.CreateCapsule(ctx, testCapsule("cap-1", models.CapsuleGeneral, now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := st.CreateCapsule(ctx, testCapsule("cap-1", models.CapsuleGeneral, now))
	if !errors.Is(err, ErrCapsuleExists) {
		t.Fatalf("expected ErrCapsuleExists, got %v", err)
	}

	exists, err := st.CapsuleExists(ctx, "cap-1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("expected capsule to exist")
	}
	exists, err = st.CapsuleExists(ctx, "cap-2")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected cap-2 to be absent")
	}
}

func TestListCapsulesFilters(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := testCapsule("cap-1", models.CapsuleGeneral, base)
	second := testCapsule("cap-2", models.CapsuleTimeLocked, base.Add(time.Minute))
	second.UnlockAt = &base
	third := testCapsule("cap-3", models.CapsuleGeneral, base.Add(2*time.Minute))
	third.Author = testRecipient

	for _, c := range []*models.Capsule{first, second, third} {
		if err := st.CreateCapsule(ctx, c); err != nil {
			t.Fatalf("create %s: %v", c.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter CapsuleFilter
		want   []string
	}{
		{name: "all newest first", filter: CapsuleFilter{}, want: []string{"cap-3", "cap-2", "cap-1"}},
		{name: "by author", filter: CapsuleFilter{Author: testAuthor}, want: []string{"cap-2", "cap-1"}},
		{name: "by type", filter: CapsuleFilter{Type: "time_locked"}, want: []string{"cap-2"}},
		{name: "limit", filter: CapsuleFilter{Limit: 1}, want: []string{"cap-3"}},
		{name: "limit offset", filter: CapsuleFilter{Limit: 1, Offset: 1}, want: []string{"cap-2"}},
		{name: "offset only", filter: CapsuleFilter{Offset: 2}, want: []string{"cap-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.ListCapsules(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d capsules, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestMarkCapsuleMintedOnce(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := st.CreateCapsule(ctx, testCapsule("cap-1", models.CapsuleGeneral, now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := st.MarkCapsuleMinted(ctx, "cap-1", "mint-1", now); err != nil {
		t.Fatalf("mark minted: %v", err)
	}
	if err := st.MarkCapsuleMinted(ctx, "cap-1", "mint-2", now); !errors.Is(err, ErrMintExists) {
		t.Fatalf("expected ErrMintExists on second mark, got %v", err)
	}
	if err := st.MarkCapsuleMinted(ctx, "cap-1", "mint-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("expected repeated mark with the same mint to succeed, got %v", err)
	}
	if err := st.MarkCapsuleMinted(ctx, "missing", "mint-3", now); !errors.Is(err, ErrMintExists) {
		t.Fatalf("expected ErrMintExists for missing capsule, got %v", err)
	}

	got, err := st.GetCapsule(ctx, "cap-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MintAddress != "mint-1" {
		t.Fatalf("expected first mint address kept, got %q", got.MintAddress)
	}
	if got.MintedAt == nil || !got.MintedAt.Equal(now) {
		t.Fatalf("expected minted_at %v, got %v", now, got.MintedAt)
	}
}

func TestRecordMintAndTokenAccount(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := st.CreateCapsule(ctx, testCapsule("cap-1", models.CapsuleGeneral, now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	receipt := models.MintReceipt{
		CapsuleID:    "cap-1",
		Owner:        testAuthor,
		Mint:         "mint-1",
		TokenAccount: "ata-1",
		Name:         "Memory",
		Symbol:       "MEM",
		URI:          "https://example.com/meta.json",
		Amount:       1,
		Decimals:     0,
		Signature:    "sig-1",
		MintedAt:     now,
	}
	if err := st.RecordMint(ctx, receipt); err != nil {
		t.Fatalf("record mint: %v", err)
	}

	got, err := st.GetMint(ctx, "cap-1")
	if err != nil {
		t.Fatalf("get mint: %v", err)
	}
	if got == nil {
		t.Fatal("expected mint, got nil")
	}
	if got.Mint != "mint-1" || got.Amount != 1 || got.Decimals != 0 {
		t.Fatalf("unexpected mint: %+v", got)
	}
	if got.MetadataAccount != "" {
		t.Fatalf("expected empty metadata account, got %q", got.MetadataAccount)
	}
	if !got.MintedAt.Equal(now) {
		t.Fatalf("expected minted_at %v, got %v", now, got.MintedAt)
	}

	account, err := st.GetTokenAccount(ctx, "ata-1")
	if err != nil {
		t.Fatalf("get token account: %v", err)
	}
	if account == nil || account.Amount != 1 || account.Owner != testAuthor {
		t.Fatalf("unexpected token account: %+v", account)
	}

	dup := receipt
	dup.Mint = "mint-2"
	dup.TokenAccount = "ata-2"
	if err := st.RecordMint(ctx, dup); !errors.Is(err, ErrMintExists) {
		t.Fatalf("expected ErrMintExists, got %v", err)
	}
	if account, err := st.GetTokenAccount(ctx, "ata-2"); err != nil || account != nil {
		t.Fatalf("expected no account after rolled back mint, got %+v, %v", account, err)
	}
}

func TestGetMintMissing(t *testing.T) {
	st := testStore(t)
	got, err := st.GetMint(context.Background(), "cap-x")
	if err != nil {
		t.Fatalf("get mint: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestStoreInfo(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := st.CreateCapsule(ctx, testCapsule("cap-1", models.CapsuleGeneral, now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	locked := testCapsule("cap-2", models.CapsuleTimeLocked, now)
	locked.UnlockAt = &now
	if err := st.CreateCapsule(ctx, locked); err != nil {
		t.Fatalf("create: %v", err)
	}

	info, err := st.StoreInfo(ctx)
	if err != nil {
		t.Fatalf("store info: %v", err)
	}
	if info.SchemaVersion != 2 {
		t.Fatalf("expected schema version 2, got %d", info.SchemaVersion)
	}
	if info.TotalCapsules != 2 {
		t.Fatalf("expected 2 capsules, got %d", info.TotalCapsules)
	}
	if info.CapsuleCounts["general"] != 1 || info.CapsuleCounts["time_locked"] != 1 {
		t.Fatalf("unexpected counts: %v", info.CapsuleCounts)
	}
	if info.TotalMints != 0 {
		t.Fatalf("expected 0 mints, got %d", info.TotalMints)
	}
}

func testReceipt(capsuleID, mint, tokenAccount string, mintedAt time.Time) models.MintReceipt {
	return models.MintReceipt{
		CapsuleID:    capsuleID,
		Owner:        testAuthor,
		Mint:         mint,
		TokenAccount: tokenAccount,
		Name:         "Memory",
		Symbol:       "MEM",
		URI:          "https://example.com/meta.json",
		Amount:       1,
		Signature:    "sig-" + mint,
		MintedAt:     mintedAt,
	}
}

func TestRecordMintMarksCapsule(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	if err := st.CreateCapsule(ctx, testCapsule("cap-1", models.CapsuleGeneral, now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.RecordMint(ctx, testReceipt("cap-1", "mint-1", "ata-1", now)); err != nil {
		t.Fatalf("record mint: %v", err)
	}

	got, err := st.GetCapsule(ctx, "cap-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MintAddress != "mint-1" || got.MintedAt == nil || !got.MintedAt.Equal(now) {
		t.Fatalf("expected capsule marked with mint-1 at %v, got %q %v", now, got.MintAddress, got.MintedAt)
	}
	if err := st.MarkCapsuleMinted(ctx, "cap-1", "mint-1", now); err != nil {
		t.Fatalf("expected mark after record to be a no-op, got %v", err)
	}
}

func TestRecordMintRejectsForeignTokenAccount(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, id := range []string{"cap-1", "cap-2"} {
		if err := st.CreateCapsule(ctx, testCapsule(id, models.CapsuleGeneral, now)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := st.RecordMint(ctx, testReceipt("cap-1", "mint-1", "shared-ata", now)); err != nil {
		t.Fatalf("record first mint: %v", err)
	}

	err := st.RecordMint(ctx, testReceipt("cap-2", "mint-2", "shared-ata", now))
	if !errors.Is(err, ErrTokenAccountConflict) {
		t.Fatalf("expected ErrTokenAccountConflict, got %v", err)
	}

	account, err := st.GetTokenAccount(ctx, "shared-ata")
	if err != nil {
		t.Fatalf("get token account: %v", err)
	}
	if account == nil || account.Mint != "mint-1" || account.Amount != 1 {
		t.Fatalf("expected first mint's balance untouched, got %+v", account)
	}
	if mint, err := st.GetMint(ctx, "cap-2"); err != nil || mint != nil {
		t.Fatalf("expected second mint rolled back, got %+v, %v", mint, err)
	}
	capsule, err := st.GetCapsule(ctx, "cap-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if capsule.Minted() {
		t.Fatal("capsule must stay unminted after a refused mint")
	}
}

func TestRecordMintRejectsReusedMintAddress(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, id := range []string{"cap-1", "cap-2"} {
		if err := st.CreateCapsule(ctx, testCapsule(id, models.CapsuleGeneral, now)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if err := st.RecordMint(ctx, testReceipt("cap-1", "mint-1", "ata-1", now)); err != nil {
		t.Fatalf("record first mint: %v", err)
	}

	err := st.RecordMint(ctx, testReceipt("cap-2", "mint-1", "ata-2", now))
	if !errors.Is(err, ErrMintAddressTaken) {
		t.Fatalf("expected ErrMintAddressTaken, got %v", err)
	}
	if errors.Is(err, ErrMintExists) {
		t.Fatal("a reused mint address must not read as an already minted capsule")
	}
}
