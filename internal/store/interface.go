package store

import (
	"context"
	"time"

	"memoreal/internal/models"
)

// CapsuleStore abstracts capsule storage backends.
type CapsuleStore interface {
	CapsuleExists(ctx context.Context, id string) (bool, error)
	CreateCapsule(ctx context.Context, capsule *models.Capsule) error
	GetCapsule(ctx context.Context, id string) (*models.Capsule, error)
	ListCapsules(ctx context.Context, filter CapsuleFilter) ([]models.Capsule, error)
	MarkCapsuleMinted(ctx context.Context, id, mintAddress string, mintedAt time.Time) error
	StoreInfo(ctx context.Context) (*StoreInfo, error)
}

// LedgerStore persists token bookkeeping for the local ledger.
type LedgerStore interface {
	RecordMint(ctx context.Context, receipt models.MintReceipt) error
	GetMint(ctx context.Context, capsuleID string) (*models.MintReceipt, error)
	GetTokenAccount(ctx context.Context, address string) (*models.TokenAccount, error)
}

var (
	_ CapsuleStore = (*Store)(nil)
	_ LedgerStore  = (*Store)(nil)
)
