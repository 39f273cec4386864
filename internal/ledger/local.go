package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"memoreal/internal/auth"
	"memoreal/internal/models"
	"memoreal/internal/store"
)

// Local is a ledger backed by the capsule database.
type Local struct {
	store  store.LedgerStore
	logger *slog.Logger
	now    func() time.Time
}

// NewLocal creates a store-backed ledger.
func NewLocal(st store.LedgerStore, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{store: st, logger: logger, now: time.Now}
}

// Mint issues one token for req.CapsuleID. Addresses left empty are derived.
func (l *Local) Mint(ctx context.Context, req MintRequest) (models.MintReceipt, error) {
	if err := req.validate(); err != nil {
		return models.MintReceipt{}, err
	}

	mint := req.Mint
	if mint == "" {
		generated, err := auth.GenerateIdentity()
		if err != nil {
			return models.MintReceipt{}, err
		}
		mint = generated
	}
	tokenAccount := req.TokenAccount
	if tokenAccount == "" {
		tokenAccount = auth.DeriveAddress("token-account", req.Owner, mint)
	}
	metadataAccount := req.MetadataAccount
	if metadataAccount == "" {
		metadataAccount = auth.DeriveAddress("metadata", mint)
	}

	receipt := models.MintReceipt{
		CapsuleID:       req.CapsuleID,
		Owner:           req.Owner,
		Mint:            mint,
		TokenAccount:    tokenAccount,
		MetadataAccount: metadataAccount,
		Name:            req.Name,
		Symbol:          req.Symbol,
		URI:             req.URI,
		Amount:          tokenAmount,
		Decimals:        tokenDecimals,
		Signature:       uuid.NewString(),
		MintedAt:        l.now().UTC(),
	}

	if err := l.store.RecordMint(ctx, receipt); err != nil {
		switch {
		case errors.Is(err, store.ErrMintExists):
			return models.MintReceipt{}, ErrAlreadyMinted
		case errors.Is(err, store.ErrMintAddressTaken), errors.Is(err, store.ErrTokenAccountConflict):
			return models.MintReceipt{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return models.MintReceipt{}, err
	}

	l.logger.Debug("local mint recorded", "capsule_id", receipt.CapsuleID, "mint", receipt.Mint, "token_account", receipt.TokenAccount)
	return receipt, nil
}

// Lookup returns the recorded mint for capsuleID.
func (l *Local) Lookup(ctx context.Context, capsuleID string) (*models.MintReceipt, error) {
	return l.store.GetMint(ctx, capsuleID)
}
