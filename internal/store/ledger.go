package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"memoreal/internal/models"
)

// RecordMint stores a mint, credits its token account and marks the capsule
// minted in one transaction. A second mint for the same capsule returns
// ErrMintExists; a mint address already used by another capsule returns
// ErrMintAddressTaken.
func (s *Store) RecordMint(ctx context.Context, receipt models.MintReceipt) (err error) {
	if receipt.CapsuleID == "" || receipt.Mint == "" || receipt.TokenAccount == "" {
		return fmt.Errorf("capsule id, mint and token account are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO token_mints (
			mint, capsule_id, owner, token_account, metadata_account, name, symbol, uri, amount, decimals, signature, minted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		receipt.Mint,
		receipt.CapsuleID,
		receipt.Owner,
		receipt.TokenAccount,
		nullIfEmpty(receipt.MetadataAccount),
		receipt.Name,
		receipt.Symbol,
		receipt.URI,
		receipt.Amount,
		receipt.Decimals,
		receipt.Signature,
		formatTime(receipt.MintedAt),
	)
	if isUniqueConstraint(err) {
		err = mintConstraintError(err)
		return err
	}
	if err != nil {
		return err
	}

	// The balance only grows for the same owner and mint; any other holder
	// leaves the row untouched and the mint is refused.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO token_accounts (address, owner, mint, amount) VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET amount = token_accounts.amount + excluded.amount
		WHERE token_accounts.owner = excluded.owner AND token_accounts.mint = excluded.mint
	`, receipt.TokenAccount, receipt.Owner, receipt.Mint, receipt.Amount)
	if isUniqueConstraint(err) {
		err = ErrTokenAccountConflict
		return err
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		err = ErrTokenAccountConflict
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE capsules SET mint_address = ?, minted_at = ? WHERE id = ? AND minted_at IS NULL",
		receipt.Mint, formatTime(receipt.MintedAt), receipt.CapsuleID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// mintConstraintError tells a second mint of one capsule apart from a mint
// address reused across capsules.
func mintConstraintError(err error) error {
	if strings.Contains(err.Error(), "token_mints.capsule_id") {
		return ErrMintExists
	}
	return fmt.Errorf("%w: %v", ErrMintAddressTaken, err)
}

// GetMint returns the mint recorded for a capsule, or nil.
func (s *Store) GetMint(ctx context.Context, capsuleID string) (*models.MintReceipt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT mint, capsule_id, owner, token_account, metadata_account, name, symbol, uri, amount, decimals, signature, minted_at
		FROM token_mints WHERE capsule_id = ?
	`, capsuleID)

	var receipt models.MintReceipt
	var metadataAccount sql.NullString
	var mintedAt string
	if err := row.Scan(
		&receipt.Mint,
		&receipt.CapsuleID,
		&receipt.Owner,
		&receipt.TokenAccount,
		&metadataAccount,
		&receipt.Name,
		&receipt.Symbol,
		&receipt.URI,
		&receipt.Amount,
		&receipt.Decimals,
		&receipt.Signature,
		&mintedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	receipt.MetadataAccount = metadataAccount.String

	parsed, err := parseTime(mintedAt)
	if err != nil {
		return nil, err
	}
	receipt.MintedAt = parsed
	return &receipt, nil
}

// GetTokenAccount returns an associated token account by address, or nil.
func (s *Store) GetTokenAccount(ctx context.Context, address string) (*models.TokenAccount, error) {
	var account models.TokenAccount
	err := s.db.QueryRowContext(ctx,
		"SELECT address, owner, mint, amount FROM token_accounts WHERE address = ?", address,
	).Scan(&account.Address, &account.Owner, &account.Mint, &account.Amount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
