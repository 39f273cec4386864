package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"memoreal/internal/models"
)

const capsuleColumns = `id, author, title, recipient, message, media_url, type, unlock_at, location_hash, created_at, mint_address, minted_at`

// CapsuleFilter narrows capsule listings.
type CapsuleFilter struct {
	Author string
	Type   string
	Limit  int
	Offset int
}

// CapsuleExists checks whether a capsule exists by id.
func (s *Store) CapsuleExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM capsules WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateCapsule inserts a capsule. Duplicate ids return ErrCapsuleExists.
func (s *Store) CreateCapsule(ctx context.Context, capsule *models.Capsule) error {
	if capsule == nil {
		return fmt.Errorf("capsule is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO capsules (
			id, author, title, recipient, message, media_url, type, unlock_at, location_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		capsule.ID,
		capsule.Author,
		capsule.Title,
		capsule.Recipient,
		capsule.Message,
		capsule.MediaURL,
		string(capsule.Type),
		nullTime(capsule.UnlockAt),
		nullIfEmpty(capsule.LocationHash),
		formatTime(capsule.CreatedAt),
	)
	if isUniqueConstraint(err) {
		return ErrCapsuleExists
	}
	return err
}

// GetCapsule returns a capsule by id, or nil when it does not exist.
func (s *Store) GetCapsule(ctx context.Context, id string) (*models.Capsule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+capsuleColumns+" FROM capsules WHERE id = ?", id)
	return scanCapsule(row)
}

// ListCapsules returns capsules matching filter, newest first.
func (s *Store) ListCapsules(ctx context.Context, filter CapsuleFilter) ([]models.Capsule, error) {
	query, args := buildCapsuleListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var capsules []models.Capsule
	for rows.Next() {
		capsule, err := scanCapsule(rows)
		if err != nil {
			return nil, err
		}
		capsules = append(capsules, *capsule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return capsules, nil
}

// MarkCapsuleMinted records the mint of a capsule exactly once. Marking it
// again with the same mint address is a no-op. It returns ErrMintExists when
// the capsule is missing or minted under another address.
func (s *Store) MarkCapsuleMinted(ctx context.Context, id, mintAddress string, mintedAt time.Time) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	if mintAddress == "" {
		return fmt.Errorf("mint address is required")
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE capsules SET mint_address = ?, minted_at = ? WHERE id = ? AND minted_at IS NULL",
		mintAddress, formatTime(mintedAt), id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var current sql.NullString
	err = s.db.QueryRowContext(ctx, "SELECT mint_address FROM capsules WHERE id = ?", id).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrMintExists
	}
	if err != nil {
		return err
	}
	if current.Valid && current.String == mintAddress {
		return nil
	}
	return ErrMintExists
}

func buildCapsuleListQuery(filter CapsuleFilter) (string, []any) {
	query := "SELECT " + capsuleColumns + " FROM capsules"
	conditions := []string{}
	args := []any{}

	if filter.Author != "" {
		conditions = append(conditions, "author = ?")
		args = append(args, filter.Author)
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, filter.Type)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	return query, args
}

func scanCapsule(scanner interface {
	Scan(dest ...any) error
}) (*models.Capsule, error) {
	var capsule models.Capsule
	var capsuleType, createdAt string
	var unlockAt, locationHash, mintAddress, mintedAt sql.NullString

	if err := scanner.Scan(
		&capsule.ID,
		&capsule.Author,
		&capsule.Title,
		&capsule.Recipient,
		&capsule.Message,
		&capsule.MediaURL,
		&capsuleType,
		&unlockAt,
		&locationHash,
		&createdAt,
		&mintAddress,
		&mintedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	capsule.Type = models.CapsuleType(capsuleType)
	capsule.LocationHash = locationHash.String
	capsule.MintAddress = mintAddress.String

	parsedCreated, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	capsule.CreatedAt = parsedCreated

	if capsule.UnlockAt, err = parseNullTime(unlockAt); err != nil {
		return nil, err
	}
	if capsule.MintedAt, err = parseNullTime(mintedAt); err != nil {
		return nil, err
	}

	return &capsule, nil
}
