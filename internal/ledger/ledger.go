// Package ledger issues capsule tokens on a token ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"memoreal/internal/models"
	"memoreal/internal/store"
)

const (
	ModeLocal  = "local"
	ModeRemote = "remote"

	// A capsule token is a single indivisible unit.
	tokenAmount   uint64 = 1
	tokenDecimals uint8  = 0
)

var (
	// ErrAlreadyMinted is returned when the ledger already holds a mint for the capsule.
	ErrAlreadyMinted = errors.New("capsule token already minted")
	// ErrInvalidRequest is returned for mint requests the ledger refuses to
	// record, such as missing fields or addresses held by another capsule.
	ErrInvalidRequest = errors.New("invalid mint request")
)

// MintRequest asks the ledger to issue one capsule token to Owner.
type MintRequest struct {
	CapsuleID       string `json:"capsule_id"`
	Owner           string `json:"owner"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	URI             string `json:"uri"`
	Mint            string `json:"mint,omitempty"`
	TokenAccount    string `json:"token_account,omitempty"`
	MetadataAccount string `json:"metadata_account,omitempty"`
}

func (r MintRequest) validate() error {
	switch {
	case strings.TrimSpace(r.CapsuleID) == "":
		return fmt.Errorf("%w: capsule_id is required", ErrInvalidRequest)
	case strings.TrimSpace(r.Owner) == "":
		return fmt.Errorf("%w: owner is required", ErrInvalidRequest)
	}
	return nil
}

// Ledger mints capsule tokens.
type Ledger interface {
	Mint(ctx context.Context, req MintRequest) (models.MintReceipt, error)
	// Lookup returns the receipt held for capsuleID, or nil when none exists.
	Lookup(ctx context.Context, capsuleID string) (*models.MintReceipt, error)
}

// Config selects and configures a ledger implementation.
type Config struct {
	Mode    string
	URL     string
	Timeout time.Duration
	Token   string
}

// New builds the ledger selected by cfg.Mode. The local ledger records mints in st.
func New(cfg Config, st store.LedgerStore, logger *slog.Logger) (Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case "", ModeLocal:
		if st == nil {
			return nil, fmt.Errorf("local ledger requires a store")
		}
		return NewLocal(st, logger), nil
	case ModeRemote:
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, fmt.Errorf("remote ledger requires ledger.url")
		}
		remote := NewHTTP(cfg.URL, cfg.Timeout, logger)
		remote.token = strings.TrimSpace(cfg.Token)
		return remote, nil
	default:
		return nil, fmt.Errorf("invalid ledger mode %q (use local or remote)", cfg.Mode)
	}
}
