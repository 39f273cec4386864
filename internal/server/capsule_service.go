package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"memoreal/internal/api"
	"memoreal/internal/capsule"
	"memoreal/internal/ledger"
	"memoreal/internal/models"
	"memoreal/internal/store"
)

// CapsuleService applies capsule rules on top of the store and the ledger.
type CapsuleService struct {
	store     store.CapsuleStore
	ledger    ledger.Ledger
	evaluator *capsule.Evaluator
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewCapsuleService constructs a CapsuleService.
func NewCapsuleService(st store.CapsuleStore, l ledger.Ledger, policy capsule.LocationPolicy, metrics *Metrics, logger *slog.Logger) *CapsuleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapsuleService{
		store:     st,
		ledger:    l,
		evaluator: capsule.NewEvaluator(policy),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates and stores a new capsule.
func (s *CapsuleService) Create(ctx context.Context, req api.CapsuleCreateRequest) (api.CapsuleSummary, error) {
	var resp api.CapsuleSummary

	capsuleType, err := normalizeType(req.Type)
	if err != nil {
		return resp, err
	}

	location := ""
	if req.Location != nil {
		location = *req.Location
	}

	now := s.now()
	record, err := capsule.New(capsule.NewParams{
		ID:        req.ID,
		Author:    req.Author,
		Title:     req.Title,
		Recipient: req.Recipient,
		Message:   req.Message,
		MediaURL:  req.MediaURL,
		Type:      capsuleType,
		UnlockAt:  req.UnlockAt,
		Location:  location,
	}, now)
	if err != nil {
		return resp, mapCapsuleError(err)
	}

	if err := s.store.CreateCapsule(ctx, record); err != nil {
		if errors.Is(err, store.ErrCapsuleExists) {
			return resp, mapCapsuleError(capsule.ErrCapsuleExists)
		}
		return resp, storeFailure(err)
	}

	s.metrics.IncrementCreated(string(record.Type))
	s.logger.Info("capsule created", "id", record.ID, "type", record.Type, "author", record.Author)
	return s.summary(record, now), nil
}

// Get returns capsule metadata without its content.
func (s *CapsuleService) Get(ctx context.Context, id string) (api.CapsuleSummary, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return api.CapsuleSummary{}, err
	}
	return s.summary(record, s.now()), nil
}

// List returns capsule summaries matching filter.
func (s *CapsuleService) List(ctx context.Context, filter store.CapsuleFilter) ([]api.CapsuleSummary, error) {
	if filter.Type != "" {
		capsuleType, err := normalizeType(filter.Type)
		if err != nil {
			return nil, err
		}
		filter.Type = string(capsuleType)
	}
	filter.Author = strings.TrimSpace(filter.Author)

	records, err := s.store.ListCapsules(ctx, filter)
	if err != nil {
		return nil, storeFailure(err)
	}

	now := s.now()
	out := make([]api.CapsuleSummary, 0, len(records))
	for i := range records {
		out = append(out, s.summary(&records[i], now))
	}
	return out, nil
}

// View reveals capsule content when the unlock evaluator allows it.
func (s *CapsuleService) View(ctx context.Context, id string, location *string) (models.CapsuleContent, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return models.CapsuleContent{}, err
	}

	content, err := s.evaluator.View(record, s.now(), location)
	if err != nil {
		switch {
		case errors.Is(err, capsule.ErrLocationMismatch):
			s.metrics.IncrementView("location_mismatch")
		default:
			s.metrics.IncrementView("locked")
		}
		return models.CapsuleContent{}, mapCapsuleError(err)
	}
	s.metrics.IncrementView("revealed")
	return content, nil
}

// IsUnlockable reports whether the capsule's time gate is open.
func (s *CapsuleService) IsUnlockable(ctx context.Context, id string) (api.UnlockableResponse, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return api.UnlockableResponse{}, err
	}
	return api.UnlockableResponse{
		ID:         record.ID,
		Unlockable: s.evaluator.IsUnlockable(record, s.now()),
		UnlockAt:   record.UnlockAt,
	}, nil
}

// Mint issues the capsule's token to its author. Only the author may mint,
// and a capsule is minted at most once.
func (s *CapsuleService) Mint(ctx context.Context, id string, req api.MintRequest) (models.MintReceipt, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return models.MintReceipt{}, err
	}

	if err := capsule.Authorize(record, req.Caller); err != nil {
		if capsule.IsValidation(err) {
			s.metrics.IncrementMint("invalid_caller")
		} else {
			s.metrics.IncrementMint("authority_mismatch")
		}
		return models.MintReceipt{}, mapCapsuleError(err)
	}
	if record.Minted() {
		s.metrics.IncrementMint("already_minted")
		return models.MintReceipt{}, mapCapsuleError(capsule.ErrAlreadyMinted)
	}
	if err := capsule.ValidateMintMetadata(req.Name, req.Symbol, req.URI); err != nil {
		return models.MintReceipt{}, mapCapsuleError(err)
	}
	if s.ledger == nil {
		return models.MintReceipt{}, mapCapsuleError(&capsule.LedgerError{Op: "mint", Err: fmt.Errorf("no ledger configured")})
	}

	start := time.Now()
	receipt, err := s.ledger.Mint(ctx, ledger.MintRequest{
		CapsuleID:       record.ID,
		Owner:           record.Author,
		Name:            req.Name,
		Symbol:          req.Symbol,
		URI:             req.URI,
		Mint:            strings.TrimSpace(req.Mint),
		TokenAccount:    strings.TrimSpace(req.TokenAccount),
		MetadataAccount: strings.TrimSpace(req.MetadataAccount),
	})
	s.metrics.ObserveLedgerLatency(time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrAlreadyMinted):
			s.metrics.IncrementMint("already_minted")
			s.reconcileMint(ctx, record.ID)
			return models.MintReceipt{}, mapCapsuleError(capsule.ErrAlreadyMinted)
		case errors.Is(err, ledger.ErrInvalidRequest):
			return models.MintReceipt{}, badRequest(err)
		default:
			s.metrics.IncrementMint("ledger_error")
			return models.MintReceipt{}, mapCapsuleError(&capsule.LedgerError{Op: "mint", Err: err})
		}
	}

	if receipt.MintedAt.IsZero() {
		receipt.MintedAt = s.now().UTC()
	}
	if err := s.store.MarkCapsuleMinted(ctx, record.ID, receipt.Mint, receipt.MintedAt); err != nil {
		if errors.Is(err, store.ErrMintExists) {
			s.metrics.IncrementMint("already_minted")
			return models.MintReceipt{}, mapCapsuleError(capsule.ErrAlreadyMinted)
		}
		return models.MintReceipt{}, storeFailure(err)
	}

	s.metrics.IncrementMint("minted")
	s.logger.Info("capsule minted", "id", record.ID, "mint", receipt.Mint, "owner", receipt.Owner)
	return receipt, nil
}

// reconcileMint marks a capsule minted from the ledger's own receipt. It
// repairs a capsule whose earlier mint reached the ledger but not the record.
func (s *CapsuleService) reconcileMint(ctx context.Context, id string) {
	if current, err := s.store.GetCapsule(ctx, id); err != nil || current == nil || current.Minted() {
		return
	}
	receipt, err := s.ledger.Lookup(ctx, id)
	if err != nil {
		s.logger.Warn("mint lookup failed", "id", id, "error", err)
		return
	}
	if receipt == nil {
		return
	}
	mintedAt := receipt.MintedAt
	if mintedAt.IsZero() {
		mintedAt = s.now().UTC()
	}
	if err := s.store.MarkCapsuleMinted(ctx, id, receipt.Mint, mintedAt); err != nil {
		if !errors.Is(err, store.ErrMintExists) {
			s.logger.Warn("mint reconcile failed", "id", id, "mint", receipt.Mint, "error", err)
		}
		return
	}
	s.logger.Info("capsule mint reconciled", "id", id, "mint", receipt.Mint)
}

// MintState reports whether the capsule has been minted.
func (s *CapsuleService) MintState(ctx context.Context, id string) (api.MintStateResponse, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return api.MintStateResponse{}, err
	}
	return api.MintStateResponse{
		CapsuleID:   record.ID,
		Minted:      record.Minted(),
		MintAddress: record.MintAddress,
		MintedAt:    record.MintedAt,
	}, nil
}

func (s *CapsuleService) load(ctx context.Context, id string) (*models.Capsule, error) {
	record, err := s.store.GetCapsule(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if record == nil {
		return nil, mapCapsuleError(capsule.ErrNotFound)
	}
	return record, nil
}

func (s *CapsuleService) summary(c *models.Capsule, now time.Time) api.CapsuleSummary {
	return api.CapsuleSummary{
		ID:          c.ID,
		Author:      c.Author,
		Recipient:   c.Recipient,
		Type:        c.Type,
		UnlockAt:    c.UnlockAt,
		HasLocation: c.HasLocation(),
		CreatedAt:   c.CreatedAt,
		Unlockable:  s.evaluator.IsUnlockable(c, now),
		Minted:      c.Minted(),
	}
}
