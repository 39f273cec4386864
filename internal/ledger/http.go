package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"memoreal/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	mintsPath          = "/v1/mints"
	idempotencyHeader  = "Idempotency-Key"
	maxErrorBodyBytes  = 4 << 10
)

// mintNamespace scopes idempotency keys so retries for one capsule share a key.
var mintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("memoreal:ledger:mint"))

// HTTP is a remote ledger reached over JSON/HTTP.
type HTTP struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *slog.Logger
}

// NewHTTP creates a remote ledger client.
func NewHTTP(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTP {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// IdempotencyKey returns the key sent with every mint attempt for capsuleID.
func IdempotencyKey(capsuleID string) string {
	return uuid.NewSHA1(mintNamespace, []byte(capsuleID)).String()
}

// Mint posts req to the remote ledger.
func (h *HTTP) Mint(ctx context.Context, req MintRequest) (models.MintReceipt, error) {
	var receipt models.MintReceipt
	if err := req.validate(); err != nil {
		return receipt, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return receipt, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+mintsPath, bytes.NewReader(payload))
	if err != nil {
		return receipt, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(idempotencyHeader, IdempotencyKey(req.CapsuleID))
	if h.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.token)
	}

	start := time.Now()
	resp, err := h.http.Do(httpReq)
	if err != nil {
		return receipt, err
	}
	defer resp.Body.Close()

	h.logger.Debug("remote mint", "capsule_id", req.CapsuleID, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusConflict {
		return receipt, ErrAlreadyMinted
	}
	if resp.StatusCode >= 400 {
		return receipt, decodeLedgerError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return models.MintReceipt{}, fmt.Errorf("decode mint receipt: %w", err)
	}
	if receipt.CapsuleID == "" {
		receipt.CapsuleID = req.CapsuleID
	}
	if receipt.Mint == "" {
		return models.MintReceipt{}, fmt.Errorf("ledger response missing mint address")
	}
	return receipt, nil
}

// Lookup fetches the receipt the remote ledger holds for capsuleID. A 404
// means nothing was minted.
func (h *HTTP) Lookup(ctx context.Context, capsuleID string) (*models.MintReceipt, error) {
	if strings.TrimSpace(capsuleID) == "" {
		return nil, fmt.Errorf("%w: capsule_id is required", ErrInvalidRequest)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+mintsPath+"/"+url.PathEscape(capsuleID), nil)
	if err != nil {
		return nil, err
	}
	if h.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, decodeLedgerError(resp)
	}

	var receipt models.MintReceipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("decode mint receipt: %w", err)
	}
	if receipt.Mint == "" {
		return nil, fmt.Errorf("ledger response missing mint address")
	}
	if receipt.CapsuleID == "" {
		receipt.CapsuleID = capsuleID
	}
	return &receipt, nil
}

func decodeLedgerError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return fmt.Errorf("ledger returned %s: %s", resp.Status, body.Error)
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return fmt.Errorf("ledger returned %s: %s", resp.Status, text)
	}
	return fmt.Errorf("ledger returned %s", resp.Status)
}
