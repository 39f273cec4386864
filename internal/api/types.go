package api

import (
	"time"

	"memoreal/internal/models"
)

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// InfoResponse is the response from GET /v1/info.
type InfoResponse struct {
	SchemaVersion  int            `json:"schema_version"`
	CapsuleCounts  map[string]int `json:"capsule_counts"`
	TotalCapsules  int            `json:"total_capsules"`
	TotalMints     int            `json:"total_mints"`
	LocationPolicy string         `json:"location_policy"`
	LedgerMode     string         `json:"ledger_mode"`
}

// CapsuleCreateRequest is the payload for POST /v1/capsules.
type CapsuleCreateRequest struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	Title     string     `json:"title"`
	Recipient string     `json:"recipient"`
	Message   string     `json:"message"`
	MediaURL  string     `json:"media_url"`
	Type      string     `json:"type"`
	UnlockAt  *time.Time `json:"unlock_at,omitempty"`
	Location  *string    `json:"location,omitempty"`
}

// CapsuleSummary describes a capsule without revealing its content.
type CapsuleSummary struct {
	ID          string             `json:"id"`
	Author      string             `json:"author"`
	Recipient   string             `json:"recipient"`
	Type        models.CapsuleType `json:"type"`
	UnlockAt    *time.Time         `json:"unlock_at,omitempty"`
	HasLocation bool               `json:"has_location"`
	CreatedAt   time.Time          `json:"created_at"`
	Unlockable  bool               `json:"unlockable"`
	Minted      bool               `json:"minted"`
}

// CapsuleViewRequest is the payload for POST /v1/capsules/{id}/view.
type CapsuleViewRequest struct {
	Location *string `json:"location,omitempty"`
}

// UnlockableResponse is the response from GET /v1/capsules/{id}/unlockable.
type UnlockableResponse struct {
	ID         string     `json:"id"`
	Unlockable bool       `json:"unlockable"`
	UnlockAt   *time.Time `json:"unlock_at,omitempty"`
}

// MintRequest is the payload for POST /v1/capsules/{id}/mint.
type MintRequest struct {
	Caller          string `json:"caller"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	URI             string `json:"uri"`
	Mint            string `json:"mint,omitempty"`
	TokenAccount    string `json:"token_account,omitempty"`
	MetadataAccount string `json:"metadata_account,omitempty"`
}

// MintStateResponse is the response from GET /v1/capsules/{id}/mint.
type MintStateResponse struct {
	CapsuleID   string     `json:"capsule_id"`
	Minted      bool       `json:"minted"`
	MintAddress string     `json:"mint_address,omitempty"`
	MintedAt    *time.Time `json:"minted_at,omitempty"`
}
