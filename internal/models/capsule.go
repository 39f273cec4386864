package models

import (
	"fmt"
	"strings"
	"time"
)

// CapsuleType defines how a capsule's content is gated.
type CapsuleType string

const (
	CapsuleGeneral    CapsuleType = "general"
	CapsuleTimeLocked CapsuleType = "time_locked"
)

const (
	MaxTitleLength   = 64
	MaxMessageLength = 256

	MaxMintNameLength   = 32
	MaxMintSymbolLength = 10
	MaxMintURILength    = 200
)

var capsuleTypeAliases = map[string]CapsuleType{
	"general":     CapsuleGeneral,
	"time_locked": CapsuleTimeLocked,
	"timelocked":  CapsuleTimeLocked,
	"time-locked": CapsuleTimeLocked,
}

// Capsule is the persisted capsule record.
type Capsule struct {
	ID           string      `json:"id"`
	Author       string      `json:"author"`
	Title        string      `json:"title"`
	Recipient    string      `json:"recipient"`
	Message      string      `json:"message"`
	MediaURL     string      `json:"media_url"`
	Type         CapsuleType `json:"type"`
	UnlockAt     *time.Time  `json:"unlock_at,omitempty"`
	LocationHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	MintAddress  string      `json:"mint_address,omitempty"`
	MintedAt     *time.Time  `json:"minted_at,omitempty"`
}

// HasLocation reports whether a location secret accompanies the capsule.
func (c *Capsule) HasLocation() bool {
	return c != nil && c.LocationHash != ""
}

// Minted reports whether a token has been issued for the capsule.
func (c *Capsule) Minted() bool {
	return c != nil && c.MintedAt != nil
}

// Content returns the revealable part of the capsule.
func (c *Capsule) Content() CapsuleContent {
	return CapsuleContent{
		ID:        c.ID,
		Author:    c.Author,
		Title:     c.Title,
		Recipient: c.Recipient,
		Message:   c.Message,
		MediaURL:  c.MediaURL,
		Type:      c.Type,
		UnlockAt:  c.UnlockAt,
	}
}

// CapsuleContent is what a successful view reveals.
type CapsuleContent struct {
	ID        string      `json:"id"`
	Author    string      `json:"author"`
	Title     string      `json:"title"`
	Recipient string      `json:"recipient"`
	Message   string      `json:"message"`
	MediaURL  string      `json:"media_url"`
	Type      CapsuleType `json:"type"`
	UnlockAt  *time.Time  `json:"unlock_at,omitempty"`
}

// MintReceipt describes one issued capsule token.
type MintReceipt struct {
	CapsuleID       string    `json:"capsule_id"`
	Owner           string    `json:"owner"`
	Mint            string    `json:"mint"`
	TokenAccount    string    `json:"token_account"`
	MetadataAccount string    `json:"metadata_account,omitempty"`
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	URI             string    `json:"uri"`
	Amount          uint64    `json:"amount"`
	Decimals        uint8     `json:"decimals"`
	Signature       string    `json:"signature"`
	MintedAt        time.Time `json:"minted_at"`
}

// TokenAccount is the associated balance of one owner for one mint.
type TokenAccount struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Mint    string `json:"mint"`
	Amount  uint64 `json:"amount"`
}

func IsValidCapsuleType(value CapsuleType) bool {
	return value == CapsuleGeneral || value == CapsuleTimeLocked
}

// ParseCapsuleType validates and normalizes capsule types.
func ParseCapsuleType(raw string) (CapsuleType, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", fmt.Errorf("capsule type is required")
	}
	parsed, ok := capsuleTypeAliases[value]
	if !ok {
		return "", fmt.Errorf("invalid capsule type: %s", value)
	}
	return parsed, nil
}
