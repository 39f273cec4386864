package capsule

import (
	"fmt"
	"strings"
	"time"

	"memoreal/internal/auth"
	"memoreal/internal/models"
)

// NewParams carries the caller-supplied fields of a new capsule.
type NewParams struct {
	ID        string
	Author    string
	Title     string
	Recipient string
	Message   string
	MediaURL  string
	Type      models.CapsuleType
	UnlockAt  *time.Time
	Location  string
}

// New validates params and builds a capsule record. Nothing is returned on failure.
func New(params NewParams, now time.Time) (*models.Capsule, error) {
	if err := ValidateFields(params.Title, params.Message); err != nil {
		return nil, err
	}

	id, err := auth.NormalizeIdentity(params.ID)
	if err != nil {
		return nil, &ValidationError{Field: "id", Err: fmt.Errorf("%w: %v", ErrInvalidIdentity, err)}
	}
	author, err := auth.NormalizeIdentity(params.Author)
	if err != nil {
		return nil, &ValidationError{Field: "author", Err: fmt.Errorf("%w: %v", ErrInvalidIdentity, err)}
	}

	if !models.IsValidCapsuleType(params.Type) {
		return nil, &ValidationError{Field: "type", Err: fmt.Errorf("invalid capsule type: %s", params.Type)}
	}
	if params.Type == models.CapsuleTimeLocked && (params.UnlockAt == nil || params.UnlockAt.IsZero()) {
		return nil, &ValidationError{Field: "unlock_at", Err: ErrUnlockAtRequired}
	}

	location, err := auth.NormalizeLocation(params.Location)
	if err != nil {
		return nil, &ValidationError{Field: "location", Err: err}
	}
	locationHash := ""
	if location != "" {
		locationHash, err = auth.HashLocation(location)
		if err != nil {
			return nil, err
		}
	}

	var unlockAt *time.Time
	if params.UnlockAt != nil && !params.UnlockAt.IsZero() {
		value := params.UnlockAt.UTC()
		unlockAt = &value
	}

	return &models.Capsule{
		ID:           id,
		Author:       author,
		Title:        params.Title,
		Recipient:    params.Recipient,
		Message:      params.Message,
		MediaURL:     strings.TrimSpace(params.MediaURL),
		Type:         params.Type,
		UnlockAt:     unlockAt,
		LocationHash: locationHash,
		CreatedAt:    now.UTC(),
	}, nil
}

// Gate is the unlock rule a capsule is subject to.
type Gate interface {
	gate()
}

// GeneralGate never restricts viewing.
type GeneralGate struct{}

// TimeLockGate restricts viewing until UnlockAt, optionally guarded by a location secret.
type TimeLockGate struct {
	UnlockAt     time.Time
	LocationHash string
}

func (GeneralGate) gate()  {}
func (TimeLockGate) gate() {}

// GateOf derives the gate variant from a stored record. General capsules keep
// unlock_at and location as information only. Unknown types yield nil.
func GateOf(c *models.Capsule) Gate {
	switch c.Type {
	case models.CapsuleGeneral:
		return GeneralGate{}
	case models.CapsuleTimeLocked:
		g := TimeLockGate{LocationHash: c.LocationHash}
		if c.UnlockAt != nil {
			g.UnlockAt = *c.UnlockAt
		}
		return g
	default:
		return nil
	}
}
