package capsule

import (
	"fmt"
	"strings"
	"time"

	"memoreal/internal/auth"
	"memoreal/internal/models"
)

// LocationPolicy controls whether a supplied location is checked once the time gate has opened.
type LocationPolicy string

const (
	// LocationIgnore reveals content as soon as the time gate opens.
	LocationIgnore LocationPolicy = "ignore"
	// LocationEnforce additionally requires the stored location, when one exists.
	LocationEnforce LocationPolicy = "enforce"
)

// ParseLocationPolicy validates and normalizes a location policy.
func ParseLocationPolicy(raw string) (LocationPolicy, error) {
	value := LocationPolicy(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return LocationIgnore, nil
	case LocationIgnore, LocationEnforce:
		return value, nil
	default:
		return "", fmt.Errorf("invalid location policy: %s", value)
	}
}

// Evaluator decides whether capsule content may be revealed.
type Evaluator struct {
	LocationPolicy LocationPolicy
	verify         func(hash, candidate string) bool
}

// NewEvaluator constructs an Evaluator using bcrypt location verification.
func NewEvaluator(policy LocationPolicy) *Evaluator {
	if policy == "" {
		policy = LocationIgnore
	}
	return &Evaluator{LocationPolicy: policy, verify: auth.VerifyLocation}
}

// IsUnlockable reports whether the time gate of c is open at now. Location is not considered.
func (e *Evaluator) IsUnlockable(c *models.Capsule, now time.Time) bool {
	switch g := GateOf(c).(type) {
	case GeneralGate:
		return true
	case TimeLockGate:
		return timeGateOpen(g, now)
	default:
		return false
	}
}

// View returns the capsule content or an *AccessError. The time gate is evaluated
// before any location check.
func (e *Evaluator) View(c *models.Capsule, now time.Time, suppliedLocation *string) (models.CapsuleContent, error) {
	switch g := GateOf(c).(type) {
	case GeneralGate:
		return c.Content(), nil
	case TimeLockGate:
		if !timeGateOpen(g, now) {
			return models.CapsuleContent{}, &AccessError{UnlockAt: g.UnlockAt, Err: ErrCapsuleLocked}
		}
		if e.enforceLocation() && g.LocationHash != "" {
			if suppliedLocation == nil || !e.verifyLocation(g.LocationHash, *suppliedLocation) {
				return models.CapsuleContent{}, &AccessError{Err: ErrLocationMismatch}
			}
		}
		return c.Content(), nil
	default:
		return models.CapsuleContent{}, &AccessError{Err: ErrCapsuleLocked}
	}
}

func (e *Evaluator) enforceLocation() bool {
	return e != nil && e.LocationPolicy == LocationEnforce
}

func (e *Evaluator) verifyLocation(hash, candidate string) bool {
	if e.verify == nil {
		return auth.VerifyLocation(hash, candidate)
	}
	return e.verify(hash, candidate)
}

// A time-locked gate with no unlock time stays closed.
func timeGateOpen(g TimeLockGate, now time.Time) bool {
	if g.UnlockAt.IsZero() {
		return false
	}
	return !now.Before(g.UnlockAt)
}
