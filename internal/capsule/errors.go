package capsule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTitleTooLong     = errors.New("Title too long")
	ErrMessageTooLong   = errors.New("Message too long")
	ErrUnlockAtRequired = errors.New("Unlock time is required for time-locked capsules")
	ErrInvalidIdentity  = errors.New("Invalid identity")
	ErrMintFieldTooLong = errors.New("Mint metadata field too long")

	ErrCapsuleLocked    = errors.New("Capsule is locked")
	ErrLocationMismatch = errors.New("Location does not match")

	ErrNotFound          = errors.New("Capsule not found")
	ErrCapsuleExists     = errors.New("Capsule already exists")
	ErrAuthorityMismatch = errors.New("Mint authority mismatch")
	ErrAlreadyMinted     = errors.New("Capsule already minted")
)

// ValidationError reports a rejected capsule field.
type ValidationError struct {
	Field  string
	Length int
	Max    int
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("%s: %s is %d bytes, max %d", e.Err, e.Field, e.Length, e.Max)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Field)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AccessError reports a view denied by the unlock evaluator.
type AccessError struct {
	UnlockAt time.Time
	Err      error
}

func (e *AccessError) Error() string {
	if errors.Is(e.Err, ErrCapsuleLocked) && !e.UnlockAt.IsZero() {
		return fmt.Sprintf("%s until %s", e.Err, e.UnlockAt.UTC().Format(time.RFC3339))
	}
	return e.Err.Error()
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// LedgerError wraps a failure reported by the external ledger.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a capsule field rejection.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAccess reports whether err is an unlock denial.
func IsAccess(err error) bool {
	var target *AccessError
	return errors.As(err, &target)
}
