package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in ErrorResponse.Code for capsule failures.
const (
	CodeInvalidArgument   = "invalid_argument"
	CodeUnauthorized      = "unauthorized"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeCapsuleLocked     = "capsule_locked"
	CodeLocationMismatch  = "location_mismatch"
	CodeAuthorityMismatch = "authority_mismatch"
	CodeLedgerUnavailable = "ledger_unavailable"
	CodeInternal          = "internal"
)

// Numeric error codes the client branches on.
const (
	ErrorCodeInvalidIdentity = 1004
	ErrorCodeCapsuleExists   = 2101
	ErrorCodeAlreadyMinted   = 2102
)

// APIError is a structured error returned by the HTTP API.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Status > 0 {
		return fmt.Sprintf("api error: %d", e.Status)
	}
	return "api error"
}

// AsAPIError unwraps the first APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}

// FromServer reports whether the error came with a capsule server envelope.
// A bare status means something else answered at the API URL.
func (e *APIError) FromServer() bool {
	return e != nil && e.Code != ""
}

func (e *APIError) IsUnauthorized() bool {
	return e != nil && (e.Code == CodeUnauthorized || e.Status == http.StatusUnauthorized)
}

// IsLocked reports a read or mint refused because the unlock time has not passed.
func (e *APIError) IsLocked() bool {
	return e != nil && e.Code == CodeCapsuleLocked
}

func (e *APIError) IsLocationMismatch() bool {
	return e != nil && e.Code == CodeLocationMismatch
}

// IsAuthorityMismatch reports a mint attempted by someone other than the author.
func (e *APIError) IsAuthorityMismatch() bool {
	return e != nil && e.Code == CodeAuthorityMismatch
}

func (e *APIError) IsInvalidIdentity() bool {
	return e != nil && e.Status == http.StatusBadRequest && e.ErrorCode == ErrorCodeInvalidIdentity
}

// IsAlreadyMinted reports the conflict returned for a second mint.
func (e *APIError) IsAlreadyMinted() bool {
	return e != nil && e.Status == http.StatusConflict && e.ErrorCode == ErrorCodeAlreadyMinted
}

func (e *APIError) IsCapsuleExists() bool {
	return e != nil && e.Status == http.StatusConflict && e.ErrorCode == ErrorCodeCapsuleExists
}

func (e *APIError) IsNotFound() bool {
	return e != nil && e.FromServer() && e.Status == http.StatusNotFound
}

func (e *APIError) IsLedgerUnavailable() bool {
	return e != nil && e.Code == CodeLedgerUnavailable
}

// IsInternal reports a server-side failure other than the ledger.
func (e *APIError) IsInternal() bool {
	return e != nil && e.Status == http.StatusInternalServerError
}
