package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument  = 1000
	ErrCodeInvalidJSON      = 1001
	ErrCodeRequestTooLarge  = 1002
	ErrCodeInvalidQuery     = 1003
	ErrCodeInvalidID        = 1004
	ErrCodeInvalidType      = 1006
	ErrCodeMissingRequired  = 1009
	ErrCodeTitleTooLong     = 1101
	ErrCodeMessageTooLong   = 1102
	ErrCodeUnlockAtRequired = 1103
	ErrCodeMintFieldTooLong = 1104

	// Domain state (2xxx)
	ErrCodeCapsuleNotFound  = 2001
	ErrCodeCapsuleExists    = 2101
	ErrCodeConflict         = 2102
	ErrCodeCapsuleLocked    = 2201
	ErrCodeLocationMismatch = 2202

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003
	ErrCodeAuthorityMismatch = 3004

	// Internal/system (4xxx)
	ErrCodeInternal          = 4001
	ErrCodeStoreFailure      = 4002
	ErrCodeNotImplemented    = 4005
	ErrCodeLedgerUnavailable = 4006
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeCapsuleNotFound
	case 409:
		return ErrCodeConflict
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	case 501:
		return ErrCodeNotImplemented
	case 502:
		return ErrCodeLedgerUnavailable
	default:
		return 0
	}
}
