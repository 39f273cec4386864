package capsule

import "memoreal/internal/models"

// ValidateFields enforces the size constraints on capsule content.
// Lengths are UTF-8 byte counts.
func ValidateFields(title, message string) error {
	if len(title) > models.MaxTitleLength {
		return &ValidationError{Field: "title", Length: len(title), Max: models.MaxTitleLength, Err: ErrTitleTooLong}
	}
	if len(message) > models.MaxMessageLength {
		return &ValidationError{Field: "message", Length: len(message), Max: models.MaxMessageLength, Err: ErrMessageTooLong}
	}
	return nil
}

// ValidateMintMetadata enforces token metadata limits.
func ValidateMintMetadata(name, symbol, uri string) error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"name", name, models.MaxMintNameLength},
		{"symbol", symbol, models.MaxMintSymbolLength},
		{"uri", uri, models.MaxMintURILength},
	}
	for _, f := range fields {
		if len(f.value) > f.max {
			return &ValidationError{Field: f.name, Length: len(f.value), Max: f.max, Err: ErrMintFieldTooLong}
		}
	}
	return nil
}
