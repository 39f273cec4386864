package capsule

import (
	"fmt"

	"memoreal/internal/auth"
	"memoreal/internal/models"
)

// IsAuthor reports whether caller is the recorded author of c. A malformed
// caller is never the author.
func IsAuthor(c *models.Capsule, caller string) bool {
	if c == nil {
		return false
	}
	identity, err := auth.NormalizeIdentity(caller)
	return err == nil && identity == c.Author
}

// Authorize guards privileged operations on c. A caller that is not a valid
// identity fails validation before the authority check.
func Authorize(c *models.Capsule, caller string) error {
	identity, err := auth.NormalizeIdentity(caller)
	if err != nil {
		return &ValidationError{Field: "caller", Err: fmt.Errorf("%w: %v", ErrInvalidIdentity, err)}
	}
	if !IsAuthor(c, identity) {
		return ErrAuthorityMismatch
	}
	return nil
}
