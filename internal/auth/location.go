package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes.
const maxLocationLength = 72

// NormalizeLocation trims a location passphrase. Empty means no location.
func NormalizeLocation(raw string) (string, error) {
	location := strings.TrimSpace(raw)
	if len(location) > maxLocationLength {
		return "", fmt.Errorf("location must be at most %d bytes", maxLocationLength)
	}
	return location, nil
}

// HashLocation hashes one location passphrase for persistent storage.
func HashLocation(location string) (string, error) {
	location, err := NormalizeLocation(location)
	if err != nil {
		return "", err
	}
	if location == "" {
		return "", fmt.Errorf("location is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(location), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyLocation verifies a supplied location against a bcrypt hash.
func VerifyLocation(locationHash, candidate string) bool {
	if strings.TrimSpace(locationHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(locationHash), []byte(strings.TrimSpace(candidate))) == nil
}
