package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	identityKeyBytes  = 32
	minIdentityLength = 32
	maxIdentityLength = 44
)

// NormalizeIdentity validates a base58-encoded 32-byte public key.
func NormalizeIdentity(raw string) (string, error) {
	identity := strings.TrimSpace(raw)
	if identity == "" {
		return "", fmt.Errorf("identity is required")
	}
	if len(identity) < minIdentityLength || len(identity) > maxIdentityLength {
		return "", fmt.Errorf("invalid identity length")
	}
	decoded, err := base58.Decode(identity)
	if err != nil {
		return "", fmt.Errorf("invalid identity encoding: %w", err)
	}
	if len(decoded) != identityKeyBytes {
		return "", fmt.Errorf("identity must encode %d bytes", identityKeyBytes)
	}
	return identity, nil
}

// GenerateIdentity returns a fresh random identity in base58 form.
func GenerateIdentity() (string, error) {
	buf := make([]byte, identityKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	// A leading zero byte encodes as '1' and keeps the decoded length at 32.
	return base58.Encode(buf), nil
}

// DeriveAddress derives a deterministic base58 address from seeds.
func DeriveAddress(seeds ...string) string {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}
	return base58.Encode(h.Sum(nil))
}
