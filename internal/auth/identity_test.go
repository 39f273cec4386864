package auth

import (
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

func TestNormalizeIdentity(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "system program", raw: "11111111111111111111111111111111", want: "11111111111111111111111111111111"},
		{name: "trim", raw: "  3fvLRfGFfAYRb28v8C7r2WgpFCUBkcUHZdsvq5fEuEQ3 ", want: "3fvLRfGFfAYRb28v8C7r2WgpFCUBkcUHZdsvq5fEuEQ3"},
		{name: "empty", raw: "", wantErr: true},
		{name: "too short", raw: "abc", wantErr: true},
		{name: "invalid alphabet", raw: "0OIl" + strings.Repeat("1", 30), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeIdentity(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeIdentity(%q)=%q want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestGenerateIdentityRoundTrip(t *testing.T) {
	for i := 0; i < 50; i++ {
		id, err := GenerateIdentity()
		if err != nil {
			t.Fatalf("generate identity: %v", err)
		}
		if _, err := NormalizeIdentity(id); err != nil {
			t.Fatalf("generated identity %q does not validate: %v", id, err)
		}
	}
}

func TestNormalizeIdentityKeySize(t *testing.T) {
	key := make([]byte, 32)
	key[31] = 1
	encoded := base58.Encode(key)
	if !strings.HasPrefix(encoded, strings.Repeat("1", 31)) {
		t.Fatalf("expected leading ones, got %q", encoded)
	}
	if _, err := NormalizeIdentity(encoded); err != nil {
		t.Fatalf("expected zero-padded key to validate: %v", err)
	}

	// Both encode to a valid length but decode to the wrong key size.
	for _, tc := range []struct {
		size  int
		zeros int
	}{{size: 31}, {size: 33, zeros: 8}} {
		buf := make([]byte, tc.size)
		for i := tc.zeros; i < len(buf); i++ {
			buf[i] = 0xff
		}
		_, err := NormalizeIdentity(base58.Encode(buf))
		if err == nil || !strings.Contains(err.Error(), "32 bytes") {
			t.Fatalf("expected %d-byte key to be rejected, got %v", tc.size, err)
		}
	}
}

func TestDeriveAddress(t *testing.T) {
	owner := "9sEBnNzja3frQmiU6DBqfn69xMaJSSDdPaPq5GvBhSjQ"
	mint := "3fvLRfGFfAYRb28v8C7r2WgpFCUBkcUHZdsvq5fEuEQ3"

	first := DeriveAddress(owner, mint)
	if first != DeriveAddress(owner, mint) {
		t.Fatal("expected derivation to be deterministic")
	}
	if first == DeriveAddress(mint, owner) {
		t.Fatal("expected seed order to matter")
	}
	if _, err := NormalizeIdentity(first); err != nil {
		t.Fatalf("derived address should be a valid identity: %v", err)
	}
}
