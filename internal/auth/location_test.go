package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyLocation(t *testing.T) {
	hash, err := HashLocation("  under the old oak  ")
	if err != nil {
		t.Fatalf("hash location: %v", err)
	}
	if !VerifyLocation(hash, "under the old oak") {
		t.Fatal("expected location to verify")
	}
	if VerifyLocation(hash, "by the river") {
		t.Fatal("expected wrong location to fail")
	}
	if VerifyLocation("", "under the old oak") {
		t.Fatal("expected empty hash to fail")
	}
}

func TestHashLocationRejectsInvalid(t *testing.T) {
	if _, err := HashLocation("   "); err == nil {
		t.Fatal("expected empty location error")
	}
	if _, err := HashLocation(strings.Repeat("x", maxLocationLength+1)); err == nil {
		t.Fatal("expected long location error")
	}
}
