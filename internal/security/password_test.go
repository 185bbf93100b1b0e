package security_test

import (
	"testing"

	"github.com/talentforge/authhub/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("pw123456", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "pw123456" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if err := security.CheckPassword(hash, "pw123456"); err != nil {
		t.Fatalf("check failed for the right password: %v", err)
	}

	if err := security.CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("check passed for the wrong password")
	}
}

func TestHashPassword_ZeroCostFallsBack(t *testing.T) {
	hash, err := security.HashPassword("pw123456", 0)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if err := security.CheckPassword(hash, "pw123456"); err != nil {
		t.Fatalf("check failed: %v", err)
	}
}
