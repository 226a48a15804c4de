package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashingLifecycle(t *testing.T) {
	password := "S3curePass!"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected hash to be populated")
	}

	if !VerifyPassword(hash, password) {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-digest", "whatever") {
		t.Fatal("expected malformed digest to fail verification")
	}
	if VerifyPassword("", "whatever") {
		t.Fatal("expected empty digest to fail verification")
	}
}

func TestRandomPassword(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	tests := []struct {
		name    string
		length  int
		wantLen int
	}{
		{name: "默认长度", length: 0, wantLen: 8},
		{name: "指定长度", length: 12, wantLen: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password, err := RandomPassword(tt.length)
			if err != nil {
				t.Fatalf("RandomPassword: %v", err)
			}
			if len(password) != tt.wantLen {
				t.Fatalf("expected length %d, got %d", tt.wantLen, len(password))
			}
			for _, ch := range password {
				if !strings.ContainsRune(alphabet, ch) {
					t.Fatalf("unexpected character %q in %q", ch, password)
				}
			}
		})
	}

	first, err := RandomPassword(16)
	if err != nil {
		t.Fatalf("RandomPassword: %v", err)
	}
	second, err := RandomPassword(16)
	if err != nil {
		t.Fatalf("RandomPassword: %v", err)
	}
	if first == second {
		t.Fatal("two generated passwords should not collide")
	}
}
