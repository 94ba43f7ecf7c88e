package utils

import (
	"strings"
	"testing"
)

func TestNewAPIKey(t *testing.T) {
	raw, hash, err := NewAPIKey()
	if err != nil {
		t.Fatalf("NewAPIKey: %v", err)
	}
	if !strings.HasPrefix(raw, "esk_") {
		t.Fatalf("raw key %q missing prefix", raw)
	}
	if hash != HashAPIKey(raw) {
		t.Fatal("stored hash must match the raw key's digest")
	}
	if hash == HashAPIKey(raw+"x") {
		t.Fatal("different keys must hash differently")
	}

	raw2, _, err := NewAPIKey()
	if err != nil {
		t.Fatalf("NewAPIKey: %v", err)
	}
	if raw == raw2 {
		t.Fatal("keys must be unique")
	}
}

func TestHashAPIKeyTrimsWhitespace(t *testing.T) {
	if HashAPIKey("esk_abc") != HashAPIKey("  esk_abc \n") {
		t.Fatal("surrounding whitespace should not change the lookup hash")
	}
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := CheckPassword(hashed, "hunter2!"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := CheckPassword(hashed, "wrong"); err == nil {
		t.Fatal("wrong password must not verify")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Dev@Example.COM "); got != "dev@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
