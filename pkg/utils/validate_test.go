package utils

import (
	"testing"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"03001234567", "+923001234567", "3001234567"}
	for _, p := range valid {
		if !ValidatePhone(p) {
			t.Errorf("ValidatePhone(%q) = false, want true", p)
		}
	}

	invalid := []string{"", "12345", "0300-1234567", "+44300123456789", "abcdefghij"}
	for _, p := range invalid {
		if ValidatePhone(p) {
			t.Errorf("ValidatePhone(%q) = true, want false", p)
		}
	}
}

func TestGenerateBookingCode(t *testing.T) {
	code := GenerateBookingCode()
	if len(code) != 8 {
		t.Fatalf("booking code %q has length %d, want 8", code, len(code))
	}
	if code == GenerateBookingCode() && code == GenerateBookingCode() {
		t.Error("three consecutive booking codes identical")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	tok, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatal(err)
	}
	if len(tok) != 64 {
		t.Fatalf("token length %d, want 64", len(tok))
	}
}
