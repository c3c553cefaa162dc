package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateSecureToken returns a random hex token of 2*n characters,
// used for email verification and password reset links.
func GenerateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateBookingCode returns a short uppercase code shown to riders
// and owners to identify a booking at pickup.
func GenerateBookingCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails if the OS entropy source is broken
		return "00000000"
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
