package utils

import (
	"regexp"
)

// Pakistani mobile format: optional +92 or leading 0, then 10 digits.
var phoneRegex = regexp.MustCompile(`^(\+92|0)?[0-9]{10}$`)

func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}
