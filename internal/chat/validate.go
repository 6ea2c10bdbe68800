package chat

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// PhoneLength is the exact number of digits in a phone number.
	PhoneLength = 6

	maxNameRunes    = 100
	maxBioRunes     = 500
	maxContentBytes = 1 << 20
)

// ValidPhone reports whether phone is exactly six ASCII digits.
func ValidPhone(phone string) bool {
	if len(phone) != PhoneLength {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return true
}

// CheckPhone returns ErrInvalidInput naming the field when phone is malformed.
func CheckPhone(field, phone string) error {
	if !ValidPhone(phone) {
		return fmt.Errorf("%w: %s must be %d digits", ErrInvalidInput, field, PhoneLength)
	}
	return nil
}

// SanitizeName trims, strips control characters, NFC-normalizes, and caps at 100 runes.
func SanitizeName(name string) string {
	return sanitize(name, maxNameRunes)
}

func sanitize(s string, limit int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(norm.NFC.String(s))

	if r := []rune(s); len(r) > limit {
		s = strings.TrimSpace(string(r[:limit]))
	}
	return s
}
