package utils

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultCountryCode is used for local numbers when no other code is configured.
const DefaultCountryCode = "94"

// ErrInvalidPhone is returned when a number cannot be normalized to E.164.
var ErrInvalidPhone = errors.New("invalid phone number")

var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// NormalizePhone converts user input into E.164 form.
//
// Separators (spaces, dashes, dots, parentheses) are stripped. A leading "00"
// is treated as an international prefix, a single leading "0" as a local
// trunk prefix replaced by countryCode, and a bare national number starting
// with countryCode gets a "+" prepended.
func NormalizePhone(raw, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	countryCode = strings.TrimPrefix(countryCode, "+")

	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", ErrInvalidPhone
		}
	}
	s := b.String()

	switch {
	case strings.HasPrefix(s, "+"):
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, "0"):
		s = "+" + countryCode + s[1:]
	case strings.HasPrefix(s, countryCode):
		s = "+" + s
	default:
		return "", ErrInvalidPhone
	}

	if !e164Pattern.MatchString(s) {
		return "", ErrInvalidPhone
	}
	return s, nil
}

// IsE164 reports whether phone is already in E.164 form.
func IsE164(phone string) bool {
	return e164Pattern.MatchString(phone)
}

// MaskPhone hides all but the last three digits, for logs.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	keep := 3
	prefix := ""
	if strings.HasPrefix(phone, "+") {
		prefix = "+"
		phone = phone[1:]
	}
	return prefix + strings.Repeat("*", len(phone)-keep) + phone[len(phone)-keep:]
}
