// Package phone validates UAE mobile numbers and one-time code shapes.
package phone

import (
	"errors"
	"strings"
)

const (
	CountryCode   = "+971"
	LocalDigits   = 9
	CodeLength    = 6
	countryDigits = "971"
)

// ValidPrefixes are the two-digit mobile operator prefixes accepted after the country code
var ValidPrefixes = []string{"50", "51", "52", "54", "55", "56", "58"}

var (
	ErrInvalidNumber = errors.New("invalid UAE mobile number")
	ErrInvalidCode   = errors.New("code must be exactly 6 digits")
)

// Number is a validated UAE mobile number
type Number struct {
	Local string // 9 digits, e.g. 501234567
	E164  string // +971501234567
}

// Normalize strips at most one +971, 971 or leading 0 prefix and validates the remaining
// national number. Spaces, dashes and parentheses are ignored.
func Normalize(raw string) (Number, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	for _, prefix := range []string{CountryCode, countryDigits, "0"} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}

	if len(s) != LocalDigits || !digitsOnly(s) || !hasValidPrefix(s) {
		return Number{}, ErrInvalidNumber
	}
	return Number{Local: s, E164: CountryCode + s}, nil
}

// IsValid reports whether raw is an acceptable UAE mobile number
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// FormatE164 returns the E.164 form of raw, or an error when it is not a valid UAE mobile
func FormatE164(raw string) (string, error) {
	n, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	return n.E164, nil
}

// ValidateCode checks that code is exactly six ASCII digits
func ValidateCode(code string) error {
	if len(code) != CodeLength || !digitsOnly(code) {
		return ErrInvalidCode
	}
	return nil
}

func hasValidPrefix(local string) bool {
	for _, p := range ValidPrefixes {
		if strings.HasPrefix(local, p) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
