package helpers

import (
	"regexp"
	"strings"
)

const KuwaitCountryCode = "965"

// Eight-digit subscriber numbers start with 5, 6 or 9 and may carry the country code.
var kuwaitPhonePattern = regexp.MustCompile(`^(965)?[569]\d{7}$`)

// DigitsOnly strips everything that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidWhatsAppNumber(number string) bool {
	return kuwaitPhonePattern.MatchString(DigitsOnly(number))
}

// InternationalNumber returns the number as country code + subscriber digits, e.g. 96551234567.
// Callers are expected to validate first.
func InternationalNumber(number string) string {
	cleaned := DigitsOnly(number)
	if len(cleaned) == 8 {
		return KuwaitCountryCode + cleaned
	}
	return cleaned
}

// FormatWhatsAppNumber renders a number for display: +965 5123 4567.
func FormatWhatsAppNumber(number string) string {
	intl := InternationalNumber(number)
	if len(intl) != 11 || !strings.HasPrefix(intl, KuwaitCountryCode) {
		return "+" + intl
	}
	return "+" + intl[:3] + " " + intl[3:7] + " " + intl[7:]
}
