package whatsapp

import "strings"

// countryCode is prefixed to bare 10-digit Mexican numbers. WhatsApp expects
// the extra "1" after the 52 for Mexican mobile chats.
const countryCode = "521"

// NormalizeNumber strips formatting characters and ensures a country code:
//   - 10 digits: a domestic Mexican number, gets the 521 prefix
//   - 11 digits starting with 1: a US number already carrying its code
//   - 13 digits starting with 521: already normalized
//   - anything else passes through untouched
func NormalizeNumber(raw string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '+':
			return -1
		}
		return r
	}, raw)

	switch {
	case len(clean) == 11 && strings.HasPrefix(clean, "1"):
		return clean
	case len(clean) == 13 && strings.HasPrefix(clean, countryCode):
		return clean
	case len(clean) == 10:
		return countryCode + clean
	default:
		return clean
	}
}
