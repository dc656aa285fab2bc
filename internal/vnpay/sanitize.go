package vnpay

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxOrderInfoLen = 255

// stripDiacritics decomposes the string and removes combining marks, so
// Vietnamese text becomes its ASCII base form.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeOrderInfo converts an order description into the ASCII-safe form the
// gateway accepts: diacritics stripped, the Vietnamese đ mapped to d, any
// remaining character outside the safe set replaced with a space, and the
// result capped at 255 characters.
func SanitizeOrderInfo(s string) string {
	s = strings.NewReplacer("đ", "d", "Đ", "D").Replace(s)
	if out, _, err := transform.String(stripDiacritics, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.', r == ',', r == ':':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	if len(out) > maxOrderInfoLen {
		out = out[:maxOrderInfoLen]
	}
	return out
}
