package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"strings"
)

// Signature field names. The hash-type field is informational and is stripped
// before verification along with the hash itself.
const (
	FieldSecureHash     = "vnp_SecureHash"
	FieldSecureHashType = "vnp_SecureHashType"
)

// Canonicalize builds the canonical query string the gateway signs: keys with
// empty values dropped, remaining keys sorted lexicographically, keys and
// values percent-encoded with spaces as '+'. Both sides recompute this exact
// form, so the '+' deviation from strict percent-encoding must be preserved.
func Canonicalize(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	// url.Values.Encode sorts keys and uses QueryEscape, which encodes
	// spaces as '+'.
	return values.Encode()
}

// Sign computes the HMAC-SHA512 of the canonical query string using the
// merchant secret, as lowercase hex.
func Sign(params map[string]string, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(Canonicalize(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify strips the signature fields from a copy of the received parameters,
// recomputes the signature, and compares case-insensitively. It returns the
// recomputed value for diagnostics.
func Verify(received map[string]string, secret string) (bool, string) {
	got := received[FieldSecureHash]

	clean := make(map[string]string, len(received))
	for k, v := range received {
		if k == FieldSecureHash || k == FieldSecureHashType {
			continue
		}
		clean[k] = v
	}

	want := Sign(clean, secret)
	return got != "" && strings.EqualFold(got, want), want
}
