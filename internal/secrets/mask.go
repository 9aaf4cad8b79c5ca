// Package secrets keeps credentials out of log lines: masking for values
// that must be mentioned, validation for values that must exist.
package secrets

import "strings"

// Mask renders a secret safe for logging. Long keys keep their first four
// characters so an operator can tell which key is loaded (Groq keys all
// start with "gsk_"); anything shorter is fully hidden.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..."
}

// MaskURL hides the credential components of a URL, e.g. the public key
// embedded in a Sentry DSN (https://key@o123.ingest.sentry.io/456).
func MaskURL(rawURL string) string {
	schemeEnd := strings.Index(rawURL, "://")
	if schemeEnd == -1 {
		return rawURL
	}
	rest := rawURL[schemeEnd+3:]
	at := strings.LastIndex(rest, "@")
	if at == -1 {
		return rawURL
	}
	userinfo := rest[:at]
	if colon := strings.Index(userinfo, ":"); colon != -1 {
		// user:password form, keep the username.
		return rawURL[:schemeEnd+3] + userinfo[:colon] + ":***" + rest[at:]
	}
	// Bare token form, hide it entirely.
	return rawURL[:schemeEnd+3] + "***" + rest[at:]
}
