package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// etagWriter buffers the response so the hash can be computed before
// anything reaches the client.
type etagWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *etagWriter) WriteHeader(status int) {
	w.status = status
}

func (w *etagWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

// ETag hashes successful GET responses and answers If-None-Match with 304.
// Dashboard payloads are per-user, so responses are marked private and
// clients must revalidate on every poll; the 304 is what makes that cheap.
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ew := &etagWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ew, r)

		if ew.status != http.StatusOK {
			w.WriteHeader(ew.status)
			w.Write(ew.body.Bytes())
			return
		}

		sum := sha256.Sum256(ew.body.Bytes())
		tag := `"` + hex.EncodeToString(sum[:16]) + `"`
		w.Header().Set("ETag", tag)
		w.Header().Set("Cache-Control", "private, no-cache")

		if matchesETag(r.Header.Get("If-None-Match"), tag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.WriteHeader(ew.status)
		w.Write(ew.body.Bytes())
	})
}

// matchesETag compares an If-None-Match header against the computed tag,
// tolerating weak validators and multi-value lists.
func matchesETag(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == tag || candidate == "*" {
			return true
		}
	}
	return false
}
