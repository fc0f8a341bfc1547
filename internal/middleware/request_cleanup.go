package middleware

import (
	"io"
	"net/http"
)

// MaxRequestBodyBytes caps request bodies; session logs are small JSON documents.
const MaxRequestBodyBytes = 1 << 20

// LimitAndDrainRequest caps the request body size, and drains and closes
// whatever the handler did not read so the connection can be reused.
func LimitAndDrainRequest(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.Copy(io.Discard, r.Body)
				_ = r.Body.Close()
			}
		})
	}
}
