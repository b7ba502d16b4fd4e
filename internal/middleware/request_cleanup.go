package middleware

import (
	"io"
	"net/http"
)

// form posts are tiny, anything past this is not worth reading to keep the conn alive
const maxDrainBytes = 64 << 10

// DrainAndCloseRequest drains up to maxDrainBytes of whatever the handler left of the
// request body, then closes it.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil || r.Body == http.NoBody {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
			_ = r.Body.Close()
		})
	}
}
