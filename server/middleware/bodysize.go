package middleware

import (
	"net/http"

	"github.com/kbukum/convpipe/util"
)

const defaultMaxBodySize = 1 << 20

// BodySizeLimit restricts the request body to maxSize ("1MB", "512KB").
// An unparsable size falls back to 1MB.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
