package middleware

import (
	"fmt"
	"net/http"

	apperrors "voyageiq/pkg/errors"
	httputil "voyageiq/pkg/http"
)

// MaxRequestSize rejects bodies larger than limit bytes with 413. A declared
// length over the limit is refused up front; otherwise the body reader stops
// at the limit and the decoder reports the overflow.
func MaxRequestSize(limit int64, errs *httputil.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				errs.Handle(w, r, apperrors.New(fmt.Sprintf("Request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
