package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "voyageiq/pkg/errors"
	httputil "voyageiq/pkg/http"
)

// Recovery turns a panic in any later handler into a 500 error envelope.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recovery(errs *httputil.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				errs.Handle(w, r, &apperrors.PanicError{Value: rec, Stack: debug.Stack()})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
