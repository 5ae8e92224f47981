package middleware

import (
	"net/http"
	"strings"

	apperrors "voyageiq/pkg/errors"
	httputil "voyageiq/pkg/http"
)

const MsgUnsupportedMediaType = "Content-Type must be application/json"

// ContentTypeValidation rejects write requests carrying a body that is not
// JSON. Bodyless writes pass so the route can report the missing body.
func ContentTypeValidation(errs *httputil.ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) && extractContentType(r.Header.Get("Content-Type")) != "application/json" {
				errs.Handle(w, r, apperrors.New(MsgUnsupportedMediaType, http.StatusUnsupportedMediaType))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.Split(header, ";")
	return strings.ToLower(strings.TrimSpace(parts[0]))
}
