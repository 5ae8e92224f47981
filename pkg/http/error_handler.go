package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/logger"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// ErrorHandler is the one place where failures become responses. Every
// handler and middleware forwards its errors here.
type ErrorHandler struct {
	log        *logger.Logger
	production bool
}

func NewErrorHandler(log *logger.Logger, production bool) *ErrorHandler {
	return &ErrorHandler{log: log, production: production}
}

func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		err = apperrors.Internal("error handler invoked without an error", nil)
	}
	appErr := apperrors.Classify(err)

	statusCode := appErr.StatusCode
	if statusCode == 0 || statusCode == http.StatusOK {
		statusCode = http.StatusInternalServerError
	}

	message := appErr.Message
	if h.production && !appErr.IsOperational {
		message = apperrors.MsgSomethingFailed
	}

	h.logError(r, statusCode, err)

	if writeErr := WriteError(w, statusCode, message, appErr.Errors); writeErr != nil {
		h.log.Error("failed to write error response", "operation", "WriteError", "error", writeErr)
	}
}

func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	attrs := []any{
		"request_id", RequestID(r),
		"method", r.Method,
		"path", r.URL.Path,
		"status", statusCode,
		"error", err.Error(),
	}

	switch {
	case statusCode >= http.StatusInternalServerError:
		if !h.production {
			attrs = append(attrs, "stack", stackOf(err))
		}
		h.log.Error("Request failed", attrs...)
	case statusCode >= http.StatusBadRequest:
		h.log.Warn("Request rejected", attrs...)
	}
}

func stackOf(err error) string {
	var panicErr *apperrors.PanicError
	if errors.As(err, &panicErr) && len(panicErr.Stack) > 0 {
		return string(panicErr.Stack)
	}
	return string(debug.Stack())
}

func RequestID(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
