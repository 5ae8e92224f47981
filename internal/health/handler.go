package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	httputil "voyageiq/pkg/http"
	"voyageiq/pkg/logger"
)

const (
	MsgDatabaseUnavailable = "Database is unavailable"

	pingTimeout = 2 * time.Second
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type Response struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type Handler struct {
	db  Pinger
	log *logger.Logger
}

func NewHandler(db Pinger, log *logger.Logger) *Handler {
	return &Handler{db: db, log: log}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteOK(w, "Service is healthy", Response{Status: "ok"}); err != nil {
		h.log.Error("failed to write response", "handler", "Health", "operation", "WriteOK", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx, nil); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteError(w, http.StatusServiceUnavailable, MsgDatabaseUnavailable, nil); writeErr != nil {
			h.log.Error("failed to write response", "handler", "Ready", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteOK(w, "Service is ready", Response{
		Status:   "ready",
		Database: "ok",
	}); err != nil {
		h.log.Error("failed to write response", "handler", "Ready", "operation", "WriteOK", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
