package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"voyageiq/pkg/logger"
)

type fakePinger struct {
	err      error
	deadline bool
}

func (p *fakePinger) Ping(ctx context.Context, _ *readpref.ReadPref) error {
	_, p.deadline = ctx.Deadline()
	return p.err
}

func serve(t *testing.T, db Pinger, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	router := httprouter.New()
	NewHandler(db, logger.Discard()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := serve(t, &fakePinger{err: errors.New("down")}, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, map[string]any{"status": "ok"}, body["data"])
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{name: "database reachable", wantCode: http.StatusOK, wantStatus: "success"},
		{name: "database down", err: errors.New("connection refused"), wantCode: http.StatusServiceUnavailable, wantStatus: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakePinger{err: tt.err}
			rec, body := serve(t, db, "/ready")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.True(t, db.deadline)
		})
	}
}
