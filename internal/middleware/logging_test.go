package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/docuchat-ai/document-platform/pkg/logger"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return &logger.Logger{Logger: zap.New(core)}, logs
}

func TestLoggingEmitsAccessLogWithCorrelationID(t *testing.T) {
	log, logs := observedLogger()

	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "corr-123", rec.Header().Get("X-Correlation-ID"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "corr-123", fields["correlation_id"])
	assert.Equal(t, "/api/v1/chat", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
}

func TestLoggingGeneratesCorrelationID(t *testing.T) {
	log, logs := observedLogger()

	var seen string
	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, seen, entries[0].ContextMap()["correlation_id"])
}
