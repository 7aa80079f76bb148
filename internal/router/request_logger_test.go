package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func loggedEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	engine := gin.New()
	engine.Use(RequestLogger(zap.New(core)))
	return engine, logs
}

func TestRequestLoggerTagsRunControl(t *testing.T) {
	engine, logs := loggedEngine(t)
	engine.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.POST("/api/runs/gonogo", func(c *gin.Context) { c.Status(http.StatusCreated) })
	engine.GET("/api/presets", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/healthz", nil),
		httptest.NewRequest(http.MethodPost, "/api/runs/gonogo", nil),
		httptest.NewRequest(http.MethodGet, "/api/presets", nil),
	} {
		engine.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 2, "health probes must not be logged")

	byPath := make(map[string]observer.LoggedEntry, len(entries))
	for _, e := range entries {
		byPath[e.ContextMap()["path"].(string)] = e
	}

	runEntry, ok := byPath["/api/runs/gonogo"]
	require.True(t, ok)
	assert.Equal(t, true, runEntry.ContextMap()["run_control"])

	presetEntry, ok := byPath["/api/presets"]
	require.True(t, ok)
	assert.Equal(t, false, presetEntry.ContextMap()["run_control"])
}

func TestRequestLoggerWarnsOnSlowRunControl(t *testing.T) {
	engine, logs := loggedEngine(t)
	engine.POST("/api/runs/active/response", func(c *gin.Context) {
		time.Sleep(runControlLatencyBudget + 20*time.Millisecond)
		c.Status(http.StatusAccepted)
	})

	engine.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/api/runs/active/response", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "Slow run-control request", entries[0].Message)
}
