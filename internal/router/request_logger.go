package router

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Run-control requests sit on the timing-critical path of an active run, so
// anything slower than this budget is surfaced at Warn even on success.
const runControlLatencyBudget = 50 * time.Millisecond

// RequestLogger creates a gin middleware for logging requests using zap.
// Run-control endpoints are tagged and held to a latency budget; health
// probes are skipped entirely.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if path == "/healthz" {
			return
		}

		status := c.Writer.Status()
		latency := time.Since(start)
		runControl := strings.HasPrefix(path, "/api/runs/")
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.Bool("run_control", runControl),
			zap.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= 500:
			log.Error("Server error", fields...)
		case status >= 400:
			log.Warn("Client error", fields...)
		case runControl && latency > runControlLatencyBudget:
			log.Warn("Slow run-control request", fields...)
		default:
			log.Debug("Request processed", fields...)
		}
	}
}
