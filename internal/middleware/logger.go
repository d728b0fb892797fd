package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger returns a middleware that logs HTTP requests using zap logger.
// API and public page requests log at info, server errors at warn, and
// everything else (health, swagger) at debug.
func ZapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start)

		path := c.Request.URL.Path
		status := c.Writer.Status()

		level := zapcore.DebugLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zapcore.WarnLevel
		case strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/p/"):
			level = zapcore.InfoLevel
		}

		if ce := log.Check(level, "HTTP"); ce != nil {
			ce.Write(
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.String("latency", dur.String()),
				zap.String("clientIP", c.ClientIP()),
				zap.String("principal", string(PrincipalFrom(c))),
				zap.Int("bytes", c.Writer.Size()),
			)
		}
	}
}
