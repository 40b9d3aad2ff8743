// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/codyseavey/goblin-bookie/internal/config"
)

// RequestIDHeader carries the request id in and out of the server
const RequestIDHeader = "X-Request-ID"

// Setup points log.DefaultLogger at stderr using cfg's level and format.
func Setup(cfg config.LoggingConfig) {
	SetupWriter(cfg, os.Stderr)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(cfg config.LoggingConfig, w io.Writer) {
	log.DefaultLogger = log.Logger{
		Level:      ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Writer:     newWriter(cfg.Format, w),
	}
}

// Discard silences all logging. Used by tests and the CLI.
func Discard() {
	log.DefaultLogger = log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}

// ParseLevel maps a config level to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func newWriter(format string, w io.Writer) log.Writer {
	if strings.EqualFold(format, "json") {
		return &log.IOWriter{Writer: w}
	}
	return &log.ConsoleWriter{
		Writer:         w,
		ColorOutput:    false,
		QuoteString:    true,
		EndWithMessage: true,
	}
}

// RequestLogger tags each request with an id and logs it once served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		entry := log.Info()
		if status >= 500 {
			entry = log.Warn()
		}
		entry.Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("HTTP request")
	}
}
