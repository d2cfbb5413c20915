// Package logging builds the process logger and the gin request logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"taskhub/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	HeaderRequestID = "X-Request-ID"
	contextKeyEntry = "log_entry"
	contextKeyUser  = "user_id"
)

// New returns a logger writing to stdout and, when cfg.File is set, to a
// rotated file as well.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	log := logrus.New()
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays, // days
			Compress:   true,
		})
	}
	log.SetOutput(out)
	return log, nil
}

// Middleware tags each request with an ID (taken from X-Request-ID when the
// client sends one) and logs it once it completes.
func Middleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(HeaderRequestID, rid)

		entry := log.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Set(contextKeyEntry, entry)

		c.Next()

		fields := logrus.Fields{
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if uid, ok := c.Get(contextKeyUser); ok {
			fields["user_id"] = uid
		}
		done := entry.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			done.Error("request failed")
		case c.Writer.Status() >= 400:
			done.Warn("request rejected")
		default:
			done.Info("request served")
		}
	}
}

// FromContext returns the request logger set by Middleware, or the standard
// logger outside of it.
func FromContext(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(contextKeyEntry); ok {
		if e, ok := v.(*logrus.Entry); ok {
			return e
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
