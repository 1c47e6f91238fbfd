package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocengage/internal/infrastructure/config"
)

// AccessLog logs one line per request once the response has been written.
func AccessLog(logger logrus.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := logger.WithFields(requestFields(r, rec, time.Since(start)))
			switch determineLogLevel(rec.status) {
			case logrus.ErrorLevel:
				entry.Error("request completed")
			case logrus.WarnLevel:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func determineLogLevel(status int) logrus.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return logrus.ErrorLevel
	case status >= http.StatusBadRequest:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}

func requestFields(r *http.Request, rec *statusRecorder, duration time.Duration) logrus.Fields {
	fields := logrus.Fields{
		"method":         r.Method,
		"path":           r.URL.Path,
		"status":         rec.status,
		"duration":       duration,
		"response_bytes": rec.bytes,
	}
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			fields["route"] = tpl
		}
	}
	appendStringField(fields, "query", r.URL.RawQuery)
	appendStringField(fields, "user_agent", r.Header.Get("User-Agent"))
	appendStringField(fields, "request_id", r.Header.Get("X-Request-Id"))
	appendStringField(fields, "client_ip", firstForwardedFor(r.Header))
	if cl := contentLength(r.Header); cl >= 0 {
		fields["request_bytes"] = cl
	}
	return fields
}

func appendStringField(fields logrus.Fields, key, value string) {
	if value == "" {
		return
	}
	fields[key] = value
}

func firstForwardedFor(header http.Header) string {
	forwarded := header.Get("X-Forwarded-For")
	if forwarded == "" {
		return ""
	}
	for _, part := range strings.Split(forwarded, ",") {
		if candidate := strings.TrimSpace(part); candidate != "" {
			return candidate
		}
	}
	return ""
}

func contentLength(header http.Header) int {
	if header == nil {
		return -1
	}
	if cl := header.Get("Content-Length"); cl != "" {
		if parsed, err := strconv.Atoi(cl); err == nil {
			return parsed
		}
	}
	return -1
}

// NewLogger builds a configured logrus logger from application config.
func NewLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)
	switch cfg.Log.Format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}
