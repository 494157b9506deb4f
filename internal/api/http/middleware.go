package apihttp

import (
	"net/http"
	"strconv"
	"time"

	"energy-audit/internal/audit"
	"energy-audit/internal/observability/logging"
	"energy-audit/internal/observability/metrics"
)

// RequestLogging logs method, path, status and duration of every request
// and carries the logger and client details in the request context.
func RequestLogging(next http.Handler, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.WithComponent("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithLogger(r.Context(), logger)
		ctx = audit.WithRequest(ctx, audit.ClientIP(r), r.UserAgent())
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r.WithContext(ctx))
		metrics.IncHTTPRequest(r.Method, strconv.Itoa(resp.status))
		logger.Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", resp.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
