package http

import (
	"log"
	"net/http"
	"time"
)

// RequestLogger logs basic request details and latency, tagged with the
// caller from the identity header when one is present.
func RequestLogger(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		user := r.Header.Get("X-User-ID")
		if user == "" {
			user = "-"
		}
		logger.Printf(
			"request method=%s path=%s status=%d duration=%s user=%s",
			r.Method,
			r.URL.Path,
			rec.status,
			time.Since(start),
			user,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
