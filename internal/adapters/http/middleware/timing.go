package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fitcoach/internal/adapters/http/perf"
)

// DefaultSlowRequest is the threshold above which a request logs slow_request.
const DefaultSlowRequest = 200 * time.Millisecond

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// Timing returns middleware that times every non-static request.
// Requests at or above slow log at WARN, the rest at DEBUG. A nil collector
// disables recording.
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if strings.HasPrefix(path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := atomic.AddUint64(&requestIDCounter, 1)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0
				attrs := []any{
					"request_id", reqID,
					"method", r.Method,
					"path", path,
					"status", sw.status,
					"duration_ms", durationMs,
				}
				if elapsed >= slow {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}

				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       r.Method + " " + path,
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
