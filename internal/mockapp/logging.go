package mockapp

import (
	"net/http"
	"strings"
	"time"

	"github.com/kuitang/builder-e2e/internal/logutil"
	"github.com/kuitang/builder-e2e/internal/obs"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests attaches a request id to the context and emits one
// request_completed line per request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = obs.NewRequestID()
		}
		ctx := obs.WithCorrelation(r.Context(), obs.Correlation{RequestID: requestID})
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		obs.From(ctx).With("pkg", "mockapp").Info("request_completed",
			"method", r.Method,
			"path", logutil.RedactURL(r.URL.RequestURI()),
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
