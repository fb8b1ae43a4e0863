package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/hrmspro/hrms/pkg/logger"
	"go.opentelemetry.io/otel/trace"
)

const TraceHeader = "X-Trace-ID"

// RequestID tags the request logger with a trace id. An incoming header
// wins, then the active span's trace id, then a fresh uuid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				traceID = sc.TraceID().String()
			}
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
