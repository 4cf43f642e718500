package observability

import (
	"net/http"
	"time"

	"time-report-go/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("httpserver")

// AccessLog logs every request once it finished: WARN for 4xx, ERROR for
// 5xx, INFO otherwise. Metrics are optional.
func AccessLog(log logger.Logger, metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				latency := time.Since(start)
				route := routePattern(r)

				if metrics != nil {
					metrics.ObserveHTTP(r.Method, route, status, latency)
				}

				args := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"route", route,
					"status", status,
					"latency", latency,
					"request_id", middleware.GetReqID(r.Context()),
				}
				switch {
				case status >= http.StatusInternalServerError:
					log.Error("http.request", args...)
				case status >= http.StatusBadRequest:
					log.Warn("http.request", args...)
				default:
					log.Info("http.request", args...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// Tracing continues the caller's trace and wraps the request in a server span.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", routePattern(r)),
			attribute.Int("http.status_code", ww.Status()),
		)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
