package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fitcoach-api/internal/platform/logging"
)

// RouterOptions configures the middleware around the route mux.
type RouterOptions struct {
	ServiceName       string
	CORSAllowedOrigin string
	MaxBodyBytes      int64
}

func NewRouter(handler *Handler, logger *logging.Logger, opts RouterOptions) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerUserRoutes(mux, handler)

	return RequestTracing(opts.ServiceName,
		RequestLogging(logger,
			CORS(opts.CORSAllowedOrigin,
				recoverPanic(logger,
					LimitBody(opts.MaxBodyBytes, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		rw := &statusRecorder{ResponseWriter: w}
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path, "status_sent", rw.status)
				// A response already on the wire cannot be replaced.
				if rw.status != 0 {
					return
				}
				writeFailure(ctx, w, failureMessageFor(r), errPanicRecovered)
			}
		}()
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}
