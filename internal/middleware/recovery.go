package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"chatterhub/internal/httputil"
)

// Recovery turns a handler panic into a 500 problem response that carries the
// request id, so a UI error can be matched to the logged stack.
// http.ErrAbortHandler is re-raised for net/http to handle.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				requestID := httputil.GetRequestID(r)
				logger.Error("handler panicked",
					"panic", v,
					"route", r.Method+" "+r.URL.Path,
					"request_id", requestID,
					"stack", string(debug.Stack()),
				)

				var extras map[string]interface{}
				if requestID != "" {
					extras = map[string]interface{}{"request_id": requestID}
				}
				httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "internal server error", extras)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
