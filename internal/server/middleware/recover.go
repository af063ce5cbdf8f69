package middleware

import (
	"net/http"

	"github.com/jonathan/peoplemap/internal/logger"
)

// Recover turns a panicking handler into a 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				id, _ := GetRequestID(r)
				logger.Error("handler panic", "method", r.Method, "path", r.URL.Path, "request_id", id, "panic", rec)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
