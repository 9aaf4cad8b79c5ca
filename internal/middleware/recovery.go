package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/aradhyyySharrma8204/cachecraft2/internal/apierr"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/errorreporting"
	"github.com/aradhyyySharrma8204/cachecraft2/internal/logger"
)

// RecoverWithSentry turns handler panics into a JSON 500, logging the stack
// and forwarding the panic to Sentry when reporting is configured. Stacks
// sent upstream are scrubbed since panic values can embed user queries.
func RecoverWithSentry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			stack := debug.Stack()

			logger.ErrorContext(r.Context(), "panic recovered",
				"error", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(stack),
			)

			if errorreporting.IsSentryEnabled() {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.Scope().SetLevel(sentry.LevelError)
				hub.Scope().SetTag("method", r.Method)
				hub.Scope().SetTag("path", r.URL.Path)
				if err, ok := rec.(error); ok {
					hub.CaptureException(err)
				} else {
					hub.CaptureMessage(errorreporting.ScrubPII(string(stack)))
				}
			}

			apierr.WriteErrorWithContext(w, r, apierr.SystemInternal("internal server error"))
		}()

		next.ServeHTTP(w, r)
	})
}
