package logging

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-Id"

// RequestID accepts an incoming X-Request-Id or generates one, stores it in
// the request context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = NewRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), id)))
	})
}

// AccessLog logs one line per request. It must be wrapped by RequestID for
// the request id to appear.
func AccessLog(next http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
		level := zerolog.InfoLevel
		switch {
		case p.StatusCode >= 500:
			level = zerolog.ErrorLevel
		case p.StatusCode >= 400:
			level = zerolog.WarnLevel
		}
		Ctx(p.Request.Context()).WithLevel(level).
			Str("method", p.Request.Method).
			Str("path", p.URL.Path).
			Int("status", p.StatusCode).
			Int("size", p.Size).
			Dur("duration", time.Since(p.TimeStamp)).
			Str("remote", p.Request.RemoteAddr).
			Msg("request")
	})
}

// RecoveryLogger adapts the global logger for handlers.RecoveryHandler
func RecoveryLogger() handlers.RecoveryHandlerLogger {
	return recoveryLogger{}
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	Error().Msg(fmt.Sprint(v...))
}
