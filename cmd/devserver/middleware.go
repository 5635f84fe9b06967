package main

import (
	"log/slog"
	"net/http"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
)

// withServerTiming wraps a handler so evaluation timings recorded through
// the engine show up as Server-Timing headers in browser dev tools.
func withServerTiming(next http.Handler) http.Handler {
	return servertiming.Middleware(next, nil)
}

// withRequestLogging logs each request with its duration.
func withRequestLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}
