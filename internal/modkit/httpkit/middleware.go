package httpkit

import (
	"net/http"
	"time"

	"zayavki/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	AllowedOrigins []string
	SlowRequest    time.Duration
}

// CommonStack returns the baseline middleware for the API scope
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// observability
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.SlowRequest}),

		// cache / freshness
		middleware.NoCache(),

		// cross-origin
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.AllowedOrigins}),

		middleware.StripSlashes(),
	}
}
