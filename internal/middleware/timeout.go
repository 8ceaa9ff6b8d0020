package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds handler run time. On expiry the client gets a 503 with the standard
// failure envelope and the handler's context is cancelled, which aborts in-flight
// queries.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"request timed out"}}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
