package myMiddleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"go-chat-auth/internal/ratelimit"
)

// LoginLimiter decides whether another login attempt from key is allowed.
type LoginLimiter interface {
	AllowLogin(ctx context.Context, key string) (*ratelimit.Result, error)
}

// ProxyHeaders rewrites RemoteAddr from X-Forwarded-For / X-Real-IP when
// trusted is set. Otherwise the headers are ignored and the socket address
// stays the client identity.
func ProxyHeaders(trusted bool) func(http.Handler) http.Handler {
	if trusted {
		return middleware.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

// LoginRateLimit rejects requests once the client IP has used up its
// attempts for the window. Every attempt counts, successful or not. If the
// limiter itself fails the request goes through.
func LoginRateLimit(limiter LoginLimiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.AllowLogin(r.Context(), clientIP(r))
			if err != nil {
				log.Warn("login rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))

			if !result.Allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Too many login attempts"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
