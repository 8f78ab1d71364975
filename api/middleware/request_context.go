package middleware

import (
	"net"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

// RequestContext runs after chi's RealIP and RequestID. It echoes the request
// id and records the caller IP for rate limiting. Both, plus method and path,
// are attached to every log entry for the request.
func RequestContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			reqID := chimw.GetReqID(ctx)
			if len(reqID) > maxRequestIDLength {
				reqID = reqID[:maxRequestIDLength]
			}
			if reqID != "" {
				w.Header().Set(requestIDHeader, reqID)
			}

			ip := remoteHost(r.RemoteAddr)
			ctx = withString(ctx, ctxClientIP, ip)
			if logg != nil {
				ctx = logg.With(ctx, "request_id", reqID, "client_ip", ip, "method", r.Method, "path", r.URL.Path)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// remoteHost strips the port RealIP leaves on direct connections.
func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
