package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"storyjars/internal/security"
	"storyjars/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ParentContextKey ContextKey = "parent"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, rateLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		rateLimiter: rateLimiter,
	}
}

// RequireParent is middleware that requires a valid parent session token
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing session token")
			return
		}

		claims, err := m.authService.VerifyToken(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		ctx := context.WithValue(r.Context(), ParentContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit throttles requests by client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetParentFromContext retrieves the parent session claims from the request context
func GetParentFromContext(ctx context.Context) *security.SessionClaims {
	claims, ok := ctx.Value(ParentContextKey).(*security.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
