package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ecashph/ecash/internal/auth"
	"github.com/ecashph/ecash/internal/domain"
)

type contextKey string

const (
	claimsKey    contextKey = "claims"
	requestIDKey contextKey = "request_id"
)

// RequestID tags each request with a correlation id and logs it.
func (h *Handler) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		h.log.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// Authenticate resolves the bearer token to session claims. The
// ledger trusts the resolved actor id; authentication itself lives
// out here at the edge.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized - invalid token.", r.Method, r.URL.Path)
			return
		}
		claims, err := h.auth.Verify(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized - invalid token.", r.Method, r.URL.Path)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// RequireRole gates a route on the actor's role; approval needs
// STAFF or ADMIN.
func (h *Handler) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r)
			if claims == nil {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized - User not identified.", r.Method, r.URL.Path)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondWithError(w, http.StatusForbidden,
				"Forbidden - You do not have permission to perform this action", r.Method, r.URL.Path)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("jwt"); err == nil {
		return cookie.Value
	}
	return ""
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

// actorID extracts the acting user for audit attribution, nil when
// the request carries no identity.
func actorID(r *http.Request) *int64 {
	claims := claimsFrom(r)
	if claims == nil {
		return nil
	}
	id := claims.UserID
	return &id
}
