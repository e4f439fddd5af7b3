package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/jobdeck/jobdeck/services"
)

type contextKey string

const userContextKey contextKey = "user"

type AuthMiddleware struct {
	authService services.AuthService
}

func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, malformed := bearerToken(r)
		if malformed {
			http.Error(w, "invalid authorization format", http.StatusUnauthorized)
			return
		}
		if token == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		user, err := m.authService.Verify(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an Authorization: Bearer header,
// falling back to the token query parameter for WebSocket upgrades.
// malformed reports a header that is present but not in Bearer form.
func bearerToken(r *http.Request) (token string, malformed bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return r.URL.Query().Get("token"), false
	}
	authParts := strings.Split(authHeader, " ")
	if len(authParts) == 2 && authParts[0] == "Bearer" {
		return authParts[1], false
	}
	return "", true
}

// currentUser pulls the authenticated user out of the request context.
func currentUser(r *http.Request) (services.User, bool) {
	user, ok := r.Context().Value(userContextKey).(services.User)
	return user, ok
}
