package middleware

import (
	"context"
	"net/http"
	"strings"

	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/httpx"
	"adoptipet/internal/platform/logger"
	"adoptipet/internal/ports/capabilities"
)

// RequireUser corta con 401 si no hay claims.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ResolveAdmin consulta el resolver una vez por request y deja el resultado en el contexto.
// Si el resolver falla se asume "no admin" (se loguea).
func ResolveAdmin(resolver capabilities.AdminResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || resolver == nil {
				next.ServeHTTP(w, r)
				return
			}
			isAdmin, err := resolver.IsAdmin(r.Context(), claims)
			if err != nil {
				logger.FromContext(r.Context()).Warn("admin capability lookup failed", map[string]any{
					"error":   err,
					"user_id": claims.UserID,
				})
				isAdmin = false
			}
			ctx := context.WithValue(r.Context(), isAdminKey, isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(isAdminKey).(bool)
	return v
}

// RequireAdmin: 401 sin usuario, 403 si no es admin.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			httpx.WriteError(w, http.StatusForbidden, apperr.KindForbidden, "admin capability required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
