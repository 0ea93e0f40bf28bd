package users

import (
	"net/http"
	"time"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SyncFromClaims asegura que cada identidad autenticada tenga su User.
// Sólo toca el repo una vez por TTL y por usuario.
func SyncFromClaims(svc *Service, size int, ttl time.Duration) func(http.Handler) http.Handler {
	if size <= 0 {
		size = 1024
	}
	seen := expirable.NewLRU[string, struct{}](size, nil, ttl)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := middleware.GetClaims(r.Context())
			if ok && claims.UserID != "" {
				if _, hit := seen.Get(claims.UserID); !hit {
					if _, err := svc.EnsureFromClaims(r.Context(), claims); err != nil {
						logger.FromContext(r.Context()).Warn("user sync failed", map[string]any{
							"error":   err,
							"user_id": claims.UserID,
						})
					} else {
						seen.Add(claims.UserID, struct{}{})
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
