package media

import (
	"net/http"
	"sync"
	"time"

	"adoptipet/internal/middleware"
	"adoptipet/internal/platform/apperr"
	"adoptipet/internal/platform/httpx"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// Limiter es un token bucket por usuario. Los buckets inactivos expiran del LRU.
type Limiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets *expirable.LRU[string, *rate.Limiter]
}

func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: expirable.NewLRU[string, *rate.Limiter](4096, nil, 10*time.Minute),
	}
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets.Get(key)
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets.Add(key, b)
	}
	l.mu.Unlock()
	return b.Allow()
}

// Middleware limita por usuario autenticado (o IP si no hay claims).
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if claims, ok := middleware.GetClaims(r.Context()); ok && claims.UserID != "" {
			key = "user:" + claims.UserID
		}
		if !l.Allow(key) {
			w.Header().Set("Retry-After", "1")
			httpx.WriteError(w, http.StatusTooManyRequests, apperr.KindRateLimited, "too many uploads, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
