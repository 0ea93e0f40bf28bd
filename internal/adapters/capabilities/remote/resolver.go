package remote

import (
	"context"
	"time"

	"adoptipet/internal/ports/auth"
	"adoptipet/internal/ports/capabilities"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Resolver cachea las capabilities por usuario; sin cache cada request
// admin haría un round-trip al servicio.
type Resolver struct {
	client *Client
	cache  *expirable.LRU[string, map[string]bool]
}

func NewResolver(client *Client, size int, ttl time.Duration) *Resolver {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Resolver{
		client: client,
		cache:  expirable.NewLRU[string, map[string]bool](size, nil, ttl),
	}
}

// Resolve devuelve el mapa completo de capabilities para userID.
func (r *Resolver) Resolve(ctx context.Context, userID string) (map[string]bool, error) {
	if caps, ok := r.cache.Get(userID); ok {
		return caps, nil
	}
	resp, err := r.client.GetCapabilities(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.cache.Add(userID, resp.Capabilities)
	return resp.Capabilities, nil
}

// Has responde si userID tiene una capability ("*" habilita todas).
func (r *Resolver) Has(ctx context.Context, userID, capability string) (bool, error) {
	caps, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return caps[capability] || caps["*"], nil
}

func (r *Resolver) IsAdmin(ctx context.Context, c auth.Claims) (bool, error) {
	return r.Has(ctx, c.UserID, capabilities.CapabilityAdmin)
}

var _ capabilities.AdminResolver = (*Resolver)(nil)
